package session

import "fmt"

// SessionError represents failures surfaced by the engine. Every failure
// resolves to a typed value; nothing in this package panics the host.
type SessionError struct {
	Type    SessionErrorType
	Message string
}

type SessionErrorType int

const (
	// SessionErrorTypeTimeout: an outbound request exceeded the configured
	// bound. Recoverable for application requests; teardown timeouts force
	// closure.
	SessionErrorTypeTimeout SessionErrorType = iota
	// SessionErrorTypeClosed: the channel closed with the request pending.
	SessionErrorTypeClosed
	// SessionErrorTypeState: the operation is not legal in the current
	// lifecycle state.
	SessionErrorTypeState
	// SessionErrorTypeOrdering: a delivery would violate the tool-input
	// ordering guarantees.
	SessionErrorTypeOrdering
	// SessionErrorTypeSend: the channel rejected the write.
	SessionErrorTypeSend
)

func (e *SessionError) Error() string {
	switch e.Type {
	case SessionErrorTypeTimeout:
		return fmt.Sprintf("session: request timed out: %s", e.Message)
	case SessionErrorTypeClosed:
		return fmt.Sprintf("session: channel closed: %s", e.Message)
	case SessionErrorTypeState:
		return fmt.Sprintf("session: invalid state: %s", e.Message)
	case SessionErrorTypeOrdering:
		return fmt.Sprintf("session: ordering violation: %s", e.Message)
	case SessionErrorTypeSend:
		return fmt.Sprintf("session: send failed: %s", e.Message)
	default:
		return fmt.Sprintf("session error: %s", e.Message)
	}
}

// IsTimeout reports whether err is a session timeout.
func IsTimeout(err error) bool {
	se, ok := err.(*SessionError)
	return ok && se.Type == SessionErrorTypeTimeout
}

// IsClosed reports whether err is a channel-closure failure.
func IsClosed(err error) bool {
	se, ok := err.(*SessionError)
	return ok && se.Type == SessionErrorTypeClosed
}
