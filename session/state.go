// Package session implements the per-view protocol engine: the lifecycle
// state machine, the router matching responses to pending requests and
// dispatching inbound traffic, and the ordering guarantees on tool-input
// delivery.
package session

import "fmt"

// State is the session lifecycle position. Transitions are monotonic; the
// only early exits lead to TearingDown and Closed.
type State uint8

const (
	// StateCreated is the initial state before the view channel is driven.
	StateCreated State = iota
	// StateInitializing means the channel is established and the engine is
	// waiting for the view's initialize handshake.
	StateInitializing
	// StateReady means initialize was answered and the initialized
	// notification arrived. Application messages may now flow.
	StateReady
	// StateInteractive means the first tool input reached the view, or the
	// host explicitly promoted the session.
	StateInteractive
	// StateTearingDown means the host asked the view to shut down and is
	// waiting (bounded) for the acknowledgement.
	StateTearingDown
	// StateClosed is terminal.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateInteractive:
		return "interactive"
	case StateTearingDown:
		return "tearing-down"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// canTransition reports whether moving from one state to the next is legal.
// Teardown may begin from any live state; closure only follows teardown.
func canTransition(from, to State) bool {
	switch to {
	case StateInitializing:
		return from == StateCreated
	case StateReady:
		return from == StateInitializing
	case StateInteractive:
		return from == StateReady
	case StateTearingDown:
		return from == StateInitializing || from == StateReady || from == StateInteractive
	case StateClosed:
		return from == StateTearingDown
	default:
		return false
	}
}

// acceptsViewTraffic reports whether inbound view requests/notifications
// are dispatched in this state. Before Ready only the initialize handshake
// itself is allowed; the handshake methods are special-cased by the router.
func (s State) acceptsViewTraffic() bool {
	return s == StateReady || s == StateInteractive
}

// acceptsResponses reports whether inbound responses may still resolve
// pending requests. Responses are matched until the session is closed so
// the teardown acknowledgement can land.
func (s State) acceptsResponses() bool {
	return s != StateClosed
}

// allowsOutboundDelivery reports whether host→view application messages may
// be sent. Nothing reaches the view before Ready; once teardown begins no
// new application traffic starts.
func (s State) allowsOutboundDelivery() bool {
	return s == StateReady || s == StateInteractive
}
