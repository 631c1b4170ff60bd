package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/machinefabric/uibridge-go/wire"
)

// call sends a request toward the view and blocks for its response. The
// correlation id is a fresh UUID; the pending entry is resolved by the
// event loop or failed here on timeout.
func (s *Session) call(method string, params any, timeout time.Duration) (json.RawMessage, error) {
	id := uuid.NewString()
	env, err := wire.NewRequest(id, method, params)
	if err != nil {
		return nil, &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}

	outcome := make(chan callOutcome, 1)
	idKey := string(env.ID)

	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil, &SessionError{Type: SessionErrorTypeClosed, Message: method}
	}
	s.pending[idKey] = outcome
	s.mu.Unlock()

	if err := s.ch.Send(env); err != nil {
		s.mu.Lock()
		delete(s.pending, idKey)
		s.mu.Unlock()
		return nil, &SessionError{Type: SessionErrorTypeSend, Message: method + ": " + err.Error()}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case out := <-outcome:
		return out.result, out.err
	case <-timer.C:
		s.mu.Lock()
		delete(s.pending, idKey)
		s.mu.Unlock()
		// The loop may have resolved it between the timer firing and the
		// delete; prefer the real outcome when it is already buffered.
		select {
		case out := <-outcome:
			return out.result, out.err
		default:
		}
		return nil, &SessionError{Type: SessionErrorTypeTimeout, Message: method}
	}
}

// Call sends a request toward the view and waits for its response, bounded
// by the configured request timeout.
func (s *Session) Call(method string, params any) (json.RawMessage, error) {
	return s.call(method, params, s.cfg.RequestTimeout.Std())
}

// sendEnvelope writes an envelope and maps channel failures to typed errors.
func (s *Session) sendEnvelope(env *wire.Envelope) error {
	if err := s.ch.Send(env); err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: env.Method + ": " + err.Error()}
	}
	return nil
}

// requireOutbound checks that host→view application traffic is legal now.
func (s *Session) requireOutbound(op string) error {
	if !s.state.allowsOutboundDelivery() {
		return &SessionError{Type: SessionErrorTypeState, Message: op + " in state " + s.state.String()}
	}
	return nil
}

// SendToolInputPartial streams one partial tool-argument fragment. Partials
// may be sent any number of times but never after the final input.
func (s *Session) SendToolInputPartial(arguments json.RawMessage) error {
	s.mu.Lock()
	if err := s.requireOutbound("tool-input-partial"); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.toolInputSent {
		s.mu.Unlock()
		return &SessionError{Type: SessionErrorTypeOrdering, Message: "tool-input-partial after final tool input"}
	}
	s.toolInputPartials++
	s.promoteInteractiveLocked()
	s.mu.Unlock()

	env, err := wire.NewToolInputPartialNotification(arguments)
	if err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}
	return s.sendEnvelope(env)
}

// SendToolInput delivers the final tool arguments. At most one delivery per
// session; a second call is an ordering violation.
func (s *Session) SendToolInput(arguments json.RawMessage) error {
	s.mu.Lock()
	if err := s.requireOutbound("tool-input"); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.toolInputSent {
		s.mu.Unlock()
		return &SessionError{Type: SessionErrorTypeOrdering, Message: "tool input already delivered"}
	}
	s.toolInputSent = true
	s.promoteInteractiveLocked()
	s.mu.Unlock()

	env, err := wire.NewToolInputNotification(arguments)
	if err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}
	return s.sendEnvelope(env)
}

// SendToolResult forwards the originating tool call's result. Requires the
// final input to have been delivered first.
func (s *Session) SendToolResult(result json.RawMessage) error {
	s.mu.Lock()
	if err := s.requireOutbound("tool-result"); err != nil {
		s.mu.Unlock()
		return err
	}
	if !s.toolInputSent {
		s.mu.Unlock()
		return &SessionError{Type: SessionErrorTypeOrdering, Message: "tool result before tool input"}
	}
	s.mu.Unlock()

	env, err := wire.NewToolResultNotification(result)
	if err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}
	return s.sendEnvelope(env)
}

// SendToolCancelled notifies the view that the originating tool call was
// cancelled. Legal with or without a prior input delivery.
func (s *Session) SendToolCancelled(reason string) error {
	s.mu.Lock()
	if err := s.requireOutbound("tool-cancelled"); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	env, err := wire.NewToolCancelledNotification(reason)
	if err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}
	return s.sendEnvelope(env)
}

// NotifyHostContextChanged merges a sparse context patch into the session
// snapshot and pushes it to the view.
func (s *Session) NotifyHostContextChanged(patch json.RawMessage) error {
	s.mu.Lock()
	if err := s.requireOutbound("host-context-changed"); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.hostCtx.Merge(patch); err != nil {
		s.mu.Unlock()
		return &SessionError{Type: SessionErrorTypeSend, Message: "context patch rejected: " + err.Error()}
	}
	s.mu.Unlock()

	env, err := wire.NewHostContextChangedNotification(patch)
	if err != nil {
		return &SessionError{Type: SessionErrorTypeSend, Message: err.Error()}
	}
	return s.sendEnvelope(env)
}

// MarkInteractive promotes the session out of Ready without a tool-input
// delivery, for views opened directly rather than from a tool call.
func (s *Session) MarkInteractive() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateInteractive {
		return nil
	}
	if !canTransition(s.state, StateInteractive) {
		return &SessionError{Type: SessionErrorTypeState, Message: "mark-interactive in state " + s.state.String()}
	}
	s.state = StateInteractive
	return nil
}

func (s *Session) promoteInteractiveLocked() {
	if canTransition(s.state, StateInteractive) {
		s.state = StateInteractive
	}
}

// Teardown asks the view to shut down and waits, bounded by the configured
// teardown timeout, for the acknowledgement. The session reaches Closed
// whether or not the view answers; on timeout the error reports it.
// Concurrent and repeated calls share one teardown exchange and observe the
// same outcome.
func (s *Session) Teardown(reason string) error {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	if s.teardown != nil {
		td := s.teardown
		s.mu.Unlock()
		<-td.done
		return td.err
	}
	td := &teardownState{done: make(chan struct{})}
	s.teardown = td
	if canTransition(s.state, StateTearingDown) {
		s.state = StateTearingDown
	}
	timeout := s.cfg.TeardownTimeout.Std()
	s.mu.Unlock()

	_, err := s.call(wire.MethodResourceTeardown, wire.TeardownParams{Reason: reason}, timeout)
	switch {
	case err == nil:
		s.closeSession()
		s.finishTeardown(td, nil)
	case IsClosed(err):
		s.finishTeardown(td, nil)
	default:
		// Timeout or send failure: the view is unresponsive, close anyway.
		s.closeSession()
		s.finishTeardown(td, err)
	}

	<-td.done
	return td.err
}

// finishTeardown resolves the shared teardown outcome exactly once.
func (s *Session) finishTeardown(td *teardownState, err error) {
	td.once.Do(func() {
		td.err = err
		close(td.done)
	})
}

// closeSession moves the session to Closed, closes the channel and fails
// any still-pending requests.
func (s *Session) closeSession() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	pending := s.pending
	s.pending = make(map[string]chan callOutcome)
	s.mu.Unlock()

	_ = s.ch.Close()
	for id, ch := range pending {
		ch <- callOutcome{err: &SessionError{Type: SessionErrorTypeClosed, Message: "session closed with request " + id + " pending"}}
	}
	s.log.Debug("session closed")
}
