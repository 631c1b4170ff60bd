package session

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/machinefabric/uibridge-go/caps"
	"github.com/machinefabric/uibridge-go/channel"
	"github.com/machinefabric/uibridge-go/hostcfg"
	"github.com/machinefabric/uibridge-go/wire"
)

// Host is the surface the embedding application implements. Every callback
// runs on the session's event loop goroutine; implementations must not
// block on the same session.
//
// A returned error becomes a structured policy-denial response (-32000)
// with the error text as the human-readable reason.
type Host interface {
	// OpenLink asks the application to open an external URL.
	OpenLink(url string) error

	// HandleMessage posts a view message into the host conversation and
	// returns the result payload for the response.
	HandleMessage(role string, content json.RawMessage) (json.RawMessage, error)

	// UpdateModelContext replaces the model-visible context for this view.
	UpdateModelContext(params wire.UpdateModelContextParams) error

	// SizeChanged reports the view's new content size.
	SizeChanged(width, height uint32)
}

// NopHost accepts everything and does nothing. Useful for tests and hosts
// that only consume notifications.
type NopHost struct{}

func (NopHost) OpenLink(string) error { return nil }
func (NopHost) HandleMessage(string, json.RawMessage) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}
func (NopHost) UpdateModelContext(wire.UpdateModelContextParams) error { return nil }
func (NopHost) SizeChanged(uint32, uint32)                             {}

// NotificationHandler consumes an inbound notification's params.
type NotificationHandler func(params json.RawMessage)

// RequestHandler services an inbound request and returns the result
// payload. A returned error becomes a -32000 response.
type RequestHandler func(params json.RawMessage) (json.RawMessage, error)

// callOutcome is the resolution of one pending outbound request.
type callOutcome struct {
	result json.RawMessage
	err    error
}

// teardownState is shared by every Teardown caller so re-entrant requests
// observe the same pending response.
type teardownState struct {
	once sync.Once
	done chan struct{}
	err  error
}

// Session is the engine for one rendered view instance. One goroutine runs
// the event loop; the exported send methods may be called from any
// goroutine.
type Session struct {
	// ID identifies the session. Assigned at creation.
	ID string

	// ServerID names the tool provider whose resource this view renders.
	// Consumed by the visibility enforcer for cross-server rejection.
	ServerID string

	ch   channel.Channel
	cfg  *hostcfg.Config
	log  *slog.Logger
	host Host

	mu                sync.Mutex
	state             State
	initAnswered      bool
	negotiated        *caps.Negotiated
	appInfo           caps.AppInfo
	hostCtx           caps.HostContext
	pending           map[string]chan callOutcome
	toolInputSent     bool
	toolInputPartials int
	teardown          *teardownState
	notifSubs         map[string][]NotificationHandler
	handlers          map[string]RequestHandler
}

// Options configures a new session.
type Options struct {
	// Config supplies timeouts and grants. Nil means hostcfg.Default().
	Config *hostcfg.Config

	// Host receives the view-originated callbacks. Nil means NopHost.
	Host Host

	// Logger receives dropped-message diagnostics. Nil means slog.Default.
	Logger *slog.Logger

	// ServerID names the view's tool provider.
	ServerID string

	// HostContext is the initial environment snapshot. DisplayMode and
	// AvailableDisplayModes are filled from negotiation when empty.
	HostContext caps.HostContext
}

// New creates a session over an established channel. Call Run to drive it.
func New(ch channel.Channel, opts Options) *Session {
	cfg := opts.Config
	if cfg == nil {
		cfg = hostcfg.Default()
	}
	host := opts.Host
	if host == nil {
		host = NopHost{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		ID:        id,
		ServerID:  opts.ServerID,
		ch:        ch,
		cfg:       cfg,
		log:       logger.With("session", id),
		host:      host,
		state:     StateCreated,
		hostCtx:   opts.HostContext,
		pending:   make(map[string]chan callOutcome),
		notifSubs: make(map[string][]NotificationHandler),
		handlers:  make(map[string]RequestHandler),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Negotiated returns the capability record, nil before initialization.
func (s *Session) Negotiated() *caps.Negotiated {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.negotiated
}

// AppInfo returns the view's declared identity, zero before initialization.
func (s *Session) AppInfo() caps.AppInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appInfo
}

// HostContext returns a copy of the current context snapshot.
func (s *Session) HostContext() caps.HostContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostCtx
}

// OnNotification subscribes to an inbound notification method. Handlers
// run on the event loop in registration order.
func (s *Session) OnNotification(method string, fn NotificationHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifSubs[method] = append(s.notifSubs[method], fn)
}

// OnRequest registers a handler for an inbound request method beyond the
// built-in set.
func (s *Session) OnRequest(method string, fn RequestHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// Run drives the event loop until the channel closes or the session is
// torn down. Envelopes are processed strictly in arrival order; no two
// handlers for this session run concurrently.
func (s *Session) Run() {
	s.mu.Lock()
	if s.state == StateCreated {
		s.state = StateInitializing
	}
	s.mu.Unlock()

	for {
		env, err := s.ch.Receive()
		if err != nil {
			if err != channel.ErrClosed {
				s.log.Warn("receive failed", "error", err)
			}
			s.handleChannelClosed()
			return
		}
		s.dispatch(env)

		s.mu.Lock()
		closed := s.state == StateClosed
		s.mu.Unlock()
		if closed {
			return
		}
	}
}

// dispatch routes one inbound envelope.
func (s *Session) dispatch(env *wire.Envelope) {
	switch env.Kind() {
	case wire.KindResponse, wire.KindError:
		s.dispatchResponse(env)
	case wire.KindRequest:
		s.dispatchRequest(env)
	case wire.KindNotification:
		s.dispatchNotification(env)
	}
}

func (s *Session) dispatchResponse(env *wire.Envelope) {
	s.mu.Lock()
	if !s.state.acceptsResponses() {
		s.mu.Unlock()
		s.log.Warn("response dropped: session closed", "id", env.IDKey())
		return
	}
	ch, ok := s.pending[env.IDKey()]
	if ok {
		delete(s.pending, env.IDKey())
	}
	s.mu.Unlock()

	if !ok {
		// A response with no pending request is a protocol slip on the
		// view's side, not a fault. There is no method to answer with, so
		// it is logged and dropped.
		s.log.Warn("unmatched response id", "id", env.IDKey())
		return
	}

	if env.Error != nil {
		ch <- callOutcome{err: env.Error}
	} else {
		ch <- callOutcome{result: env.Result}
	}
}

func (s *Session) dispatchRequest(env *wire.Envelope) {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	// The initialize request is the one request legal before Ready.
	if env.Method == wire.MethodInitialize {
		if state != StateInitializing {
			s.log.Warn("initialize dropped: wrong state", "state", state.String())
			return
		}
		s.handleInitialize(env)
		return
	}

	if !state.acceptsViewTraffic() {
		s.log.Warn("request dropped: session not ready", "method", env.Method, "state", state.String())
		return
	}

	if err := wire.ValidateParams(env); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}

	switch env.Method {
	case wire.MethodOpenLink:
		s.handleOpenLink(env)
	case wire.MethodMessage:
		s.handleMessage(env)
	case wire.MethodRequestDisplayMode:
		s.handleRequestDisplayMode(env)
	case wire.MethodUpdateModelContext:
		s.handleUpdateModelContext(env)
	default:
		s.mu.Lock()
		handler := s.handlers[env.Method]
		s.mu.Unlock()
		if handler == nil {
			s.respond(wire.NewErrorResponse(env.ID, wire.CodeMethodNotFound, "method not found: "+env.Method))
			return
		}
		result, err := handler(env.Params)
		if err != nil {
			s.respond(wire.NewErrorResponse(env.ID, wire.CodeServerError, err.Error()))
			return
		}
		if result == nil {
			result = json.RawMessage(`{}`)
		}
		s.respondResult(env.ID, result)
	}
}

func (s *Session) dispatchNotification(env *wire.Envelope) {
	if env.Method == wire.MethodInitialized {
		s.handleInitialized()
		return
	}

	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	if !state.acceptsViewTraffic() {
		s.log.Warn("notification dropped: session not ready", "method", env.Method, "state", state.String())
		return
	}

	if err := wire.ValidateParams(env); err != nil {
		s.log.Warn("notification dropped: invalid params", "method", env.Method, "error", err)
		return
	}

	if env.Method == wire.MethodSizeChanged {
		var params wire.SizeChangedParams
		if err := json.Unmarshal(env.Params, &params); err == nil {
			s.host.SizeChanged(params.Width, params.Height)
		}
	}

	s.mu.Lock()
	subs := append([]NotificationHandler(nil), s.notifSubs[env.Method]...)
	s.mu.Unlock()
	if len(subs) == 0 && env.Method != wire.MethodSizeChanged {
		s.log.Debug("notification has no subscriber", "method", env.Method)
	}
	for _, fn := range subs {
		fn(env.Params)
	}
}

// handleInitialize answers the view's handshake: negotiate capabilities,
// snapshot the host context, reply with host identity.
func (s *Session) handleInitialize(env *wire.Envelope) {
	if err := wire.ValidateParams(env); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}
	var params caps.InitializeParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}

	hostCaps := s.cfg.HostCapabilities()
	negotiated := caps.Negotiate(hostCaps, params.AppCapabilities, s.cfg.DisplayModes)

	s.mu.Lock()
	s.appInfo = params.AppInfo
	s.negotiated = &negotiated
	if s.hostCtx.DisplayMode == "" {
		s.hostCtx.DisplayMode = negotiated.DisplayModes[0]
	}
	if s.hostCtx.AvailableDisplayModes == nil {
		s.hostCtx.AvailableDisplayModes = negotiated.DisplayModes
	}
	s.initAnswered = true
	ctx := s.hostCtx
	s.mu.Unlock()

	result := caps.InitializeResult{
		ProtocolVersion:  wire.ProtocolVersion,
		HostCapabilities: hostCaps,
		HostInfo:         caps.HostInfo{Name: s.cfg.Host.Name, Version: s.cfg.Host.Version},
		HostContext:      &ctx,
	}
	s.respondResult(env.ID, result)
}

// handleInitialized completes the handshake and opens the session for
// application traffic.
func (s *Session) handleInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInitializing || !s.initAnswered {
		s.log.Warn("initialized notification dropped", "state", s.state.String(), "answered", s.initAnswered)
		return
	}
	s.state = StateReady
	s.log.Debug("session ready", "app", s.appInfo.Name)
}

func (s *Session) handleOpenLink(env *wire.Envelope) {
	var params wire.OpenLinkParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}
	if err := s.host.OpenLink(params.URL); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeServerError, err.Error()))
		return
	}
	s.respondResult(env.ID, struct{}{})
}

func (s *Session) handleMessage(env *wire.Envelope) {
	var params wire.MessageParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}
	result, err := s.host.HandleMessage(params.Role, params.Content)
	if err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeServerError, err.Error()))
		return
	}
	if result == nil {
		result = json.RawMessage(`{}`)
	}
	s.respondResult(env.ID, result)
}

// handleRequestDisplayMode honors a mode change only when the mode survived
// negotiation. A declined request echoes the current mode, never the
// requested one.
func (s *Session) handleRequestDisplayMode(env *wire.Envelope) {
	var params wire.RequestDisplayModeParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}

	requested := caps.DisplayMode(params.Mode)

	s.mu.Lock()
	negotiated := s.negotiated
	current := s.hostCtx.DisplayMode
	granted := current
	if negotiated != nil && negotiated.SupportsDisplayMode(requested) {
		granted = requested
		s.hostCtx.DisplayMode = requested
	}
	s.mu.Unlock()

	if granted != requested {
		s.log.Debug("display mode declined", "requested", string(requested), "current", string(current))
	}
	s.respondResult(env.ID, wire.DisplayModeResult{Mode: string(granted)})
}

func (s *Session) handleUpdateModelContext(env *wire.Envelope) {
	var params wire.UpdateModelContextParams
	if err := json.Unmarshal(env.Params, &params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeInvalidParams, err.Error()))
		return
	}
	if err := s.host.UpdateModelContext(params); err != nil {
		s.respond(wire.NewErrorResponse(env.ID, wire.CodeServerError, err.Error()))
		return
	}
	s.respondResult(env.ID, struct{}{})
}

func (s *Session) respond(env *wire.Envelope) {
	if err := s.ch.Send(env); err != nil {
		s.log.Warn("response send failed", "error", err)
	}
}

func (s *Session) respondResult(id json.RawMessage, result any) {
	env, err := wire.NewResponse(id, result)
	if err != nil {
		s.respond(wire.NewErrorResponse(id, wire.CodeInternalError, err.Error()))
		return
	}
	s.respond(env)
}

// handleChannelClosed fails every pending request and closes the session.
func (s *Session) handleChannelClosed() {
	s.mu.Lock()
	pending := s.pending
	s.pending = make(map[string]chan callOutcome)
	s.state = StateClosed
	td := s.teardown
	s.mu.Unlock()

	for id, ch := range pending {
		ch <- callOutcome{err: &SessionError{Type: SessionErrorTypeClosed, Message: "channel closed with request " + id + " pending"}}
	}
	if td != nil {
		s.finishTeardown(td, nil)
	}
	s.log.Debug("session closed: channel gone")
}
