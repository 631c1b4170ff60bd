// Package relay implements proxy-mode forwarding: a transparent pump
// between the outer host channel and the inner view channel that preserves
// per-direction ordering and intercepts the reserved sandbox-control
// methods so they never cross the boundary.
package relay

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/machinefabric/uibridge-go/channel"
	"github.com/machinefabric/uibridge-go/wire"
)

// ResourceReadyFunc receives the intercepted sandbox-resource-ready payload:
// the content plus its derived policy, to be rendered by the inner layer.
type ResourceReadyFunc func(wire.SandboxResourceReadyParams)

// Relay forwards envelopes verbatim between a host-facing and a view-facing
// channel. Application traffic passes untouched in arrival order; methods
// under the reserved sandbox prefix are consumed by the relay itself.
type Relay struct {
	host channel.Channel
	view channel.Channel
	log  *slog.Logger

	onResourceReady ResourceReadyFunc

	readyOnce sync.Once
	closeOnce sync.Once
}

// Options configures a relay.
type Options struct {
	// Logger receives intercept and drop diagnostics. Nil means slog.Default.
	Logger *slog.Logger

	// OnResourceReady handles the intercepted resource payload from the
	// host side. Nil payloads are logged and dropped.
	OnResourceReady ResourceReadyFunc
}

// New creates a relay between an outer host channel and an inner view
// channel. Call Run to start pumping.
func New(host, view channel.Channel, opts Options) *Relay {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		host:            host,
		view:            view,
		log:             logger.With("component", "relay"),
		onResourceReady: opts.OnResourceReady,
	}
}

// SignalProxyReady emits the one relay-originated message: the fixed ready
// notification toward the host. Repeat calls are no-ops; the host must see
// the signal at most once.
func (r *Relay) SignalProxyReady() error {
	var err error
	sent := false
	r.readyOnce.Do(func() {
		err = r.host.Send(wire.NewSandboxProxyReadyNotification())
		sent = true
	})
	if !sent {
		r.log.Debug("proxy-ready already signalled")
	}
	return err
}

// Run pumps both directions until either side closes, then closes both
// channels and returns. Each direction is a single goroutine, so arrival
// order is preserved per direction.
func (r *Relay) Run() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		r.pump(r.host, r.view, r.interceptFromHost)
		r.closeBoth()
	}()
	go func() {
		defer wg.Done()
		r.pump(r.view, r.host, r.interceptFromView)
		r.closeBoth()
	}()
	wg.Wait()
}

// pump forwards envelopes from src to dst until src closes. intercept
// returns true when the envelope was consumed and must not be forwarded.
func (r *Relay) pump(src, dst channel.Channel, intercept func(*wire.Envelope) bool) {
	for {
		env, err := src.Receive()
		if err != nil {
			if err != channel.ErrClosed {
				r.log.Warn("relay receive failed", "error", err)
			}
			return
		}
		if intercept(env) {
			continue
		}
		if err := dst.Send(env); err != nil {
			r.log.Warn("relay forward failed", "method", env.Method, "error", err)
			return
		}
	}
}

// interceptFromHost consumes reserved methods arriving from the host side.
// The resource payload is handed to the local renderer; everything else
// under the prefix is dropped with a diagnostic.
func (r *Relay) interceptFromHost(env *wire.Envelope) bool {
	if !wire.IsRelayReserved(env.Method) {
		return false
	}
	if env.Method == wire.MethodSandboxResourceReady {
		var params wire.SandboxResourceReadyParams
		if err := json.Unmarshal(env.Params, &params); err != nil {
			r.log.Warn("resource payload dropped: bad params", "error", err)
			return true
		}
		if r.onResourceReady == nil {
			r.log.Warn("resource payload dropped: no handler")
			return true
		}
		r.onResourceReady(params)
		return true
	}
	r.log.Warn("reserved method from host dropped", "method", env.Method)
	return true
}

// interceptFromView consumes reserved methods arriving from the inner view.
// The inner layer never legitimately originates relay-control traffic; the
// ready signal belongs to the relay itself.
func (r *Relay) interceptFromView(env *wire.Envelope) bool {
	if !wire.IsRelayReserved(env.Method) {
		return false
	}
	r.log.Warn("reserved method from view dropped", "method", env.Method)
	return true
}

func (r *Relay) closeBoth() {
	r.closeOnce.Do(func() {
		_ = r.host.Close()
		_ = r.view.Close()
	})
}
