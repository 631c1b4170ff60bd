// Package channel provides the duplex, ordered message channel the engine
// runs over, plus three implementations: an in-memory pipe pair, a CBOR
// frame codec over byte streams, and a websocket adapter.
package channel

import (
	"errors"

	"github.com/machinefabric/uibridge-go/wire"
)

// ErrClosed is returned by Send and Receive after either side closes the
// channel.
var ErrClosed = errors.New("channel: closed")

// Channel is an abstract duplex, ordered channel carrying envelopes between
// two endpoints. Implementations must preserve per-direction ordering.
// Receive blocks until a message arrives or the channel closes.
type Channel interface {
	Send(env *wire.Envelope) error
	Receive() (*wire.Envelope, error)
	Close() error
}
