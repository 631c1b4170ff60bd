package channel

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/machinefabric/uibridge-go/wire"
)

// WSChannel adapts a websocket connection to the Channel interface.
// Envelopes travel as JSON text messages. Malformed inbound payloads are
// skipped, matching the drop-and-log contract: the reader simply moves to
// the next message and the caller's logger sees the decode error via
// DecodeErrors.
type WSChannel struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool

	// decodeErrs receives codec failures for diagnostics. Nil by default.
	decodeErrs chan<- error
}

// NewWSChannel wraps an established websocket connection.
func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

// DecodeErrors sets an optional sink for skipped-payload decode errors.
func (w *WSChannel) DecodeErrors(sink chan<- error) {
	w.decodeErrs = sink
}

// Send writes the envelope as one text message. Gorilla connections permit
// one concurrent writer, hence the lock.
func (w *WSChannel) Send(env *wire.Envelope) error {
	if w.isClosed() {
		return ErrClosed
	}
	data, err := wire.Encode(env)
	if err != nil {
		return err
	}
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return ErrClosed
	}
	return nil
}

// Receive reads messages until one decodes into a valid envelope. Returns
// ErrClosed when the connection drops.
func (w *WSChannel) Receive() (*wire.Envelope, error) {
	for {
		if w.isClosed() {
			return nil, ErrClosed
		}
		_, data, err := w.conn.ReadMessage()
		if err != nil {
			return nil, ErrClosed
		}
		env, err := wire.Decode(data)
		if err != nil {
			if w.decodeErrs != nil {
				select {
				case w.decodeErrs <- err:
				default:
				}
			}
			continue
		}
		return env, nil
	}
}

// Close closes the underlying connection.
func (w *WSChannel) Close() error {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.conn.Close()
}

func (w *WSChannel) isClosed() bool {
	w.closeMu.Lock()
	defer w.closeMu.Unlock()
	return w.closed
}
