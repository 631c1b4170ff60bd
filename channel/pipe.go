package channel

import (
	"sync"

	"github.com/machinefabric/uibridge-go/wire"
)

// pipeEnd is one side of an in-memory channel pair.
type pipeEnd struct {
	send chan<- *wire.Envelope
	recv <-chan *wire.Envelope

	mu     sync.Mutex
	closed chan struct{}
	once   *sync.Once
}

// Pipe creates a connected pair of in-memory channels. Messages written on
// one end arrive on the other in order. Closing either end closes both.
// Intended for tests and in-process views.
func Pipe() (Channel, Channel) {
	ab := make(chan *wire.Envelope, 64)
	ba := make(chan *wire.Envelope, 64)
	closed := make(chan struct{})
	once := &sync.Once{}

	a := &pipeEnd{send: ab, recv: ba, closed: closed, once: once}
	b := &pipeEnd{send: ba, recv: ab, closed: closed, once: once}
	return a, b
}

func (p *pipeEnd) Send(env *wire.Envelope) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}
	select {
	case p.send <- env:
		return nil
	case <-p.closed:
		return ErrClosed
	}
}

func (p *pipeEnd) Receive() (*wire.Envelope, error) {
	select {
	case env := <-p.recv:
		return env, nil
	case <-p.closed:
		// Drain anything already queued before reporting closure.
		select {
		case env := <-p.recv:
			return env, nil
		default:
			return nil, ErrClosed
		}
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}
