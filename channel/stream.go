package channel

import (
	"fmt"
	"io"
	"sync"

	cborlib "github.com/fxamacker/cbor/v2"

	"github.com/machinefabric/uibridge-go/wire"
)

// Default maximum frame size (3.5 MB), safe margin below transport limits.
const DefaultMaxFrame = 3_670_016

// Hard limit on frame size (16 MB). Prevents a hostile peer from forcing
// unbounded allocation.
const MaxFrameHardLimit = 16_777_216

// Limits bounds frame sizes on a stream channel.
type Limits struct {
	MaxFrame int
}

// DefaultLimits returns the default frame bound.
func DefaultLimits() Limits {
	return Limits{MaxFrame: DefaultMaxFrame}
}

// frame is the CBOR wrapper carrying one envelope's JSON bytes.
type frame struct {
	Version uint8  `cbor:"v"`
	Payload []byte `cbor:"p"`
}

// frameVersion is the stream framing revision.
const frameVersion uint8 = 1

// FrameError reports a framing failure on a stream channel.
type FrameError struct {
	Type    FrameErrorType
	Message string
}

type FrameErrorType int

const (
	FrameErrorTypeIO FrameErrorType = iota
	FrameErrorTypeDecode
	FrameErrorTypeTooLarge
	FrameErrorTypeVersion
)

func (e *FrameError) Error() string {
	switch e.Type {
	case FrameErrorTypeIO:
		return fmt.Sprintf("stream channel I/O error: %s", e.Message)
	case FrameErrorTypeDecode:
		return fmt.Sprintf("stream channel decode error: %s", e.Message)
	case FrameErrorTypeTooLarge:
		return fmt.Sprintf("stream channel frame exceeds limit: %s", e.Message)
	case FrameErrorTypeVersion:
		return fmt.Sprintf("stream channel version mismatch: %s", e.Message)
	default:
		return fmt.Sprintf("stream channel error: %s", e.Message)
	}
}

// StreamChannel frames envelopes as length-prefixed CBOR over a byte
// stream pair. Used for subprocess stdio and socket transports.
type StreamChannel struct {
	reader io.Reader
	writer io.Writer

	limits Limits

	readMu  sync.Mutex
	writeMu sync.Mutex
	closeMu sync.Mutex
	closed  bool
	closer  io.Closer
}

// NewStreamChannel creates a stream channel over a reader/writer pair with
// default limits. If the underlying transport needs closing, pass it as
// closer; otherwise pass nil.
func NewStreamChannel(r io.Reader, w io.Writer, closer io.Closer) *StreamChannel {
	return &StreamChannel{reader: r, writer: w, limits: DefaultLimits(), closer: closer}
}

// SetLimits replaces the frame bound. MaxFrame is clamped to the hard
// limit.
func (s *StreamChannel) SetLimits(limits Limits) {
	if limits.MaxFrame <= 0 || limits.MaxFrame > MaxFrameHardLimit {
		limits.MaxFrame = MaxFrameHardLimit
	}
	s.limits = limits
}

// Send encodes the envelope and writes one frame: 4-byte big-endian length
// followed by the CBOR body.
func (s *StreamChannel) Send(env *wire.Envelope) error {
	if s.isClosed() {
		return ErrClosed
	}
	payload, err := wire.Encode(env)
	if err != nil {
		return err
	}
	body, err := cborlib.Marshal(frame{Version: frameVersion, Payload: payload})
	if err != nil {
		return &FrameError{Type: FrameErrorTypeDecode, Message: err.Error()}
	}
	if len(body) > s.limits.MaxFrame {
		return &FrameError{Type: FrameErrorTypeTooLarge, Message: fmt.Sprintf("%d > %d", len(body), s.limits.MaxFrame)}
	}

	header := []byte{
		byte(len(body) >> 24),
		byte(len(body) >> 16),
		byte(len(body) >> 8),
		byte(len(body)),
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.writer.Write(header); err != nil {
		return &FrameError{Type: FrameErrorTypeIO, Message: err.Error()}
	}
	if _, err := s.writer.Write(body); err != nil {
		return &FrameError{Type: FrameErrorTypeIO, Message: err.Error()}
	}
	return nil
}

// Receive reads one frame and decodes the envelope. Returns ErrClosed on
// EOF or after Close.
func (s *StreamChannel) Receive() (*wire.Envelope, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}

	s.readMu.Lock()
	defer s.readMu.Unlock()

	header := make([]byte, 4)
	if _, err := io.ReadFull(s.reader, header); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrClosed
		}
		return nil, &FrameError{Type: FrameErrorTypeIO, Message: err.Error()}
	}
	size := int(header[0])<<24 | int(header[1])<<16 | int(header[2])<<8 | int(header[3])
	if size > s.limits.MaxFrame {
		return nil, &FrameError{Type: FrameErrorTypeTooLarge, Message: fmt.Sprintf("%d > %d", size, s.limits.MaxFrame)}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(s.reader, body); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrClosed
		}
		return nil, &FrameError{Type: FrameErrorTypeIO, Message: err.Error()}
	}

	var f frame
	if err := cborlib.Unmarshal(body, &f); err != nil {
		return nil, &FrameError{Type: FrameErrorTypeDecode, Message: err.Error()}
	}
	if f.Version != frameVersion {
		return nil, &FrameError{Type: FrameErrorTypeVersion, Message: fmt.Sprintf("got %d, want %d", f.Version, frameVersion)}
	}

	return wire.Decode(f.Payload)
}

// Close marks the channel closed and closes the underlying transport when
// one was provided.
func (s *StreamChannel) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *StreamChannel) isClosed() bool {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	return s.closed
}
