package channel

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/uibridge-go/wire"
)

func TestPipeOrderedDelivery(t *testing.T) {
	a, b := Pipe()
	defer a.Close()

	for _, method := range []string{"first", "second", "third"} {
		env, err := wire.NewNotification(method, nil)
		require.NoError(t, err)
		require.NoError(t, a.Send(env))
	}

	for _, method := range []string{"first", "second", "third"} {
		env, err := b.Receive()
		require.NoError(t, err)
		assert.Equal(t, method, env.Method)
	}
}

func TestPipeCloseEitherEnd(t *testing.T) {
	a, b := Pipe()
	require.NoError(t, b.Close())

	env, _ := wire.NewNotification("late", nil)
	assert.Equal(t, ErrClosed, a.Send(env))
	_, err := a.Receive()
	assert.Equal(t, ErrClosed, err)
}

func TestPipeDrainsQueuedAfterClose(t *testing.T) {
	a, b := Pipe()
	env, _ := wire.NewNotification("queued", nil)
	require.NoError(t, a.Send(env))
	require.NoError(t, a.Close())

	got, err := b.Receive()
	require.NoError(t, err)
	assert.Equal(t, "queued", got.Method)

	_, err = b.Receive()
	assert.Equal(t, ErrClosed, err)
}

func TestStreamChannelRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	sender := NewStreamChannel(strings.NewReader(""), &buf, nil)
	receiver := NewStreamChannel(&buf, io.Discard, nil)

	req, err := wire.NewRequest("id-1", "ui/open-link", wire.OpenLinkParams{URL: "https://example.com"})
	require.NoError(t, err)
	require.NoError(t, sender.Send(req))

	got, err := receiver.Receive()
	require.NoError(t, err)
	assert.Equal(t, "ui/open-link", got.Method)
	assert.Equal(t, req.IDKey(), got.IDKey())
}

func TestStreamChannelEOFIsClosed(t *testing.T) {
	ch := NewStreamChannel(strings.NewReader(""), io.Discard, nil)
	_, err := ch.Receive()
	assert.Equal(t, ErrClosed, err)
}

func TestStreamChannelFrameTooLarge(t *testing.T) {
	var buf bytes.Buffer
	ch := NewStreamChannel(&buf, &buf, nil)
	ch.SetLimits(Limits{MaxFrame: 64})

	big, err := wire.NewNotification("big", map[string]string{"payload": strings.Repeat("x", 256)})
	require.NoError(t, err)

	err = ch.Send(big)
	require.Error(t, err)
	fe, ok := err.(*FrameError)
	require.True(t, ok)
	assert.Equal(t, FrameErrorTypeTooLarge, fe.Type)
}

func TestStreamChannelOversizedHeaderRejected(t *testing.T) {
	// A hostile length prefix must be rejected before allocation.
	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff})
	ch := NewStreamChannel(&buf, io.Discard, nil)

	_, err := ch.Receive()
	require.Error(t, err)
	fe, ok := err.(*FrameError)
	require.True(t, ok)
	assert.Equal(t, FrameErrorTypeTooLarge, fe.Type)
}

func TestStreamChannelGarbageFrame(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, 0, 4})
	buf.WriteString("junk")
	ch := NewStreamChannel(&buf, io.Discard, nil)

	_, err := ch.Receive()
	require.Error(t, err)
	fe, ok := err.(*FrameError)
	require.True(t, ok)
	assert.Equal(t, FrameErrorTypeDecode, fe.Type)
}

func TestStreamChannelSendAfterClose(t *testing.T) {
	ch := NewStreamChannel(strings.NewReader(""), io.Discard, nil)
	require.NoError(t, ch.Close())

	env, _ := wire.NewNotification("late", nil)
	assert.Equal(t, ErrClosed, ch.Send(env))
	_, err := ch.Receive()
	assert.Equal(t, ErrClosed, err)
}
