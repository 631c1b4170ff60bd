package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind Kind
	}{
		{"request", `{"jsonrpc":"2.0","id":1,"method":"ui/open-link","params":{"url":"https://example.com"}}`, KindRequest},
		{"string id request", `{"jsonrpc":"2.0","id":"abc","method":"ui/message","params":{"role":"user","content":[]}}`, KindRequest},
		{"notification", `{"jsonrpc":"2.0","method":"ui/notifications/initialized"}`, KindNotification},
		{"null id notification", `{"jsonrpc":"2.0","id":null,"method":"ui/notifications/size-changed","params":{"width":1,"height":1}}`, KindNotification},
		{"response", `{"jsonrpc":"2.0","id":1,"result":{}}`, KindResponse},
		{"error", `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"nope"}}`, KindError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.kind, env.Kind())
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{not json`))
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, CodecErrorTypeParse, ce.Type)
}

func TestDecodeInvalidShape(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"x"}`},
		{"method with result", `{"jsonrpc":"2.0","id":1,"method":"x","result":{}}`},
		{"result and error", `{"jsonrpc":"2.0","id":1,"result":{},"error":{"code":1,"message":"m"}}`},
		{"empty envelope", `{"jsonrpc":"2.0","id":1}`},
		{"response without id", `{"jsonrpc":"2.0","result":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			ce, ok := err.(*CodecError)
			require.True(t, ok)
			assert.Equal(t, CodecErrorTypeShape, ce.Type)
		})
	}
}

func TestIDEchoedVerbatim(t *testing.T) {
	// View-originated ids must round-trip untouched, whatever their JSON type.
	for _, id := range []string{`42`, `"req-7"`, `"00000000-0000-0000-0000-000000000000"`} {
		env, err := Decode([]byte(`{"jsonrpc":"2.0","id":` + id + `,"method":"ui/open-link","params":{"url":"https://x"}}`))
		require.NoError(t, err)
		resp, err := NewResponse(env.ID, struct{}{})
		require.NoError(t, err)
		data, err := Encode(resp)
		require.NoError(t, err)
		var decoded map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.JSONEq(t, id, string(decoded["id"]))
	}
}

func TestReservedRelayPrefix(t *testing.T) {
	assert.True(t, IsRelayReserved(MethodSandboxProxyReady))
	assert.True(t, IsRelayReserved(MethodSandboxResourceReady))
	assert.True(t, IsRelayReserved("ui/notifications/sandbox-future-thing"))
	assert.False(t, IsRelayReserved(MethodSizeChanged))
	assert.False(t, IsRelayReserved(MethodInitialize))
}

func TestViewMethodKind(t *testing.T) {
	k, ok := ViewMethodKind(MethodOpenLink)
	require.True(t, ok)
	assert.Equal(t, KindRequest, k)

	k, ok = ViewMethodKind(MethodSizeChanged)
	require.True(t, ok)
	assert.Equal(t, KindNotification, k)

	_, ok = ViewMethodKind("ui/unknown")
	assert.False(t, ok)
}

func TestValidateParams(t *testing.T) {
	valid, err := NewRequest("1", MethodOpenLink, OpenLinkParams{URL: "https://example.com"})
	require.NoError(t, err)
	assert.NoError(t, ValidateParams(valid))

	missing, err := NewRequest("2", MethodOpenLink, map[string]string{})
	require.NoError(t, err)
	err = ValidateParams(missing)
	require.Error(t, err)
	_, ok := err.(*SchemaValidationError)
	assert.True(t, ok)

	badMode, err := NewRequest("3", MethodRequestDisplayMode, map[string]string{"mode": "holographic"})
	require.NoError(t, err)
	assert.Error(t, ValidateParams(badMode))

	negative, err := NewNotification(MethodSizeChanged, map[string]int{"width": -4, "height": 10})
	require.NoError(t, err)
	assert.Error(t, ValidateParams(negative))

	// Unknown methods validate trivially; the router handles them.
	unknown, err := NewRequest("4", "ui/custom", map[string]string{"anything": "goes"})
	require.NoError(t, err)
	assert.NoError(t, ValidateParams(unknown))
}

func TestValidateParamsNilMeansEmptyObject(t *testing.T) {
	env, err := NewNotification(MethodInitialized, nil)
	require.NoError(t, err)
	assert.NoError(t, ValidateParams(env))
}
