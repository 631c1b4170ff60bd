package caps

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerDimensionsRoundTrip(t *testing.T) {
	c := ContainerDimensions{
		Width:  FixedDimension(800),
		Height: FlexibleMaxDimension(600),
	}
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"width":800,"maxHeight":600}`, string(data))

	var back ContainerDimensions
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, DimensionFixed, back.Width.Kind())
	assert.Equal(t, uint32(800), back.Width.Value())
	assert.Equal(t, DimensionFlexibleMax, back.Height.Kind())
	assert.Equal(t, uint32(600), back.Height.Value())
}

func TestContainerDimensionsUnbounded(t *testing.T) {
	var c ContainerDimensions
	require.NoError(t, json.Unmarshal([]byte(`{}`), &c))
	assert.Equal(t, DimensionUnbounded, c.Width.Kind())
	assert.Equal(t, DimensionUnbounded, c.Height.Kind())

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestContainerDimensionsAmbiguous(t *testing.T) {
	var c ContainerDimensions
	err := json.Unmarshal([]byte(`{"height":100,"maxHeight":200}`), &c)
	assert.ErrorIs(t, err, ErrAmbiguousDimension)

	err = json.Unmarshal([]byte(`{"width":100,"maxWidth":200}`), &c)
	assert.ErrorIs(t, err, ErrAmbiguousDimension)
}

func TestHostContextMergeIsSparse(t *testing.T) {
	hc := HostContext{
		Theme:       "dark",
		DisplayMode: DisplayModeInline,
		Locale:      "en-US",
	}
	require.NoError(t, hc.Merge(json.RawMessage(`{"theme":"light"}`)))
	assert.Equal(t, "light", hc.Theme)
	assert.Equal(t, DisplayModeInline, hc.DisplayMode)
	assert.Equal(t, "en-US", hc.Locale)
}

func TestHostContextMergeDimensions(t *testing.T) {
	var hc HostContext
	require.NoError(t, hc.Merge(json.RawMessage(`{"containerDimensions":{"maxWidth":1024}}`)))
	require.NotNil(t, hc.ContainerDimensions)
	assert.Equal(t, DimensionFlexibleMax, hc.ContainerDimensions.Width.Kind())
	assert.Equal(t, uint32(1024), hc.ContainerDimensions.Width.Value())
	assert.Equal(t, DimensionUnbounded, hc.ContainerDimensions.Height.Kind())
}
