package hostcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/uibridge-go/caps"
)

func TestDefaultsAreRestrictive(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout.Std())
	assert.Equal(t, DefaultTeardownTimeout, cfg.TeardownTimeout.Std())
	assert.Equal(t, []caps.DisplayMode{caps.DisplayModeInline}, cfg.DisplayModes)

	hc := cfg.HostCapabilities()
	assert.False(t, hc.GrantedPermissions().HasAny())
	require.NotNil(t, hc.Sandbox)
	assert.Empty(t, hc.Sandbox.CSP.ConnectDomains)
}

func TestLoadFullDocument(t *testing.T) {
	doc := `
host:
  name: demo-host
  version: 1.2.3
request_timeout: 10s
teardown_timeout: 2s
display_modes: [inline, fullscreen]
permissions:
  camera: true
  clipboard_write: true
approved_domains:
  connect: ["https://api.example.com"]
  resource: ["https://cdn.example.com"]
draw_borders: true
`
	cfg, err := Load([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "demo-host", cfg.Host.Name)
	assert.Equal(t, "1.2.3", cfg.Host.Version)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout.Std())
	assert.Equal(t, 2*time.Second, cfg.TeardownTimeout.Std())
	assert.Equal(t, []caps.DisplayMode{caps.DisplayModeInline, caps.DisplayModeFullscreen}, cfg.DisplayModes)
	assert.True(t, cfg.DrawBorders)

	hc := cfg.HostCapabilities()
	perms := hc.GrantedPermissions()
	assert.NotNil(t, perms.Camera)
	assert.NotNil(t, perms.ClipboardWrite)
	assert.Nil(t, perms.Microphone)
	assert.Equal(t, []string{"https://api.example.com"}, hc.Sandbox.CSP.ConnectDomains)
	assert.Equal(t, []string{"https://cdn.example.com"}, hc.Sandbox.CSP.ResourceDomains)
}

func TestLoadAppliesDefaultsToSparseDocument(t *testing.T) {
	cfg, err := Load([]byte(`host: {name: sparse}`))
	require.NoError(t, err)
	assert.Equal(t, "sparse", cfg.Host.Name)
	assert.Equal(t, "0.0.0", cfg.Host.Version)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout.Std())
	assert.Equal(t, []caps.DisplayMode{caps.DisplayModeInline}, cfg.DisplayModes)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load([]byte("host: [unclosed"))
	assert.Error(t, err)
}

func TestLoadRejectsUnknownDisplayMode(t *testing.T) {
	_, err := Load([]byte("display_modes: [inline, holographic]"))
	assert.Error(t, err)
}
