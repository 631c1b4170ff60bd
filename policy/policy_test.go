package policy

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machinefabric/uibridge-go/caps"
)

func TestBuildCSPRestrictiveDefault(t *testing.T) {
	csp := BuildCSP(nil)
	assert.Contains(t, csp, "default-src 'none'")
	assert.Contains(t, csp, "connect-src 'none'")
	assert.Contains(t, csp, "frame-src 'none'")
	assert.Contains(t, csp, "base-uri 'self'")
	assert.Contains(t, csp, "object-src 'none'")
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline'")
	assert.Contains(t, csp, "img-src 'self' data:")
}

func TestBuildCSPResourceDomainsWidenFetchDirectives(t *testing.T) {
	csp := BuildCSP(&ResourceCSP{ResourceDomains: []string{"https://cdn.example.com"}})
	for _, directive := range []string{"script-src", "style-src", "img-src", "media-src", "font-src"} {
		assert.Contains(t, csp, directive+" ", "directive %s missing", directive)
	}
	assert.Contains(t, csp, "script-src 'self' 'unsafe-inline' https://cdn.example.com")
	assert.Contains(t, csp, "font-src 'self' https://cdn.example.com")
	// Declared resource domains never leak into connect or frame.
	assert.Contains(t, csp, "connect-src 'none'")
	assert.Contains(t, csp, "frame-src 'none'")
}

func TestBuildCSPPerAxisDeclarations(t *testing.T) {
	csp := BuildCSP(&ResourceCSP{
		ConnectDomains: []string{"https://api.example.com", "wss://stream.example.com"},
		FrameDomains:   []string{"https://embed.example.com"},
		BaseURIDomains: []string{"https://app.example.com"},
	})
	assert.Contains(t, csp, "connect-src https://api.example.com wss://stream.example.com")
	assert.Contains(t, csp, "frame-src https://embed.example.com")
	assert.Contains(t, csp, "base-uri https://app.example.com")
}

func TestBuildCSPObjectSrcAlwaysDenied(t *testing.T) {
	csp := BuildCSP(&ResourceCSP{
		ConnectDomains:  []string{"*"},
		ResourceDomains: []string{"*"},
		FrameDomains:    []string{"*"},
		BaseURIDomains:  []string{"*"},
	})
	assert.Contains(t, csp, "object-src 'none'")
	assert.True(t, strings.HasPrefix(csp, "default-src 'none'"))
}

func TestBuildPermissionIntersection(t *testing.T) {
	meta := &ResourceMeta{
		Permissions: &caps.Permissions{
			Camera:      &caps.Empty{},
			Microphone:  &caps.Empty{},
			Geolocation: &caps.Empty{},
		},
	}
	granted := &caps.Permissions{Camera: &caps.Empty{}, Geolocation: &caps.Empty{}}

	p := Build(meta, granted)
	assert.Equal(t, []string{"camera", "geolocation"}, p.Permissions)
}

func TestBuildNoMetadataYieldsDefault(t *testing.T) {
	p := Build(nil, &caps.Permissions{Camera: &caps.Empty{}})
	assert.Empty(t, p.Permissions)
	assert.Equal(t, BuildCSP(nil), p.CSP)
}

func TestBuildRequestedButNotGranted(t *testing.T) {
	meta := &ResourceMeta{Permissions: &caps.Permissions{Camera: &caps.Empty{}}}
	p := Build(meta, &caps.Permissions{})
	assert.Empty(t, p.Permissions)
}

func TestResourceMetaBorderTriState(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want BorderPreference
	}{
		{"absent", `{}`, BorderHostDefault},
		{"true", `{"prefersBorder":true}`, BorderRequested},
		{"false", `{"prefersBorder":false}`, BorderDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m ResourceMeta
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.want, m.PrefersBorder)

			data, err := json.Marshal(m)
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(data))
		})
	}
}

func TestValidURI(t *testing.T) {
	assert.True(t, ValidURI("ui://weather/widget.html"))
	assert.False(t, ValidURI("https://weather/widget.html"))
	assert.False(t, ValidURI("file:///etc/passwd"))
}

func TestValidContentType(t *testing.T) {
	assert.True(t, ValidContentType(MIMEProfile))
	assert.True(t, ValidContentType("text/html"))
	assert.False(t, ValidContentType("application/json"))
}
