package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(Tool{ServerID: "weather", Name: "get_forecast", Meta: &Meta{ResourceURI: "ui://weather/widget.html"}})
	r.Register(Tool{ServerID: "weather", Name: "refresh_data", Meta: &Meta{Visibility: []Visibility{VisibilityApp}}})
	r.Register(Tool{ServerID: "weather", Name: "admin_purge", Meta: &Meta{Visibility: []Visibility{}}})
	r.Register(Tool{ServerID: "maps", Name: "geocode", Meta: nil})
	return r
}

func TestListForModelExcludesAppOnly(t *testing.T) {
	r := newTestRegistry()
	listed := r.ListForModel()

	names := make(map[string]bool, len(listed))
	for _, tool := range listed {
		names[tool.ServerID+"/"+tool.Name] = true
	}
	assert.True(t, names["weather/get_forecast"])
	assert.True(t, names["maps/geocode"], "nil metadata defaults to visible")
	assert.False(t, names["weather/refresh_data"], "app-only tool must not appear in model listing")
	assert.False(t, names["weather/admin_purge"], "empty visibility grants nobody")
}

func TestAuthorizeModel(t *testing.T) {
	r := newTestRegistry()

	assert.NoError(t, r.Authorize(RoleModel, "", "weather", "get_forecast"))

	err := r.Authorize(RoleModel, "", "weather", "refresh_data")
	require.Error(t, err)
	ae, ok := err.(*AccessError)
	require.True(t, ok)
	assert.Equal(t, AccessErrorTypeRoleDenied, ae.Type)
}

func TestAuthorizeApp(t *testing.T) {
	r := newTestRegistry()

	assert.NoError(t, r.Authorize(RoleApp, "weather", "weather", "refresh_data"))
	assert.NoError(t, r.Authorize(RoleApp, "weather", "weather", "get_forecast"))

	err := r.Authorize(RoleApp, "weather", "weather", "admin_purge")
	require.Error(t, err)
	assert.Equal(t, AccessErrorTypeRoleDenied, err.(*AccessError).Type)
}

func TestAuthorizeCrossServerAlwaysRejected(t *testing.T) {
	r := newTestRegistry()

	// Even a tool visible to apps is off-limits across servers.
	err := r.Authorize(RoleApp, "maps", "weather", "refresh_data")
	require.Error(t, err)
	assert.Equal(t, AccessErrorTypeCrossServer, err.(*AccessError).Type)

	err = r.Authorize(RoleApp, "maps", "weather", "get_forecast")
	require.Error(t, err)
	assert.Equal(t, AccessErrorTypeCrossServer, err.(*AccessError).Type)
}

func TestAuthorizeUnknownTool(t *testing.T) {
	r := newTestRegistry()
	err := r.Authorize(RoleModel, "", "weather", "no_such_tool")
	require.Error(t, err)
	assert.Equal(t, AccessErrorTypeUnknownTool, err.(*AccessError).Type)
}

func TestRegisterRemoveLookup(t *testing.T) {
	r := NewRegistry()
	r.Register(Tool{ServerID: "s", Name: "t"})

	_, ok := r.Lookup("s", "t")
	assert.True(t, ok)

	r.Remove("s", "t")
	_, ok = r.Lookup("s", "t")
	assert.False(t, ok)
}

func TestListForServer(t *testing.T) {
	r := newTestRegistry()
	assert.Len(t, r.ListForServer("weather"), 3)
	assert.Len(t, r.ListForServer("maps"), 1)
	assert.Empty(t, r.ListForServer("other"))
}
