// Package tools holds the cross-session tool registry and the visibility
// rules deciding which caller roles may see and invoke each tool.
package tools

import (
	"fmt"
	"sync"
)

// Role identifies who originated a tool call.
type Role uint8

const (
	// RoleModel is the agent driving the conversation.
	RoleModel Role = iota
	// RoleApp is a sandboxed view calling back into its own server.
	RoleApp
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleModel:
		return "model"
	case RoleApp:
		return "app"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// Visibility is one entry of a tool's declared access scope.
type Visibility string

const (
	VisibilityModel Visibility = "model"
	VisibilityApp   Visibility = "app"
)

// Meta is the per-tool metadata relevant to views: an optional linked
// resource URI and the visibility set. A nil visibility set defaults to
// both roles; a present-but-empty set grants access to neither.
type Meta struct {
	ResourceURI string       `json:"resourceUri,omitempty"`
	Visibility  []Visibility `json:"visibility,omitempty"`
}

// visibleTo applies the default-when-absent rule.
func (m *Meta) visibleTo(v Visibility) bool {
	if m == nil || m.Visibility == nil {
		return true
	}
	for _, entry := range m.Visibility {
		if entry == v {
			return true
		}
	}
	return false
}

// Tool is a registry entry: the owning server, the tool name, its schema
// blob and its view metadata.
type Tool struct {
	ServerID string
	Name     string
	Meta     *Meta
}

// AccessError explains why a call was rejected by the enforcer.
type AccessError struct {
	Type     AccessErrorType
	ServerID string
	Name     string
}

type AccessErrorType int

const (
	AccessErrorTypeUnknownTool AccessErrorType = iota
	AccessErrorTypeRoleDenied
	AccessErrorTypeCrossServer
)

func (e *AccessError) Error() string {
	switch e.Type {
	case AccessErrorTypeUnknownTool:
		return fmt.Sprintf("tool not found: %s/%s", e.ServerID, e.Name)
	case AccessErrorTypeRoleDenied:
		return fmt.Sprintf("tool %s/%s is not callable by this role", e.ServerID, e.Name)
	case AccessErrorTypeCrossServer:
		return fmt.Sprintf("tool %s/%s belongs to a different server than the calling view", e.ServerID, e.Name)
	default:
		return fmt.Sprintf("access error for %s/%s", e.ServerID, e.Name)
	}
}

// Registry is the only state shared across sessions. All reads and writes
// go through the lock.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool // key: serverID + "\x00" + name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func key(serverID, name string) string {
	return serverID + "\x00" + name
}

// Register adds or replaces a tool entry.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[key(t.ServerID, t.Name)] = t
}

// Remove deletes a tool entry if present.
func (r *Registry) Remove(serverID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, key(serverID, name))
}

// Lookup returns a tool entry by server and name.
func (r *Registry) Lookup(serverID, name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[key(serverID, name)]
	return t, ok
}

// ListForModel returns every tool the model may see. Tools whose declared
// visibility lacks "model" are excluded from the listing entirely.
func (r *Registry) ListForModel() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Tool
	for _, t := range r.tools {
		if t.Meta.visibleTo(VisibilityModel) {
			out = append(out, t)
		}
	}
	return out
}

// ListForServer returns every tool registered for one server, regardless of
// visibility. Intended for host-side bookkeeping, not for listings exposed
// to callers.
func (r *Registry) ListForServer(serverID string) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Tool
	for _, t := range r.tools {
		if t.ServerID == serverID {
			out = append(out, t)
		}
	}
	return out
}

// Authorize decides whether a call may proceed. viewServerID is the server
// whose resource the calling view was loaded from; it is ignored for
// model-originated calls. Cross-server calls from views are always
// rejected regardless of visibility.
func (r *Registry) Authorize(role Role, viewServerID, toolServerID, name string) error {
	t, ok := r.Lookup(toolServerID, name)
	if !ok {
		return &AccessError{Type: AccessErrorTypeUnknownTool, ServerID: toolServerID, Name: name}
	}

	switch role {
	case RoleApp:
		if viewServerID != toolServerID {
			return &AccessError{Type: AccessErrorTypeCrossServer, ServerID: toolServerID, Name: name}
		}
		if !t.Meta.visibleTo(VisibilityApp) {
			return &AccessError{Type: AccessErrorTypeRoleDenied, ServerID: toolServerID, Name: name}
		}
	case RoleModel:
		if !t.Meta.visibleTo(VisibilityModel) {
			return &AccessError{Type: AccessErrorTypeRoleDenied, ServerID: toolServerID, Name: name}
		}
	}
	return nil
}
