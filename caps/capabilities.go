// Package caps defines the capability records exchanged during the
// initialize handshake and the negotiation that merges them into an
// immutable per-session record.
package caps

import "encoding/json"

// Empty marks a capability flag as present. Presence carries the meaning;
// the object itself is always empty on the wire.
type Empty struct{}

// DisplayMode is how a view is presented by the host.
type DisplayMode string

const (
	DisplayModeInline     DisplayMode = "inline"
	DisplayModeFullscreen DisplayMode = "fullscreen"
	DisplayModePip        DisplayMode = "pip"
)

// Valid reports whether the mode is one of the recognized values.
func (m DisplayMode) Valid() bool {
	switch m {
	case DisplayModeInline, DisplayModeFullscreen, DisplayModePip:
		return true
	}
	return false
}

// AppCapabilities is declared by the view in its initialize request.
type AppCapabilities struct {
	Experimental json.RawMessage `json:"experimental,omitempty"`

	// Tools is present when the app exposes tools the host can call back.
	Tools *AppToolsCapability `json:"tools,omitempty"`

	// AvailableDisplayModes lists the modes the app can render in.
	// Absent means the app follows the host's defaults.
	AvailableDisplayModes []DisplayMode `json:"availableDisplayModes,omitempty"`
}

// SupportsDisplayMode reports whether the app declared support for a mode.
// An absent declaration defaults to true.
func (a *AppCapabilities) SupportsDisplayMode(mode DisplayMode) bool {
	if a.AvailableDisplayModes == nil {
		return true
	}
	for _, m := range a.AvailableDisplayModes {
		if m == mode {
			return true
		}
	}
	return false
}

// AppToolsCapability flags app-exposed tools.
type AppToolsCapability struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

// HostCapabilities is the statically configured host side of negotiation.
type HostCapabilities struct {
	Experimental    json.RawMessage        `json:"experimental,omitempty"`
	OpenLinks       *Empty                 `json:"openLinks,omitempty"`
	ServerTools     *ListChangedCapability `json:"serverTools,omitempty"`
	ServerResources *ListChangedCapability `json:"serverResources,omitempty"`
	Logging         *Empty                 `json:"logging,omitempty"`
	Sandbox         *SandboxCapability     `json:"sandbox,omitempty"`
}

// ListChangedCapability flags list-changed notification support.
type ListChangedCapability struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

// SandboxCapability is the sandbox grant the host is willing to extend:
// permissions it may grant and the CSP domains it has approved. These are
// upper bounds consumed by the policy builder, never widened per-request.
type SandboxCapability struct {
	Permissions *Permissions `json:"permissions,omitempty"`
	CSP         *ApprovedCSP `json:"csp,omitempty"`
}

// Permissions is the set of grantable browser permissions.
type Permissions struct {
	Camera         *Empty `json:"camera,omitempty"`
	Microphone     *Empty `json:"microphone,omitempty"`
	Geolocation    *Empty `json:"geolocation,omitempty"`
	ClipboardWrite *Empty `json:"clipboardWrite,omitempty"`
}

// Granted returns the canonical names of the granted permissions.
func (p *Permissions) Granted() []string {
	var granted []string
	if p.Camera != nil {
		granted = append(granted, "camera")
	}
	if p.Microphone != nil {
		granted = append(granted, "microphone")
	}
	if p.Geolocation != nil {
		granted = append(granted, "geolocation")
	}
	if p.ClipboardWrite != nil {
		granted = append(granted, "clipboard-write")
	}
	return granted
}

// HasAny reports whether any permission is granted.
func (p *Permissions) HasAny() bool {
	return p.Camera != nil || p.Microphone != nil || p.Geolocation != nil || p.ClipboardWrite != nil
}

// ApprovedCSP is the host's upper bound on CSP domains per axis.
type ApprovedCSP struct {
	ConnectDomains  []string `json:"connectDomains,omitempty"`
	ResourceDomains []string `json:"resourceDomains,omitempty"`
	FrameDomains    []string `json:"frameDomains,omitempty"`
	BaseURIDomains  []string `json:"baseUriDomains,omitempty"`
}

// SupportsOpenLinks reports whether the host will service open-link requests.
func (h *HostCapabilities) SupportsOpenLinks() bool {
	return h.OpenLinks != nil
}

// GrantedPermissions returns the host's permission grant, never nil.
func (h *HostCapabilities) GrantedPermissions() *Permissions {
	if h.Sandbox != nil && h.Sandbox.Permissions != nil {
		return h.Sandbox.Permissions
	}
	return &Permissions{}
}

// FullHostCapabilities returns a host grant with every feature enabled and
// wildcard CSP approval. Intended for trusted development setups.
func FullHostCapabilities() HostCapabilities {
	yes := true
	return HostCapabilities{
		OpenLinks:       &Empty{},
		ServerTools:     &ListChangedCapability{ListChanged: &yes},
		ServerResources: &ListChangedCapability{ListChanged: &yes},
		Logging:         &Empty{},
		Sandbox: &SandboxCapability{
			Permissions: &Permissions{
				Camera:         &Empty{},
				Microphone:     &Empty{},
				Geolocation:    &Empty{},
				ClipboardWrite: &Empty{},
			},
			CSP: &ApprovedCSP{
				ConnectDomains:  []string{"*"},
				ResourceDomains: []string{"*"},
			},
		},
	}
}

// MinimalHostCapabilities returns the restrictive default grant: links may
// be opened, nothing else is extended.
func MinimalHostCapabilities() HostCapabilities {
	no := false
	return HostCapabilities{
		OpenLinks:       &Empty{},
		ServerTools:     &ListChangedCapability{ListChanged: &no},
		ServerResources: &ListChangedCapability{ListChanged: &no},
		Logging:         &Empty{},
		Sandbox: &SandboxCapability{
			Permissions: &Permissions{},
			CSP:         &ApprovedCSP{},
		},
	}
}

// AppInfo identifies the view implementation.
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// HostInfo identifies the host implementation.
type HostInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// InitializeParams is the view's initialize request payload.
type InitializeParams struct {
	ProtocolVersion string          `json:"protocolVersion"`
	AppInfo         AppInfo         `json:"appInfo"`
	AppCapabilities AppCapabilities `json:"appCapabilities"`
}

// InitializeResult is the host's initialize response payload.
type InitializeResult struct {
	ProtocolVersion  string           `json:"protocolVersion"`
	HostCapabilities HostCapabilities `json:"hostCapabilities"`
	HostInfo         HostInfo         `json:"hostInfo"`
	HostContext      *HostContext     `json:"hostContext,omitempty"`
}
