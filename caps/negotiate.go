package caps

import "github.com/machinefabric/uibridge-go/wire"

// Negotiated is the immutable merge of host and app capabilities, attached
// to a session at initialize time. Later components consult it instead of
// re-deriving from the raw declarations.
type Negotiated struct {
	// ProtocolVersion agreed for the session.
	ProtocolVersion string

	// DisplayModes the session may use, host preference order preserved.
	DisplayModes []DisplayMode

	// ToolNotifications is true when both sides support tool list-changed.
	ToolNotifications bool

	// Permissions the host is willing to grant. Upper bound for the policy
	// builder; never widened per-request.
	Permissions Permissions

	// ApprovedCSP is the host's domain approval upper bound, nil when the
	// host extends no sandbox grant.
	ApprovedCSP *ApprovedCSP
}

// SupportsDisplayMode reports whether a mode survived negotiation.
func (n *Negotiated) SupportsDisplayMode(mode DisplayMode) bool {
	for _, m := range n.DisplayModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Negotiate merges statically configured host capabilities with the app
// capabilities from the view's initialize request. hostModes is the host's
// supported display mode list in preference order; when empty it defaults
// to inline-only.
func Negotiate(host HostCapabilities, app AppCapabilities, hostModes []DisplayMode) Negotiated {
	if len(hostModes) == 0 {
		hostModes = []DisplayMode{DisplayModeInline}
	}

	// Intersect with the app declaration. An absent declaration means the
	// app accepts whatever the host offers; a present-but-empty one means
	// the app declared nothing and gets nothing beyond the host default.
	modes := make([]DisplayMode, 0, len(hostModes))
	for _, m := range hostModes {
		if app.SupportsDisplayMode(m) {
			modes = append(modes, m)
		}
	}
	if len(modes) == 0 {
		modes = []DisplayMode{hostModes[0]}
	}

	toolNotifs := false
	if host.ServerTools != nil && host.ServerTools.ListChanged != nil && *host.ServerTools.ListChanged &&
		app.Tools != nil && app.Tools.ListChanged != nil && *app.Tools.ListChanged {
		toolNotifs = true
	}

	var approved *ApprovedCSP
	perms := Permissions{}
	if host.Sandbox != nil {
		approved = host.Sandbox.CSP
		if host.Sandbox.Permissions != nil {
			perms = *host.Sandbox.Permissions
		}
	}

	return Negotiated{
		ProtocolVersion:   wire.ProtocolVersion,
		DisplayModes:      modes,
		ToolNotifications: toolNotifs,
		Permissions:       perms,
		ApprovedCSP:       approved,
	}
}
