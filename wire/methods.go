package wire

import "strings"

// Extension identifier announced in capability negotiation. Its absence in a
// peer's declared capabilities means the extension is not active for the
// session.
const ExtensionID = "io.modelcontextprotocol/ui"

// ProtocolVersion is the extension protocol revision.
const ProtocolVersion = "2026-01-26"

// Canonical method names. Exact strings, case-sensitive.
const (
	// View → Host
	MethodInitialize         = "ui/initialize"
	MethodInitialized        = "ui/notifications/initialized"
	MethodOpenLink           = "ui/open-link"
	MethodMessage            = "ui/message"
	MethodRequestDisplayMode = "ui/request-display-mode"
	MethodUpdateModelContext = "ui/update-model-context"
	MethodSizeChanged        = "ui/notifications/size-changed"

	// Host → View
	MethodToolInputPartial   = "ui/notifications/tool-input-partial"
	MethodToolInput          = "ui/notifications/tool-input"
	MethodToolResult         = "ui/notifications/tool-result"
	MethodToolCancelled      = "ui/notifications/tool-cancelled"
	MethodResourceTeardown   = "ui/resource-teardown"
	MethodHostContextChanged = "ui/notifications/host-context-changed"

	// Relay ↔ Host, never forwarded past a relay.
	MethodSandboxProxyReady    = "ui/notifications/sandbox-proxy-ready"
	MethodSandboxResourceReady = "ui/notifications/sandbox-resource-ready"
)

// ReservedRelayPrefix marks relay-control methods. A relay intercepts any
// method carrying this prefix and never forwards it in either direction.
const ReservedRelayPrefix = "ui/notifications/sandbox-"

// IsRelayReserved reports whether a method name is relay-control traffic.
func IsRelayReserved(method string) bool {
	return strings.HasPrefix(method, ReservedRelayPrefix)
}

// viewMethods is the set of methods a view may legitimately send to a host,
// with their expected envelope kind.
var viewMethods = map[string]Kind{
	MethodInitialize:         KindRequest,
	MethodInitialized:        KindNotification,
	MethodOpenLink:           KindRequest,
	MethodMessage:            KindRequest,
	MethodRequestDisplayMode: KindRequest,
	MethodUpdateModelContext: KindRequest,
	MethodSizeChanged:        KindNotification,
}

// ViewMethodKind returns the expected kind for a view→host method, and
// whether the method is recognized at all.
func ViewMethodKind(method string) (Kind, bool) {
	k, ok := viewMethods[method]
	return k, ok
}
