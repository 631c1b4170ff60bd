package wire

import "encoding/json"

// Parameter records for the lifecycle notifications. Capability and host
// context payloads are defined in the caps package and passed to the
// builders as plain values.

// ToolInputParams carries the final tool-call arguments. Delivered at most
// once per session.
type ToolInputParams struct {
	Arguments json.RawMessage `json:"arguments"`
}

// ToolCancelledParams carries an optional cancellation reason.
type ToolCancelledParams struct {
	Reason string `json:"reason,omitempty"`
}

// TeardownParams carries an optional teardown reason.
type TeardownParams struct {
	Reason string `json:"reason,omitempty"`
}

// SizeChangedParams reports the view's content size in pixels.
type SizeChangedParams struct {
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
}

// OpenLinkParams asks the host to open an external URL.
type OpenLinkParams struct {
	URL string `json:"url"`
}

// MessageParams posts a message into the host conversation.
type MessageParams struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
}

// RequestDisplayModeParams asks the host to switch display modes.
type RequestDisplayModeParams struct {
	Mode string `json:"mode"`
}

// DisplayModeResult echoes the display mode actually in effect. On a
// declined request this is the current mode, not the requested one.
type DisplayModeResult struct {
	Mode string `json:"mode"`
}

// UpdateModelContextParams replaces the model-visible context for the view.
type UpdateModelContextParams struct {
	Content           []json.RawMessage `json:"content,omitempty"`
	StructuredContent json.RawMessage   `json:"structuredContent,omitempty"`
}

// SandboxResourceReadyParams is the relay-control payload handing sandboxed
// content plus its derived policy to the inner rendering layer.
type SandboxResourceReadyParams struct {
	HTML        string          `json:"html"`
	Sandbox     string          `json:"sandbox,omitempty"`
	CSP         json.RawMessage `json:"csp,omitempty"`
	Permissions json.RawMessage `json:"permissions,omitempty"`
}

// NewToolInputNotification builds the exactly-once tool-input notification.
func NewToolInputNotification(arguments json.RawMessage) (*Envelope, error) {
	return NewNotification(MethodToolInput, ToolInputParams{Arguments: arguments})
}

// NewToolInputPartialNotification builds a streaming tool-input fragment.
func NewToolInputPartialNotification(arguments json.RawMessage) (*Envelope, error) {
	return NewNotification(MethodToolInputPartial, ToolInputParams{Arguments: arguments})
}

// NewToolResultNotification builds the tool-result notification. The result
// object is passed through verbatim.
func NewToolResultNotification(result json.RawMessage) (*Envelope, error) {
	env := &Envelope{JSONRPC: JSONRPCVersion, Method: MethodToolResult, Params: result}
	return env, nil
}

// NewToolCancelledNotification builds the tool-cancelled notification.
func NewToolCancelledNotification(reason string) (*Envelope, error) {
	return NewNotification(MethodToolCancelled, ToolCancelledParams{Reason: reason})
}

// NewTeardownRequest builds the host-initiated teardown request.
func NewTeardownRequest(id string, reason string) (*Envelope, error) {
	return NewRequest(id, MethodResourceTeardown, TeardownParams{Reason: reason})
}

// NewHostContextChangedNotification builds a partial host-context update.
// The context value is passed through verbatim so hosts can push sparse
// updates.
func NewHostContextChangedNotification(context json.RawMessage) (*Envelope, error) {
	return &Envelope{JSONRPC: JSONRPCVersion, Method: MethodHostContextChanged, Params: context}, nil
}

// NewSandboxProxyReadyNotification builds the fixed, parameterless ready
// signal a relay emits toward the host. It is the only message a relay may
// originate.
func NewSandboxProxyReadyNotification() *Envelope {
	env, _ := NewNotification(MethodSandboxProxyReady, struct{}{})
	return env
}

// NewSandboxResourceReadyNotification builds the relay-control payload that
// hands sandboxed content to the inner rendering layer.
func NewSandboxResourceReadyNotification(params SandboxResourceReadyParams) (*Envelope, error) {
	return NewNotification(MethodSandboxResourceReady, params)
}
