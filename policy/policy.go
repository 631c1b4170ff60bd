// Package policy derives concrete sandbox restrictions from declarative
// resource metadata: a content-security-policy string and a permission
// allow-list. The builder is a pure function of the metadata plus the
// host's negotiated grant; absent metadata always yields the restrictive
// default.
package policy

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/machinefabric/uibridge-go/caps"
)

// URIScheme is the required scheme for sandboxed view resources.
const URIScheme = "ui://"

// MIMEProfile is the content type for view markup. Other types are
// reserved for future extensions.
const MIMEProfile = "text/html;profile=mcp-app"

// BorderPreference is the resource's visual boundary request.
type BorderPreference uint8

const (
	// BorderHostDefault defers to the host's styling.
	BorderHostDefault BorderPreference = iota
	// BorderRequested asks the host to draw a visible boundary.
	BorderRequested
	// BorderDeclined asks the host to render without a boundary.
	BorderDeclined
)

// ResourceCSP is the declared domain metadata for the four policy axes.
// A nil or empty axis gets the restrictive default for that axis.
type ResourceCSP struct {
	ConnectDomains  []string `json:"connectDomains,omitempty"`
	ResourceDomains []string `json:"resourceDomains,omitempty"`
	FrameDomains    []string `json:"frameDomains,omitempty"`
	BaseURIDomains  []string `json:"baseUriDomains,omitempty"`
}

// ResourceMeta is the security-relevant metadata a resource declares.
type ResourceMeta struct {
	CSP         *ResourceCSP      `json:"csp,omitempty"`
	Permissions *caps.Permissions `json:"permissions,omitempty"`

	// Domain is an optional dedicated origin for the view.
	Domain string `json:"domain,omitempty"`

	// PrefersBorder is the tri-state boundary preference. Serialized as an
	// optional bool: absent means host default.
	PrefersBorder BorderPreference `json:"-"`
}

// Policy is the derived restriction set applied to a view's rendering
// context.
type Policy struct {
	// CSP is the complete content-security-policy header value.
	CSP string

	// Permissions is the intersection of requested and host-granted
	// permissions, in canonical name form.
	Permissions []string
}

// BuildCSP assembles the policy string from declared metadata. Every
// directive the metadata does not open stays at its restrictive default:
// no external network, no external static resources, no nested frames,
// base URI restricted to same origin. Dangerous embedding is always
// denied. The builder never adds a domain the metadata did not declare and
// never silently drops a declared one.
func BuildCSP(csp *ResourceCSP) string {
	var parts []string

	parts = append(parts, "default-src 'none'")

	// Inline script and style are permitted for the same origin only; the
	// static-resource axis widens the fetch directives below.
	script := []string{"'self'", "'unsafe-inline'"}
	style := []string{"'self'", "'unsafe-inline'"}
	img := []string{"'self'", "data:"}
	media := []string{"'self'", "data:"}
	font := []string{"'self'"}

	if csp != nil && len(csp.ResourceDomains) > 0 {
		script = append(script, csp.ResourceDomains...)
		style = append(style, csp.ResourceDomains...)
		img = append(img, csp.ResourceDomains...)
		media = append(media, csp.ResourceDomains...)
		font = append(font, csp.ResourceDomains...)
	}
	parts = append(parts,
		"script-src "+strings.Join(script, " "),
		"style-src "+strings.Join(style, " "),
		"img-src "+strings.Join(img, " "),
		"media-src "+strings.Join(media, " "),
		"font-src "+strings.Join(font, " "),
	)

	if csp != nil && len(csp.ConnectDomains) > 0 {
		parts = append(parts, "connect-src "+strings.Join(csp.ConnectDomains, " "))
	} else {
		parts = append(parts, "connect-src 'none'")
	}

	if csp != nil && len(csp.FrameDomains) > 0 {
		parts = append(parts, "frame-src "+strings.Join(csp.FrameDomains, " "))
	} else {
		parts = append(parts, "frame-src 'none'")
	}

	if csp != nil && len(csp.BaseURIDomains) > 0 {
		parts = append(parts, "base-uri "+strings.Join(csp.BaseURIDomains, " "))
	} else {
		parts = append(parts, "base-uri 'self'")
	}

	// Plugin/object embedding is denied regardless of metadata.
	parts = append(parts, "object-src 'none'")

	return strings.Join(parts, "; ")
}

// Build derives the full policy for a resource. granted is the host's
// permission upper bound from capability negotiation; the output allow-list
// is the intersection of requested and granted.
func Build(meta *ResourceMeta, granted *caps.Permissions) Policy {
	var csp *ResourceCSP
	var requested *caps.Permissions
	if meta != nil {
		csp = meta.CSP
		requested = meta.Permissions
	}
	return Policy{
		CSP:         BuildCSP(csp),
		Permissions: intersectPermissions(requested, granted),
	}
}

func intersectPermissions(requested, granted *caps.Permissions) []string {
	if requested == nil || granted == nil {
		return nil
	}
	var out []string
	if requested.Camera != nil && granted.Camera != nil {
		out = append(out, "camera")
	}
	if requested.Microphone != nil && granted.Microphone != nil {
		out = append(out, "microphone")
	}
	if requested.Geolocation != nil && granted.Geolocation != nil {
		out = append(out, "geolocation")
	}
	if requested.ClipboardWrite != nil && granted.ClipboardWrite != nil {
		out = append(out, "clipboard-write")
	}
	return out
}

// ValidURI reports whether a resource URI uses the required scheme.
func ValidURI(uri string) bool {
	return strings.HasPrefix(uri, URIScheme)
}

// ValidContentType reports whether a MIME type identifies view markup.
func ValidContentType(mimeType string) bool {
	return mimeType == MIMEProfile || strings.HasPrefix(mimeType, "text/html")
}

// metaWire is the JSON shape of ResourceMeta with the tri-state border
// preference flattened to an optional bool.
type metaWire struct {
	CSP           *ResourceCSP      `json:"csp,omitempty"`
	Permissions   *caps.Permissions `json:"permissions,omitempty"`
	Domain        string            `json:"domain,omitempty"`
	PrefersBorder *bool             `json:"prefersBorder,omitempty"`
}

// MarshalJSON flattens the border preference into the wire's optional bool.
func (m ResourceMeta) MarshalJSON() ([]byte, error) {
	w := metaWire{CSP: m.CSP, Permissions: m.Permissions, Domain: m.Domain}
	switch m.PrefersBorder {
	case BorderRequested:
		v := true
		w.PrefersBorder = &v
	case BorderDeclined:
		v := false
		w.PrefersBorder = &v
	}
	return json.Marshal(w)
}

// UnmarshalJSON lifts the optional bool back into the tri-state.
func (m *ResourceMeta) UnmarshalJSON(data []byte) error {
	var w metaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	m.CSP = w.CSP
	m.Permissions = w.Permissions
	m.Domain = w.Domain
	switch {
	case w.PrefersBorder == nil:
		m.PrefersBorder = BorderHostDefault
	case *w.PrefersBorder:
		m.PrefersBorder = BorderRequested
	default:
		m.PrefersBorder = BorderDeclined
	}
	return nil
}

// String returns the border preference name, for diagnostics.
func (b BorderPreference) String() string {
	switch b {
	case BorderRequested:
		return "request-border"
	case BorderDeclined:
		return "request-no-border"
	case BorderHostDefault:
		return "host-default"
	default:
		return fmt.Sprintf("unknown(%d)", b)
	}
}
