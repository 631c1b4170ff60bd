package caps

import (
	"encoding/json"
	"errors"
)

// Platform is the coarse device class the host runs on.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformDesktop Platform = "desktop"
	PlatformMobile  Platform = "mobile"
)

// HostContext is the host-owned environment snapshot pushed to the view at
// initialize time and updated incrementally afterwards via
// host-context-changed notifications.
type HostContext struct {
	ToolInfo              *ToolInfo            `json:"toolInfo,omitempty"`
	Theme                 string               `json:"theme,omitempty"`
	Styles                *StyleConfig         `json:"styles,omitempty"`
	DisplayMode           DisplayMode          `json:"displayMode,omitempty"`
	AvailableDisplayModes []DisplayMode        `json:"availableDisplayModes,omitempty"`
	ContainerDimensions   *ContainerDimensions `json:"containerDimensions,omitempty"`
	Locale                string               `json:"locale,omitempty"`
	TimeZone              string               `json:"timeZone,omitempty"`
	UserAgent             string               `json:"userAgent,omitempty"`
	Platform              Platform             `json:"platform,omitempty"`
	DeviceCapabilities    *DeviceCapabilities  `json:"deviceCapabilities,omitempty"`
	SafeAreaInsets        *SafeAreaInsets      `json:"safeAreaInsets,omitempty"`
}

// ToolInfo describes the tool call that instantiated the view.
type ToolInfo struct {
	ID   json.RawMessage `json:"id,omitempty"`
	Tool json.RawMessage `json:"tool"`
}

// StyleConfig carries theming information the view may apply.
type StyleConfig struct {
	Variables json.RawMessage `json:"variables,omitempty"`
	CSS       *CSSConfig      `json:"css,omitempty"`
}

// CSSConfig carries host-provided CSS blocks.
type CSSConfig struct {
	Fonts string `json:"fonts,omitempty"`
}

// DeviceCapabilities reports input characteristics of the device.
type DeviceCapabilities struct {
	Touch *bool `json:"touch,omitempty"`
	Hover *bool `json:"hover,omitempty"`
}

// SafeAreaInsets are the unobstructed-content margins in pixels.
type SafeAreaInsets struct {
	Top    uint32 `json:"top"`
	Right  uint32 `json:"right"`
	Bottom uint32 `json:"bottom"`
	Left   uint32 `json:"left"`
}

// DimensionKind discriminates the per-axis sizing variants.
type DimensionKind uint8

const (
	// DimensionUnbounded means the view controls the axis freely.
	DimensionUnbounded DimensionKind = iota
	// DimensionFixed pins the axis to an exact pixel value.
	DimensionFixed
	// DimensionFlexibleMax lets the view control the axis up to a cap.
	DimensionFlexibleMax
)

// Dimension is one container axis: fixed, flexible-with-max, or unbounded.
// Modeled as an explicit variant rather than a pair of optional fields so
// the ambiguous fixed+max combination cannot be represented.
type Dimension struct {
	kind  DimensionKind
	value uint32
}

// FixedDimension pins an axis at v pixels.
func FixedDimension(v uint32) Dimension {
	return Dimension{kind: DimensionFixed, value: v}
}

// FlexibleMaxDimension lets the view size the axis up to max pixels.
func FlexibleMaxDimension(max uint32) Dimension {
	return Dimension{kind: DimensionFlexibleMax, value: max}
}

// UnboundedDimension leaves the axis fully view-controlled.
func UnboundedDimension() Dimension {
	return Dimension{kind: DimensionUnbounded}
}

// Kind returns the variant of this axis.
func (d Dimension) Kind() DimensionKind { return d.kind }

// Value returns the pixel value for fixed and flexible-max axes. Zero for
// unbounded.
func (d Dimension) Value() uint32 { return d.value }

// ContainerDimensions specifies both container axes independently.
type ContainerDimensions struct {
	Width  Dimension
	Height Dimension
}

// containerDimensionsWire is the optional-field JSON shape used on the wire.
type containerDimensionsWire struct {
	Height    *uint32 `json:"height,omitempty"`
	MaxHeight *uint32 `json:"maxHeight,omitempty"`
	Width     *uint32 `json:"width,omitempty"`
	MaxWidth  *uint32 `json:"maxWidth,omitempty"`
}

// MarshalJSON maps the axis variants onto the wire's optional-field shape.
func (c ContainerDimensions) MarshalJSON() ([]byte, error) {
	var w containerDimensionsWire
	switch c.Width.kind {
	case DimensionFixed:
		v := c.Width.value
		w.Width = &v
	case DimensionFlexibleMax:
		v := c.Width.value
		w.MaxWidth = &v
	}
	switch c.Height.kind {
	case DimensionFixed:
		v := c.Height.value
		w.Height = &v
	case DimensionFlexibleMax:
		v := c.Height.value
		w.MaxHeight = &v
	}
	return json.Marshal(w)
}

// ErrAmbiguousDimension is returned when an axis carries both a fixed value
// and a max on the wire.
var ErrAmbiguousDimension = errors.New("container axis declares both fixed and max values")

// UnmarshalJSON parses the wire shape back into per-axis variants. A fixed
// value takes priority; declaring both fixed and max on one axis is an
// error.
func (c *ContainerDimensions) UnmarshalJSON(data []byte) error {
	var w containerDimensionsWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Width != nil && w.MaxWidth != nil:
		return ErrAmbiguousDimension
	case w.Width != nil:
		c.Width = FixedDimension(*w.Width)
	case w.MaxWidth != nil:
		c.Width = FlexibleMaxDimension(*w.MaxWidth)
	default:
		c.Width = UnboundedDimension()
	}
	switch {
	case w.Height != nil && w.MaxHeight != nil:
		return ErrAmbiguousDimension
	case w.Height != nil:
		c.Height = FixedDimension(*w.Height)
	case w.MaxHeight != nil:
		c.Height = FlexibleMaxDimension(*w.MaxHeight)
	default:
		c.Height = UnboundedDimension()
	}
	return nil
}

// Merge applies a partial context update in place. Only fields present in
// the patch are touched; the host may push sparse updates at any time after
// initialization.
func (hc *HostContext) Merge(patch json.RawMessage) error {
	return json.Unmarshal(patch, hc)
}
