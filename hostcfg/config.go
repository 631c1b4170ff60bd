// Package hostcfg loads the host-side engine configuration: identity,
// timeout bounds, permission grants and CSP approval upper bounds. The
// zero value of every knob is the restrictive default.
package hostcfg

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/machinefabric/uibridge-go/caps"
)

// Defaults applied when the document omits a field.
const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultTeardownTimeout = 5 * time.Second
)

// Duration accepts "30s" style YAML scalars, which yaml.v3 does not decode
// into time.Duration on its own.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("hostcfg: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the host configuration document.
type Config struct {
	// Host identity reported in the initialize response.
	Host struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"host"`

	// RequestTimeout bounds every outbound request awaiting its response.
	RequestTimeout Duration `yaml:"request_timeout"`

	// TeardownTimeout bounds the teardown handshake; when it elapses the
	// session is forced to Closed regardless of the view.
	TeardownTimeout Duration `yaml:"teardown_timeout"`

	// DisplayModes the host supports, preference order. Empty means
	// inline only.
	DisplayModes []caps.DisplayMode `yaml:"display_modes"`

	// Permissions the host is willing to grant to views that request them.
	Permissions struct {
		Camera         bool `yaml:"camera"`
		Microphone     bool `yaml:"microphone"`
		Geolocation    bool `yaml:"geolocation"`
		ClipboardWrite bool `yaml:"clipboard_write"`
	} `yaml:"permissions"`

	// ApprovedDomains is the CSP approval upper bound per axis.
	ApprovedDomains struct {
		Connect  []string `yaml:"connect"`
		Resource []string `yaml:"resource"`
		Frame    []string `yaml:"frame"`
		BaseURI  []string `yaml:"base_uri"`
	} `yaml:"approved_domains"`

	// DrawBorders is the host default for views that express no border
	// preference.
	DrawBorders bool `yaml:"draw_borders"`
}

// Load parses a YAML document and applies defaults.
func Load(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("hostcfg: parse failed: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads and parses a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hostcfg: read %s: %w", path, err)
	}
	return Load(data)
}

// Default returns the restrictive default configuration.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Host.Name == "" {
		c.Host.Name = "uibridge-host"
	}
	if c.Host.Version == "" {
		c.Host.Version = "0.0.0"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if c.TeardownTimeout <= 0 {
		c.TeardownTimeout = Duration(DefaultTeardownTimeout)
	}
	if len(c.DisplayModes) == 0 {
		c.DisplayModes = []caps.DisplayMode{caps.DisplayModeInline}
	}
}

func (c *Config) validate() error {
	for _, m := range c.DisplayModes {
		if !m.Valid() {
			return fmt.Errorf("hostcfg: unknown display mode %q", m)
		}
	}
	return nil
}

// HostCapabilities derives the capability record advertised during
// negotiation from the configured grants.
func (c *Config) HostCapabilities() caps.HostCapabilities {
	perms := &caps.Permissions{}
	if c.Permissions.Camera {
		perms.Camera = &caps.Empty{}
	}
	if c.Permissions.Microphone {
		perms.Microphone = &caps.Empty{}
	}
	if c.Permissions.Geolocation {
		perms.Geolocation = &caps.Empty{}
	}
	if c.Permissions.ClipboardWrite {
		perms.ClipboardWrite = &caps.Empty{}
	}

	no := false
	return caps.HostCapabilities{
		OpenLinks:       &caps.Empty{},
		ServerTools:     &caps.ListChangedCapability{ListChanged: &no},
		ServerResources: &caps.ListChangedCapability{ListChanged: &no},
		Logging:         &caps.Empty{},
		Sandbox: &caps.SandboxCapability{
			Permissions: perms,
			CSP: &caps.ApprovedCSP{
				ConnectDomains:  c.ApprovedDomains.Connect,
				ResourceDomains: c.ApprovedDomains.Resource,
				FrameDomains:    c.ApprovedDomains.Frame,
				BaseURIDomains:  c.ApprovedDomains.BaseURI,
			},
		},
	}
}
