// Package uibridge is the convenience surface over the protocol engine for
// hosting sandboxed interactive views: the wire envelope layer, capability
// negotiation, security-policy derivation, the per-view session engine,
// proxy-mode relaying and the cross-session tool registry.
//
// The subpackages carry the implementation; this package re-exports the
// types and constructors most embedders need so simple hosts can depend on
// a single import.
package uibridge

import (
	"github.com/machinefabric/uibridge-go/caps"
	"github.com/machinefabric/uibridge-go/channel"
	"github.com/machinefabric/uibridge-go/hostcfg"
	"github.com/machinefabric/uibridge-go/policy"
	"github.com/machinefabric/uibridge-go/relay"
	"github.com/machinefabric/uibridge-go/session"
	"github.com/machinefabric/uibridge-go/tools"
	"github.com/machinefabric/uibridge-go/wire"
)

// Protocol identity.
const (
	ExtensionID     = wire.ExtensionID
	ProtocolVersion = wire.ProtocolVersion
)

// Wire layer.
type (
	Envelope = wire.Envelope
	RPCError = wire.Error
)

var (
	Decode = wire.Decode
	Encode = wire.Encode
)

// Capabilities and negotiation.
type (
	AppCapabilities  = caps.AppCapabilities
	HostCapabilities = caps.HostCapabilities
	Negotiated       = caps.Negotiated
	HostContext      = caps.HostContext
	DisplayMode      = caps.DisplayMode
)

var (
	Negotiate               = caps.Negotiate
	FullHostCapabilities    = caps.FullHostCapabilities
	MinimalHostCapabilities = caps.MinimalHostCapabilities
)

// Security policy.
type (
	Policy       = policy.Policy
	ResourceMeta = policy.ResourceMeta
	ResourceCSP  = policy.ResourceCSP
)

var (
	BuildCSP    = policy.BuildCSP
	BuildPolicy = policy.Build
)

// Session engine.
type (
	Session        = session.Session
	SessionOptions = session.Options
	SessionState   = session.State
	Host           = session.Host
)

var NewSession = session.New

// Channels.
type Channel = channel.Channel

var (
	NewPipe          = channel.Pipe
	NewStreamChannel = channel.NewStreamChannel
	NewWSChannel     = channel.NewWSChannel
)

// Proxy-mode relay.
type (
	Relay        = relay.Relay
	RelayOptions = relay.Options
)

var NewRelay = relay.New

// Tool registry and visibility.
type (
	ToolRegistry = tools.Registry
	Tool         = tools.Tool
	ToolMeta     = tools.Meta
)

var NewToolRegistry = tools.NewRegistry

// Host configuration.
type HostConfig = hostcfg.Config

var (
	LoadConfig     = hostcfg.Load
	LoadConfigFile = hostcfg.LoadFile
	DefaultConfig  = hostcfg.Default
)
