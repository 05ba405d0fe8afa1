// Package plugin groups tools into named, versioned bundles and keeps the
// registry the toolkit discovers them from. Plugins can be compiled in or
// loaded at runtime from Go plugin shared objects.
package plugin

import (
	"hedera-agent-kit/pkg/tool"
)

// Capability expresses what a plugin's tools are allowed to touch.
type Capability string

const (
	// CapabilityLedgerWrite covers tools that build transactions.
	CapabilityLedgerWrite Capability = "ledger-write"
	// CapabilityMirrorRead covers tools that query the mirror node.
	CapabilityMirrorRead Capability = "mirror-read"
	// CapabilityNetwork covers tools that reach services other than the
	// ledger and its mirror node.
	CapabilityNetwork Capability = "network"
)

// Info contains descriptive metadata for a plugin.
type Info struct {
	Name         string       `json:"name" yaml:"name"`
	Version      string       `json:"version,omitempty" yaml:"version"`
	Description  string       `json:"description,omitempty" yaml:"description"`
	Capabilities []Capability `json:"capabilities,omitempty" yaml:"capabilities"`
}

// Plugin is the sole extension point for adding capability sets.
type Plugin interface {
	// Info returns the static metadata for the plugin. Name is its identity.
	Info() Info
	// Tools builds the plugin's tools for one context. Schemas and
	// descriptions may depend on the context.
	Tools(hctx tool.Context) ([]tool.Tool, error)
}

// Definition is a Plugin assembled from a metadata block and a factory.
type Definition struct {
	Meta    Info
	Factory func(hctx tool.Context) ([]tool.Tool, error)
}

// Info implements Plugin.
func (d Definition) Info() Info { return d.Meta }

// Tools implements Plugin.
func (d Definition) Tools(hctx tool.Context) ([]tool.Tool, error) {
	if d.Factory == nil {
		return nil, nil
	}
	return d.Factory(hctx)
}

// New returns a Definition whose factory returns the tools built by each
// constructor, in order.
func New(info Info, constructors ...func(tool.Context) tool.Tool) Definition {
	return Definition{
		Meta: info,
		Factory: func(hctx tool.Context) ([]tool.Tool, error) {
			tools := make([]tool.Tool, 0, len(constructors))
			for _, build := range constructors {
				tools = append(tools, build(hctx))
			}
			return tools, nil
		},
	}
}
