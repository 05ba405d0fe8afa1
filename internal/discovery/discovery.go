// Package discovery assembles the active tool set from the built-in core
// plugins and the externally registered ones.
package discovery

import (
	"log/slog"

	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/plugin"
	"hedera-agent-kit/pkg/tool"
)

// Configuration selects which tools are exposed.
type Configuration struct {
	// Tools is an allow-list of method names. Empty means every tool.
	Tools []string
	// Plugins are registered in order by NewFromConfiguration.
	Plugins []plugin.Plugin
}

// Discovery merges core tools with registry tools.
type Discovery struct {
	registry *plugin.Registry
	core     []plugin.Plugin
}

// New returns a Discovery over registry. core plugins are never shadowed by
// registry plugins.
func New(registry *plugin.Registry, core ...plugin.Plugin) *Discovery {
	if registry == nil {
		registry = plugin.NewRegistry()
	}
	return &Discovery{registry: registry, core: core}
}

// NewFromConfiguration registers cfg.Plugins into a fresh registry.
func NewFromConfiguration(cfg Configuration, core ...plugin.Plugin) *Discovery {
	registry := plugin.NewRegistry()
	for _, p := range cfg.Plugins {
		registry.Register(p)
	}
	return New(registry, core...)
}

// Registry returns the underlying plugin registry.
func (d *Discovery) Registry() *plugin.Registry { return d.registry }

// GetAllTools returns core tools followed by plugin tools, one per method,
// filtered by cfg.Tools when it is non-empty.
func (d *Discovery) GetAllTools(hctx tool.Context, cfg Configuration) []tool.Tool {
	log := logger.Named("discovery")

	coreRegistry := plugin.NewRegistry()
	for _, p := range d.core {
		coreRegistry.Register(p)
	}
	coreTools := coreRegistry.GetTools(hctx)

	seen := make(map[string]bool, len(coreTools))
	merged := make([]tool.Tool, 0, len(coreTools))
	for _, t := range coreTools {
		if seen[t.Method] {
			log.Warn("duplicate core tool ignored", slog.String("method", t.Method))
			continue
		}
		seen[t.Method] = true
		merged = append(merged, t)
	}
	coreCount := len(merged)

	for _, t := range d.registry.GetTools(hctx) {
		if seen[t.Method] {
			if isCore(merged[:coreCount], t.Method) {
				log.Warn("plugin tool shadowed by core tool", slog.String("method", t.Method))
			} else {
				log.Warn("duplicate plugin tool ignored", slog.String("method", t.Method))
			}
			continue
		}
		seen[t.Method] = true
		merged = append(merged, t)
	}

	return Filter(merged, cfg.Tools)
}

// Filter keeps the tools whose method is in allow. An empty allow-list
// keeps everything.
func Filter(tools []tool.Tool, allow []string) []tool.Tool {
	if len(allow) == 0 {
		return tools
	}
	allowed := make(map[string]struct{}, len(allow))
	for _, m := range allow {
		allowed[m] = struct{}{}
	}
	out := make([]tool.Tool, 0, len(allow))
	for _, t := range tools {
		if _, ok := allowed[t.Method]; ok {
			out = append(out, t)
		}
	}
	if len(out) < len(allowed) {
		logger.Named("discovery").Warn("allow-list names unknown tools", slog.Int("requested", len(allowed)), slog.Int("found", len(out)))
	}
	return out
}

func isCore(core []tool.Tool, method string) bool {
	for _, t := range core {
		if t.Method == method {
			return true
		}
	}
	return false
}
