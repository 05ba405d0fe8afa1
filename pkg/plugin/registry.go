package plugin

import (
	"fmt"
	"log/slog"
	"sync"

	"hedera-agent-kit/pkg/logger"
	"hedera-agent-kit/pkg/tool"
)

// Registry maps plugin names to plugins. Registering a name twice replaces
// the earlier plugin in place and logs a warning.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	plugins map[string]Plugin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register stores p under its name. Last write wins.
func (r *Registry) Register(p Plugin) {
	if p == nil {
		return
	}
	name := p.Info().Name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[name]; exists {
		logger.Named("plugin").Warn("plugin already registered, overwriting", slog.String("plugin", name))
	} else {
		r.order = append(r.order, name)
	}
	r.plugins[name] = p
}

// Unregister removes the named plugin and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.plugins[name]; !ok {
		return false
	}
	delete(r.plugins, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the named plugin.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// Plugins returns the registered plugins in first-registration order.
func (r *Registry) Plugins() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.plugins[name])
	}
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// Clear removes every plugin.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = nil
	r.plugins = make(map[string]Plugin)
}

// GetTools concatenates the tools of every plugin. A plugin whose factory
// fails or panics is logged and skipped.
func (r *Registry) GetTools(hctx tool.Context) []tool.Tool {
	var out []tool.Tool
	for _, p := range r.Plugins() {
		tools, err := safeTools(p, hctx)
		if err != nil {
			logger.Named("plugin").Error("plugin failed to build tools", slog.String("plugin", p.Info().Name), slog.Any("error", err))
			continue
		}
		out = append(out, tools...)
	}
	return out
}

func safeTools(p Plugin, hctx tool.Context) (tools []tool.Tool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return p.Tools(hctx)
}
