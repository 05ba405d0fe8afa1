package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"hedera-agent-kit/pkg/logger"
)

// Manager loads external plugins into a Registry.
type Manager struct {
	registry  *Registry
	loader    Loader
	isolation IsolationStrategy
}

// Option modifies a Manager.
type Option func(*Manager)

// WithLoader overrides the default binary loader.
func WithLoader(loader Loader) Option {
	return func(m *Manager) {
		if loader != nil {
			m.loader = loader
		}
	}
}

// WithIsolationStrategy sets a custom policy enforcement strategy.
func WithIsolationStrategy(strategy IsolationStrategy) Option {
	return func(m *Manager) {
		if strategy != nil {
			m.isolation = strategy
		}
	}
}

// NewManager returns a manager registering into registry.
func NewManager(registry *Registry, opts ...Option) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	m := &Manager{registry: registry, loader: GoPluginLoader{}, isolation: CapabilityIsolation{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the registry plugins are loaded into.
func (m *Manager) Registry() *Registry { return m.registry }

// Load opens one plugin binary, checks it against policy and registers it.
func (m *Manager) Load(id, path string, policy IsolationPolicy) error {
	p, err := m.loader.Load(path)
	if err != nil {
		return fmt.Errorf("load plugin %s from %s: %w", id, path, err)
	}
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("plugin %s has no name", id)
	}
	if err := EnsurePolicy(info, policy); err != nil {
		return fmt.Errorf("plugin %s: %w", id, err)
	}
	if err := m.isolation.Validate(info, policy); err != nil {
		return fmt.Errorf("plugin %s: %w", id, err)
	}
	m.registry.Register(p)
	logger.Named("plugin").Info("external plugin loaded", slog.String("id", id), slog.String("plugin", info.Name), slog.String("version", info.Version))
	return nil
}

// LoadConfigured loads every enabled plugin of cfg in id order. A failing
// plugin is logged and skipped; the joined failures are returned.
func (m *Manager) LoadConfigured(cfg ManagerConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ids := make([]string, 0, len(cfg.Plugins))
	for id := range cfg.Plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var errs error
	for _, id := range ids {
		pc := cfg.Plugins[id]
		if !pc.Enabled {
			continue
		}
		path := pc.Path
		if !filepath.IsAbs(path) && cfg.PluginDir != "" {
			path = filepath.Join(cfg.PluginDir, path)
		}
		if err := m.Load(id, path, MergePolicies(cfg.Defaults, pc.Policy)); err != nil {
			logger.Named("plugin").Error("skipping external plugin", slog.String("id", id), slog.Any("error", err))
			errs = errors.Join(errs, err)
		}
	}
	return errs
}
