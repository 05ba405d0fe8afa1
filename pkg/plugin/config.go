package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ManagerConfig lists the external tool plugins to load at start-up.
type ManagerConfig struct {
	// PluginDir prefixes relative plugin paths. A relative PluginDir is
	// taken relative to the YAML file that declares it.
	PluginDir string                  `yaml:"pluginDir"`
	Defaults  IsolationPolicy         `yaml:"defaults"`
	Plugins   map[string]PluginConfig `yaml:"plugins"`
}

// PluginConfig points at one shared object exporting a Plugin symbol.
type PluginConfig struct {
	Enabled bool             `yaml:"enabled"`
	Path    string           `yaml:"path"`
	Policy  *IsolationPolicy `yaml:"policy"`
}

// IsolationPolicy limits the capabilities an external plugin may declare.
type IsolationPolicy struct {
	AllowedCapabilities []Capability `yaml:"allowedCapabilities"`
	DeniedCapabilities  []Capability `yaml:"deniedCapabilities"`
}

var knownCapabilities = []Capability{CapabilityLedgerWrite, CapabilityMirrorRead, CapabilityNetwork}

// Merge fills the lists p leaves empty from fallback.
func (p IsolationPolicy) Merge(fallback IsolationPolicy) IsolationPolicy {
	if len(p.AllowedCapabilities) == 0 {
		p.AllowedCapabilities = fallback.AllowedCapabilities
	}
	if len(p.DeniedCapabilities) == 0 {
		p.DeniedCapabilities = fallback.DeniedCapabilities
	}
	return p
}

func (p IsolationPolicy) validate() error {
	for _, c := range slices.Concat(p.AllowedCapabilities, p.DeniedCapabilities) {
		if !slices.Contains(knownCapabilities, c) {
			return fmt.Errorf("unknown capability %q", c)
		}
	}
	return nil
}

// LoadManagerConfig reads the plugin YAML at path.
func LoadManagerConfig(path string) (ManagerConfig, error) {
	var cfg ManagerConfig
	if path == "" {
		return cfg, errors.New("plugin config path cannot be empty")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read plugin config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse plugin config %s: %w", path, err)
	}
	if cfg.Plugins == nil {
		cfg.Plugins = map[string]PluginConfig{}
	}
	if cfg.PluginDir != "" && !filepath.IsAbs(cfg.PluginDir) {
		cfg.PluginDir = filepath.Join(filepath.Dir(path), cfg.PluginDir)
	}
	return cfg, cfg.Validate()
}

// Validate requires a path for every enabled plugin and rejects capability
// names the toolkit does not define.
func (c ManagerConfig) Validate() error {
	if err := c.Defaults.validate(); err != nil {
		return fmt.Errorf("default policy: %w", err)
	}
	for id, p := range c.Plugins {
		if id == "" {
			return errors.New("plugin id cannot be empty")
		}
		if p.Enabled && p.Path == "" {
			return fmt.Errorf("plugin %s is enabled but has no path", id)
		}
		if p.Policy != nil {
			if err := p.Policy.validate(); err != nil {
				return fmt.Errorf("plugin %s policy: %w", id, err)
			}
		}
	}
	return nil
}
