package plugin

import (
	"errors"
	"fmt"
	"slices"
)

// IsolationStrategy decides whether an external plugin may be registered.
type IsolationStrategy interface {
	Validate(info Info, policy IsolationPolicy) error
}

// CapabilityIsolation checks declared capabilities against the policy.
type CapabilityIsolation struct{}

// Validate rejects denied capabilities and, when an allow-list exists,
// anything outside it.
func (CapabilityIsolation) Validate(info Info, policy IsolationPolicy) error {
	for _, c := range policy.DeniedCapabilities {
		if slices.Contains(info.Capabilities, c) {
			return fmt.Errorf("capability %s is explicitly denied", c)
		}
	}
	if len(policy.AllowedCapabilities) == 0 {
		return nil
	}
	for _, c := range info.Capabilities {
		if !slices.Contains(policy.AllowedCapabilities, c) {
			return fmt.Errorf("capability %s not permitted", c)
		}
	}
	return nil
}

// MergePolicies combines the default and plugin specific policies.
func MergePolicies(defaults IsolationPolicy, specific *IsolationPolicy) IsolationPolicy {
	if specific == nil {
		return defaults
	}
	return specific.Merge(defaults)
}

// EnsurePolicy requires a policy for plugins that declare capabilities.
func EnsurePolicy(info Info, policy IsolationPolicy) error {
	if len(info.Capabilities) == 0 {
		return nil
	}
	if len(policy.AllowedCapabilities) == 0 && len(policy.DeniedCapabilities) == 0 {
		return errors.New("plugins declaring capabilities require an isolation policy")
	}
	return nil
}
