// Package entities contains the domain entities for policy builds and deployments.
package entities

import "strings"

// TenantKey is the settings key that always resolves to the environment's tenant.
const TenantKey = "Tenant"

// AppSettings is the root of the settings file kept next to the policy templates.
type AppSettings struct {
	Environments []EnvironmentSettings `json:"Environments" yaml:"Environments"`
}

// EnvironmentSettings holds the placeholder values for one deployment target.
type EnvironmentSettings struct {
	PolicySettings map[string]string `json:"PolicySettings,omitempty" yaml:"PolicySettings,omitempty"`
	Name           string            `json:"Name" yaml:"Name"`
	Tenant         string            `json:"Tenant" yaml:"Tenant"`
	Production     bool              `json:"Production,omitempty" yaml:"Production,omitempty"`
}

// Clone returns a deep copy so overrides never leak back into the loaded list.
func (e EnvironmentSettings) Clone() EnvironmentSettings {
	clone := e
	clone.PolicySettings = make(map[string]string, len(e.PolicySettings))
	for k, v := range e.PolicySettings {
		clone.PolicySettings[k] = v
	}
	return clone
}

// SettingsOverride is a single key=value pair supplied by the caller.
type SettingsOverride struct {
	Key   string
	Value string
}

// ParseOverrides converts "key=value" lines into overrides.
// The key is everything before the first '=' and the value everything after it.
// Lines without '=' are dropped. A trailing carriage return is stripped so
// CRLF-delimited input behaves the same as LF-delimited input.
func ParseOverrides(lines []string) []SettingsOverride {
	overrides := make([]SettingsOverride, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		overrides = append(overrides, SettingsOverride{Key: key, Value: value})
	}
	return overrides
}
