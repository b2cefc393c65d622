package services

import (
	"fmt"

	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// SettingsResolver selects one environment from the settings file and applies
// caller overrides to it.
type SettingsResolver struct{}

// NewSettingsResolver creates a new settings resolver service
func NewSettingsResolver() *SettingsResolver {
	return &SettingsResolver{}
}

// Resolve returns the environment named name with every override applied
// (insert or overwrite, later overrides win). The input list is never modified.
//
// Returns ErrNoEnvironments, ErrEnvironmentNotFound or ErrTenantMissing
// (wrapped) when the settings cannot produce a usable environment.
func (r *SettingsResolver) Resolve(
	environments []entities.EnvironmentSettings,
	name string,
	overrides []entities.SettingsOverride,
) (entities.EnvironmentSettings, error) {
	if len(environments) == 0 {
		return entities.EnvironmentSettings{}, entities.ErrNoEnvironments
	}

	var (
		matched entities.EnvironmentSettings
		found   bool
	)
	for _, env := range environments {
		// Nameless entries are never selected, not even by an empty name.
		if env.Name != "" && env.Name == name {
			matched = env
			found = true
			break
		}
	}
	if !found {
		return entities.EnvironmentSettings{}, fmt.Errorf("%w: %q", entities.ErrEnvironmentNotFound, name)
	}

	if matched.Tenant == "" {
		return entities.EnvironmentSettings{}, fmt.Errorf("%w: %q", entities.ErrTenantMissing, name)
	}

	resolved := matched.Clone()
	for _, o := range overrides {
		resolved.PolicySettings[o.Key] = o.Value
	}

	return resolved, nil
}
