package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// Placeholder pattern: {Settings:key}
var placeholderPattern = regexp.MustCompile(`\{Settings:([^{}]+)\}`)

// PlaceholderToken returns the literal token for a settings key.
func PlaceholderToken(key string) string {
	return "{Settings:" + key + "}"
}

// PlaceholderSubstitutor replaces {Settings:<key>} tokens in policy templates.
//
// Matching is literal and case-sensitive, every occurrence is replaced, and
// replaced values are never scanned again. Tokens for unknown keys are left
// untouched; use UnresolvedPlaceholders to detect them.
type PlaceholderSubstitutor struct{}

// NewPlaceholderSubstitutor creates a new placeholder substitutor.
func NewPlaceholderSubstitutor() *PlaceholderSubstitutor {
	return &PlaceholderSubstitutor{}
}

// Substitute returns content with the tenant and every policy setting applied.
// The tenant always wins over a PolicySettings entry named "Tenant".
func (s *PlaceholderSubstitutor) Substitute(content string, env entities.EnvironmentSettings) string {
	keys := SortedSettingKeys(env)

	pairs := make([]string, 0, 2*(len(keys)+1))
	pairs = append(pairs, PlaceholderToken(entities.TenantKey), env.Tenant)
	for _, key := range keys {
		pairs = append(pairs, PlaceholderToken(key), env.PolicySettings[key])
	}

	// strings.Replacer makes a single left-to-right pass, so a value that
	// itself looks like a token is emitted verbatim.
	return strings.NewReplacer(pairs...).Replace(content)
}

// UnresolvedPlaceholders returns the distinct tokens in content that the
// environment cannot resolve, in order of first appearance.
func (s *PlaceholderSubstitutor) UnresolvedPlaceholders(content string, env entities.EnvironmentSettings) []string {
	var unresolved []string
	seen := make(map[string]bool)

	for _, match := range placeholderPattern.FindAllStringSubmatch(content, -1) {
		key := match[1]
		if key == entities.TenantKey {
			continue
		}
		if _, ok := env.PolicySettings[key]; ok {
			continue
		}
		if !seen[match[0]] {
			seen[match[0]] = true
			unresolved = append(unresolved, match[0])
		}
	}

	return unresolved
}

// SortedSettingKeys returns the policy setting keys, excluding the tenant key,
// in lexical order.
func SortedSettingKeys(env entities.EnvironmentSettings) []string {
	keys := make([]string, 0, len(env.PolicySettings))
	for key := range env.PolicySettings {
		if key == entities.TenantKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
