// Package system provides infrastructure for system-level configuration.
// This includes loading the system config file (~/.b2cdeploy/config.yaml)
// that tunes the Graph client, publishing and redaction.
package system

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

// Defaults used when the system config file is absent or leaves a field empty.
const (
	DefaultGraphBaseURL   = "https://graph.microsoft.com"
	DefaultGraphScope     = "https://graph.microsoft.com/.default"
	DefaultTimeoutSeconds = 60
	DefaultMaxConcurrent  = 4
	DefaultConfigDirName  = ".b2cdeploy"
	DefaultConfigFileName = "config.yaml"
)

// Config represents the global configuration file (~/.b2cdeploy/config.yaml).
// This is infrastructure-level configuration separate from the policy settings.
type Config struct {
	SensitiveData SensitiveDataConfig `yaml:"sensitive_data"`
	Graph         GraphConfig         `yaml:"graph"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Publish       PublishConfig       `yaml:"publish"`
}

// GraphConfig configures the Microsoft Graph client.
type GraphConfig struct {
	// BaseURL is the Graph endpoint, overridable for sovereign clouds
	BaseURL        string   `yaml:"base_url"`
	Scopes         []string `yaml:"scopes"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// Timeout returns the per-request HTTP timeout.
func (g GraphConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// PublishConfig configures plan execution.
type PublishConfig struct {
	MaxConcurrent int  `yaml:"max_concurrent"`
	Parallel      bool `yaml:"parallel"`
}

// SensitiveDataConfig configures secret resolution and protection.
type SensitiveDataConfig struct {
	Secrets SecretsConfig `yaml:"secrets"`
}

// SecretsConfig configures where named secrets such as client secrets come from.
type SecretsConfig struct {
	// Local defines static secrets for development (name -> value)
	Local map[string]string `yaml:"local"`

	// Env defines environment variable mappings (secret_name -> env_var_name)
	Env map[string]string `yaml:"env"`

	// Files defines file path mappings (secret_name -> file_path)
	Files map[string]string `yaml:"files"`
}

// RedactionConfig configures how sensitive data is sanitized.
type RedactionConfig struct {
	HashMode HashModeConfig `yaml:"hash_mode"`
	Patterns []string       `yaml:"patterns"`
}

// HashModeConfig controls hash-based redaction.
type HashModeConfig struct {
	Salt    string `yaml:"salt"`
	Enabled bool   `yaml:"enabled"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultPath returns ~/.b2cdeploy/config.yaml, or an empty string when the
// home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, DefaultConfigDirName, DefaultConfigFileName)
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		SensitiveData: SensitiveDataConfig{
			Secrets: SecretsConfig{
				Local: make(map[string]string),
				Env:   make(map[string]string),
				Files: make(map[string]string),
			},
		},
		Graph: GraphConfig{
			BaseURL:        DefaultGraphBaseURL,
			Scopes:         []string{DefaultGraphScope},
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Publish: PublishConfig{
			MaxConcurrent: DefaultMaxConcurrent,
		},
		Redaction: RedactionConfig{
			Patterns: []string{},
		},
	}
}

// ApplyDefaults fills zero values with the defaults.
func (c *Config) ApplyDefaults() {
	if c.Graph.BaseURL == "" {
		c.Graph.BaseURL = DefaultGraphBaseURL
	}
	if len(c.Graph.Scopes) == 0 {
		c.Graph.Scopes = []string{DefaultGraphScope}
	}
	if c.Graph.TimeoutSeconds <= 0 {
		c.Graph.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Publish.MaxConcurrent <= 0 {
		c.Publish.MaxConcurrent = DefaultMaxConcurrent
	}
}

// Load loads the system configuration from the specified path.
// If the path is empty or the file does not exist, returns DefaultConfig().
func (l *ConfigLoader) Load(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	config.ApplyDefaults()

	return &config, nil
}
