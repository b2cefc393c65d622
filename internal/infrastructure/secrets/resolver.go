// Package secrets resolves named secrets, such as app registration client
// secrets, from the sources listed in the system config.
package secrets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/system"
)

// ErrNoClientSecret is returned when neither a literal client secret nor a
// reference to one was supplied.
var ErrNoClientSecret = errors.New("client secret is required (use --client-secret or --client-secret-ref)")

// Resolver implements ports.SecretResolver.
// Every value it returns is tracked for redaction.
type Resolver struct {
	config   *system.SecretsConfig
	provider ports.SensitiveValueProvider
	cache    map[string]string
	mu       sync.RWMutex
}

// NewResolver creates a new secret resolver.
func NewResolver(
	config *system.SecretsConfig,
	provider ports.SensitiveValueProvider,
) *Resolver {
	return &Resolver{
		config:   config,
		provider: provider,
		cache:    make(map[string]string),
	}
}

// Resolve returns the secret value by name.
// Sources are checked in order: Local, Env, Files.
func (r *Resolver) Resolve(name string) (string, error) {
	r.mu.RLock()
	if value, ok := r.cache[name]; ok {
		r.mu.RUnlock()
		return value, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	if value, ok := r.cache[name]; ok {
		return value, nil
	}

	value, err := r.resolveFromSources(name)
	if err != nil {
		return "", err
	}

	r.cache[name] = value
	r.track(value)
	return value, nil
}

// ClientSecret picks the client secret for a publish run. A non-empty ref
// wins over the literal value.
func (r *Resolver) ClientSecret(literal, ref string) (string, error) {
	if ref != "" {
		value, err := r.Resolve(ref)
		if err != nil {
			return "", fmt.Errorf("client secret reference: %w", err)
		}
		return value, nil
	}

	if literal == "" {
		return "", ErrNoClientSecret
	}

	r.track(literal)
	return literal, nil
}

func (r *Resolver) track(value string) {
	if r.provider != nil {
		r.provider.Track(value)
	}
}

func (r *Resolver) resolveFromSources(name string) (string, error) {
	if r.config == nil {
		return "", fmt.Errorf("secret %q: secrets config not present", name)
	}

	if value, ok := r.config.Local[name]; ok {
		return value, nil
	}

	if envVar, ok := r.config.Env[name]; ok {
		value := os.Getenv(envVar)
		if value == "" {
			return "", fmt.Errorf("secret %q: env var %q is not set", name, envVar)
		}
		return value, nil
	}

	if filePath, ok := r.config.Files[name]; ok {
		return readSecretFile(name, filePath)
	}

	return "", fmt.Errorf("secret %q not found in local, env, or files", name)
}

func readSecretFile(name, filePath string) (string, error) {
	dir := filepath.Dir(filePath)
	base := filepath.Base(filePath)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return "", fmt.Errorf("secret %q: failed to open directory %q: %w", name, dir, err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(base)
	if err != nil {
		return "", fmt.Errorf("secret %q: failed to open file %q: %w", name, base, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("secret %q: reading file %q: %w", name, filePath, err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("secret %q: file %q is empty", name, filePath)
	}
	return value, nil
}
