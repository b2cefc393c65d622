// Package sensitivedata keeps track of the secrets seen during a run, such as
// client secrets and access tokens, so they never reach logs or error output.
package sensitivedata

import "sync"

// Provider implements ports.SensitiveValueProvider.
// It is safe for concurrent use.
type Provider struct {
	seen   map[string]struct{}
	values []string
	mu     sync.RWMutex
}

// NewProvider creates a new sensitive data provider.
func NewProvider() *Provider {
	return &Provider{
		seen:   make(map[string]struct{}),
		values: make([]string, 0, 4),
	}
}

// Track registers a sensitive value. Empty and already tracked values are ignored.
func (p *Provider) Track(value string) {
	if value == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.seen[value]; ok {
		return
	}
	p.seen[value] = struct{}{}
	p.values = append(p.values, value)
}

// AllValues returns a copy of all tracked values in tracking order.
func (p *Provider) AllValues() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make([]string, len(p.values))
	copy(result, p.values)
	return result
}
