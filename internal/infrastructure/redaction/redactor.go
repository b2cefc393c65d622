// Package redaction scrubs secrets from text before it is logged or printed.
package redaction

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/spf13/viper"
	"github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
)

const redactedMarker = "[REDACTED]"

// Redactor implements ports.Scrubber.
// All fields are read-only after construction, making it safe for concurrent use.
type Redactor struct {
	patterns []*regexp.Regexp
	tracked  ports.SensitiveValueProvider
	hashMode bool
	salt     string

	// nil when gitleaks is disabled or its config failed to load
	gitleaksDetector *detect.Detector
}

// Config holds the configuration for the Redactor.
type Config struct {
	// Custom patterns to redact (e.g. "INT-[A-Z0-9]{16}")
	Patterns []string
	// If true, replace with an HMAC instead of [REDACTED]
	HashMode bool
	// Salt for hashing. If empty, hashes are deterministic but unsalted.
	Salt string
	// If true, only the tracked values and regex patterns are used
	DisableGitleaks bool
}

// New creates a new Redactor. Values tracked by provider are always
// redacted, whether or not they match a pattern. provider may be nil.
func New(cfg Config, provider ports.SensitiveValueProvider) (*Redactor, error) {
	r := &Redactor{
		tracked:  provider,
		hashMode: cfg.HashMode,
		salt:     cfg.Salt,
		patterns: make([]*regexp.Regexp, 0, len(cfg.Patterns)+len(defaultPatterns)),
	}

	if !cfg.DisableGitleaks {
		// Fall back to the regex patterns when the embedded config cannot load.
		if detector, err := newGitleaksDetector(); err == nil {
			r.gitleaksDetector = detector
		}
	}

	for _, p := range defaultPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile default pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	for _, p := range cfg.Patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to compile custom pattern %s: %w", p, err)
		}
		r.patterns = append(r.patterns, re)
	}

	return r, nil
}

// newGitleaksDetector creates a gitleaks detector from its bundled default rules.
func newGitleaksDetector() (*detect.Detector, error) {
	v := viper.New()
	v.SetConfigType("toml")
	if err := v.ReadConfig(strings.NewReader(config.DefaultConfig)); err != nil {
		return nil, fmt.Errorf("failed to read gitleaks config: %w", err)
	}

	var vc config.ViperConfig
	if err := v.Unmarshal(&vc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gitleaks config: %w", err)
	}

	cfg, err := vc.Translate()
	if err != nil {
		return nil, fmt.Errorf("failed to translate gitleaks config: %w", err)
	}

	return detect.NewDetector(cfg), nil
}

// ScrubString replaces sensitive values in a string.
// Tracked values go first, then gitleaks findings, then regex patterns.
func (r *Redactor) ScrubString(input string) string {
	if input == "" {
		return ""
	}

	result := input

	if r.tracked != nil {
		for _, secret := range r.tracked.AllValues() {
			if strings.Contains(result, secret) {
				result = strings.ReplaceAll(result, secret, r.replacement(secret))
			}
		}
	}

	if r.gitleaksDetector != nil {
		findings := r.gitleaksDetector.Detect(detect.Fragment{Raw: result})
		for _, finding := range findings {
			if finding.Secret == "" {
				continue
			}
			result = strings.ReplaceAll(result, finding.Secret, r.replacement(finding.Secret))
		}
	}

	for _, re := range r.patterns {
		result = re.ReplaceAllStringFunc(result, r.replacement)
	}

	return result
}

func (r *Redactor) replacement(secret string) string {
	if r.hashMode {
		return r.hash(secret)
	}
	return redactedMarker
}

// hash returns a truncated HMAC-SHA256 of the secret: [hmac:<16 hex chars>].
// The same secret always maps to the same marker, so log lines stay correlatable.
func (r *Redactor) hash(secret string) string {
	mac := hmac.New(sha256.New, []byte(r.salt))
	mac.Write([]byte(secret))
	sum := mac.Sum(nil)

	return fmt.Sprintf("[hmac:%s]", hex.EncodeToString(sum)[:16])
}

var defaultPatterns = []string{
	// Entra ID (Azure AD) client secret
	`[a-zA-Z0-9_~.\-]{3}\dQ~[a-zA-Z0-9_~.\-]{31,34}`,
	// Bearer token in an echoed header
	`(?i)bearer\s+[A-Za-z0-9\-._~+/]{16,}=*`,
	// Generic private key header
	`-----BEGIN [A-Z ]+ PRIVATE KEY-----`,
	// AWS Access Key ID
	`\b((?:AKIA|ABIA|ACCA|ASIA)[0-9A-Z]{16})\b`,
}
