package ports

// SensitiveValueProvider tracks and provides all sensitive values for protection.
// This is a PORT - the application defines what it needs, infrastructure provides it.
type SensitiveValueProvider interface {
	// Track registers a sensitive value to be protected (redacted).
	Track(value string)

	// AllValues returns all tracked sensitive values.
	AllValues() []string
}

// Scrubber removes secrets from text before it is logged or returned.
type Scrubber interface {
	ScrubString(input string) string
}

// SecretResolver resolves named secrets from configured sources.
type SecretResolver interface {
	Resolve(name string) (string, error)
	ClientSecret(literal, ref string) (string, error)
}
