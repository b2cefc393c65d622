package sensitivedata

import (
	"strings"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
)

// redactedError keeps the original error chain while hiding tracked values
// from its message.
type redactedError struct {
	msg   string
	cause error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.cause }

// SafeError wraps an error, redacting any tracked values in the message.
// errors.Is and errors.As still see the wrapped error.
func SafeError(err error, provider ports.SensitiveValueProvider) error {
	if err == nil || provider == nil {
		return err
	}

	original := err.Error()
	msg := original
	for _, secret := range provider.AllValues() {
		msg = strings.ReplaceAll(msg, secret, "[REDACTED]")
	}

	if msg == original {
		return err
	}
	return &redactedError{msg: msg, cause: err}
}
