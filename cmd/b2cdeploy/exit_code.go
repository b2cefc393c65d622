package main

import (
	"errors"

	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// Process exit codes. Scripts and pipelines rely on these values.
const (
	exitOK             = 0
	exitFailure        = 1
	exitConfiguration  = 2
	exitNoInput        = 3
	exitUnresolvable   = 4
	exitAuthentication = 5
	exitTransport      = 6
)

// exitCode maps an error returned by a command to the process exit code.
func exitCode(err error) int {
	var (
		configErr       *apperrors.ConfigurationError
		noInputErr      *apperrors.NoInputError
		unresolvableErr *entities.UnresolvableDependencyError
		authErr         *apperrors.AuthenticationError
		transportErr    *apperrors.TransportError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &configErr):
		return exitConfiguration
	case errors.As(err, &noInputErr):
		return exitNoInput
	case errors.As(err, &unresolvableErr):
		return exitUnresolvable
	case errors.As(err, &authErr):
		return exitAuthentication
	case errors.As(err, &transportErr):
		return exitTransport
	default:
		return exitFailure
	}
}
