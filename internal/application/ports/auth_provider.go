package ports

import (
	"context"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
)

// TokenProvider acquires an access token for the policy API.
type TokenProvider interface {
	// Token returns a bearer token for the given client credentials.
	Token(ctx context.Context, creds dto.Credentials) (string, error)
}
