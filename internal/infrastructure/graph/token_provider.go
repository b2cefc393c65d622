// Package graph talks to the Microsoft identity platform and the Microsoft
// Graph trustFramework API.
package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultScope requests the app registration's granted Graph permissions.
const DefaultScope = "https://graph.microsoft.com/.default"

const tokenPath = "/oauth2/v2.0/token"

// ErrInvalidAuthority is returned when the authority is not an absolute URL.
var ErrInvalidAuthority = errors.New("authority must be an absolute URL such as https://login.microsoftonline.com/<tenant>")

// ClientCredentialsTokenProvider implements ports.TokenProvider with the
// OAuth2 client credentials grant.
type ClientCredentialsTokenProvider struct {
	httpClient *http.Client
	scopes     []string
}

// NewClientCredentialsTokenProvider creates a token provider. Empty scopes
// select DefaultScope; a non-positive timeout leaves requests unbounded.
func NewClientCredentialsTokenProvider(scopes []string, timeout time.Duration) *ClientCredentialsTokenProvider {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	return &ClientCredentialsTokenProvider{
		httpClient: &http.Client{Timeout: timeout},
		scopes:     scopes,
	}
}

// Token acquires an access token from <authority>/oauth2/v2.0/token.
func (p *ClientCredentialsTokenProvider) Token(ctx context.Context, creds dto.Credentials) (string, error) {
	tokenURL, err := TokenURL(creds.Authority)
	if err != nil {
		return "", err
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       p.scopes,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, p.httpClient))
	if err != nil {
		return "", fmt.Errorf("token request to %s failed: %w", tokenURL, err)
	}
	return tok.AccessToken, nil
}

// TokenURL derives the token endpoint from an authority URL.
func TokenURL(authority string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(authority))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidAuthority
	}
	return strings.TrimRight(u.String(), "/") + tokenPath, nil
}
