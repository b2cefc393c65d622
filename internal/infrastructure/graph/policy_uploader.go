package graph

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/version"
)

// DefaultBaseURL is the global Microsoft Graph endpoint.
const DefaultBaseURL = "https://graph.microsoft.com"

// maxErrorBody caps how much of a rejected response is kept.
const maxErrorBody = 64 << 10

// PolicyUploader implements ports.Uploader against the trustFramework API.
type PolicyUploader struct {
	httpClient  *http.Client
	scrubber    ports.Scrubber
	logger      *slog.Logger
	baseURL     string
	accessToken string
}

// Upload replaces the policy with the given id:
// PUT {base}/beta/trustFramework/policies/{id}/$value.
func (u *PolicyUploader) Upload(ctx context.Context, policyID string, body io.Reader) error {
	payload, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read policy %s: %w", policyID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.policyURL(policyID), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create upload request for %s: %w", policyID, err)
	}
	req.Header.Set("Authorization", "Bearer "+u.accessToken)
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("User-Agent", version.Get().UserAgent())

	started := time.Now()
	resp, err := u.httpClient.Do(req)
	if err != nil {
		return apperrors.NewTransportFailure(policyID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewTransportError(policyID, resp.StatusCode, u.errorBody(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	u.logger.Debug("policy uploaded",
		"policy_id", policyID,
		"status", resp.StatusCode,
		"bytes", len(payload),
		"duration", time.Since(started))
	return nil
}

func (u *PolicyUploader) policyURL(policyID string) string {
	return u.baseURL + "/beta/trustFramework/policies/" + url.PathEscape(policyID) + "/$value"
}

func (u *PolicyUploader) errorBody(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	body := strings.TrimSpace(string(data))
	if u.scrubber != nil {
		body = u.scrubber.ScrubString(body)
	}
	return body
}

// UploaderFactory implements ports.UploaderFactory. All uploaders it creates
// share one HTTP client.
type UploaderFactory struct {
	httpClient *http.Client
	scrubber   ports.Scrubber
	logger     *slog.Logger
	baseURL    string
}

// NewUploaderFactory creates a factory for baseURL. An empty baseURL selects
// DefaultBaseURL. scrubber may be nil.
func NewUploaderFactory(baseURL string, timeout time.Duration, scrubber ports.Scrubber, logger *slog.Logger) *UploaderFactory {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UploaderFactory{
		httpClient: &http.Client{Timeout: timeout},
		scrubber:   scrubber,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// NewUploader returns an uploader that authenticates with accessToken.
func (f *UploaderFactory) NewUploader(accessToken string) ports.Uploader {
	return &PolicyUploader{
		httpClient:  f.httpClient,
		scrubber:    f.scrubber,
		logger:      f.logger,
		baseURL:     f.baseURL,
		accessToken: accessToken,
	}
}
