package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/b2cdeploy/internal/domain/values"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/container"
	"github.com/stretchr/testify/require"
)

const (
	basePolicyXML = `<TrustFrameworkPolicy xmlns="http://schemas.microsoft.com/online/cpim/schemas/2013/06"
  TenantId="{Settings:Tenant}" PolicyId="B2C_1A_TrustFrameworkBase">
</TrustFrameworkPolicy>`

	extensionsPolicyXML = `<TrustFrameworkPolicy xmlns="http://schemas.microsoft.com/online/cpim/schemas/2013/06"
  TenantId="{Settings:Tenant}" PolicyId="B2C_1A_TrustFrameworkExtensions">
  <BasePolicy><PolicyId>B2C_1A_TrustFrameworkBase</PolicyId></BasePolicy>
  <ClaimsProvider><Item Key="client_id">{Settings:ProxyAppId}</Item></ClaimsProvider>
</TrustFrameworkPolicy>`

	orphanPolicyXML = `<TrustFrameworkPolicy PolicyId="B2C_1A_signup_signin">
  <BasePolicy><PolicyId>B2C_1A_Missing</PolicyId></BasePolicy>
</TrustFrameworkPolicy>`
)

// newTestContext builds a command context over a real container. A non-empty
// systemConfig is written to a temporary system config file.
func newTestContext(t *testing.T, systemConfig string) *CommandContext {
	t.Helper()

	opts := container.Options{
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		AssumeYes: true,
	}
	if systemConfig != "" {
		opts.SystemConfigPath = filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(opts.SystemConfigPath, []byte(systemConfig), 0o600))
	}

	c, err := container.New(opts)
	require.NoError(t, err)

	return &CommandContext{
		Container: c,
		Logger:    c.Logger(),
		Context:   context.Background(),
		RunID:     values.NewRunID(),
	}
}

// writeFiles creates a folder holding the given files.
func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}
