package prompt

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsInteractive(t *testing.T) {
	// Not t.Parallel() because it inspects os.Stdin
	assert.IsType(t, true, IsInteractive())
}

func TestAutoConfirmer_Confirm(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	approved, err := NewAutoConfirmer(logger).Confirm(context.Background(), "Publish 3 policies?")
	require.NoError(t, err)
	assert.True(t, approved)
	assert.Contains(t, buf.String(), "Publish 3 policies?")
}

func TestNewConfirmer_AssumeYes(t *testing.T) {
	assert.IsType(t, &AutoConfirmer{}, NewConfirmer(true, nil))
}

func TestNewConfirmer_NonInteractive(t *testing.T) {
	if IsInteractive() {
		t.Skip("stdin is a terminal")
	}
	assert.IsType(t, &AutoConfirmer{}, NewConfirmer(false, nil))
}
