// Package prompt asks the operator before anything is sent to a tenant.
package prompt

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
)

// IsInteractive checks if stdin is a terminal rather than a pipe or file.
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// NewConfirmer returns a terminal prompt when one can be shown, and an
// auto-approving confirmer when assumeYes is set or stdin is not a terminal.
func NewConfirmer(assumeYes bool, logger *slog.Logger) ports.Confirmer {
	if assumeYes || !IsInteractive() {
		return NewAutoConfirmer(logger)
	}
	return NewTerminalConfirmer()
}

// TerminalConfirmer asks a yes/no question on the terminal.
type TerminalConfirmer struct{}

// NewTerminalConfirmer creates a new TerminalConfirmer.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{}
}

// Confirm shows message and waits for an answer. Aborting the prompt
// (Ctrl+C or Esc) counts as "no".
func (c *TerminalConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	var approved bool

	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(message).
			Affirmative("Publish").
			Negative("Cancel").
			Value(&approved),
	))

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return approved, nil
}

// AutoConfirmer approves every question. It is used for --yes and in pipelines.
type AutoConfirmer struct {
	logger *slog.Logger
}

// NewAutoConfirmer creates a new AutoConfirmer.
func NewAutoConfirmer(logger *slog.Logger) *AutoConfirmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoConfirmer{logger: logger}
}

// Confirm logs message and returns true.
func (c *AutoConfirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.logger.Debug("confirmation skipped", "question", message)
	return true, nil
}
