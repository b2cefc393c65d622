package filesystem

import (
	"context"
	"fmt"
	"os"
)

// FolderSink writes built policies into an output folder, creating it on demand.
type FolderSink struct{}

// NewFolderSink creates a new folder sink.
func NewFolderSink() *FolderSink {
	return &FolderSink{}
}

// Write stores content as folder/name, replacing any existing file.
func (s *FolderSink) Write(_ context.Context, folder, name, content string) error {
	//nolint:gosec // G301: 0o755 is standard for pipeline artifact folders
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	root, err := os.OpenRoot(folder)
	if err != nil {
		return fmt.Errorf("failed to open output folder: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	file, err := root.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}

	if _, err := file.WriteString(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	return file.Close()
}
