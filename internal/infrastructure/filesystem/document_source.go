// Package filesystem provides file-based document sources and output sinks.
package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PolicyExtension is the file extension of policy documents.
const PolicyExtension = ".xml"

// DirectorySource reads policy documents that sit directly inside a folder.
// Subfolders are not scanned.
type DirectorySource struct{}

// NewDirectorySource creates a new directory source.
func NewDirectorySource() *DirectorySource {
	return &DirectorySource{}
}

// List returns the names of the *.xml files in folder, sorted by name.
// The extension match ignores case.
func (s *DirectorySource) List(_ context.Context, folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to read folder %s: %w", folder, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), PolicyExtension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	return names, nil
}

// Read returns the content of a policy file as text.
func (s *DirectorySource) Read(ctx context.Context, folder, name string) (string, error) {
	r, err := s.Open(ctx, folder, name)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = r.Close() // Best-effort cleanup
	}()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// Open opens a policy file for streaming.
func (s *DirectorySource) Open(_ context.Context, folder, name string) (io.ReadCloser, error) {
	// Security: Use os.OpenRoot so name cannot escape folder
	root, err := os.OpenRoot(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to open folder %s: %w", folder, err)
	}

	file, err := root.Open(name)
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	return &rootedFile{File: file, root: root}, nil
}

// rootedFile closes the root together with the file.
type rootedFile struct {
	*os.File
	root *os.Root
}

func (f *rootedFile) Close() error {
	err := f.File.Close()
	_ = f.root.Close()
	return err
}
