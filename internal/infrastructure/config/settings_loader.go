// Package config loads the environment settings that drive policy builds.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed appsettings.schema.json
var settingsSchema []byte

// DefaultSettingsFiles are tried in order when no settings file is named.
var DefaultSettingsFiles = []string{"appsettings.json", "appsettings.yaml", "appsettings.yml"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrSettingsNotFound is returned when the input folder holds no settings file.
var ErrSettingsNotFound = errors.New("settings file not found")

// SettingsLoader reads appsettings.json (or its YAML twin) from the template folder.
type SettingsLoader struct {
	schema *jsonschema.Schema
}

// NewSettingsLoader creates a settings loader with the embedded schema compiled.
func NewSettingsLoader() (*SettingsLoader, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("appsettings.schema.json", bytes.NewReader(settingsSchema)); err != nil {
		return nil, fmt.Errorf("failed to add settings schema: %w", err)
	}

	schema, err := compiler.Compile("appsettings.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile settings schema: %w", err)
	}

	return &SettingsLoader{schema: schema}, nil
}

// Load reads fileName from folder, or the first of DefaultSettingsFiles that
// exists when fileName is empty.
func (l *SettingsLoader) Load(_ context.Context, folder, fileName string) (*entities.AppSettings, error) {
	// Security: Use os.OpenRoot so fileName cannot escape folder
	root, err := os.OpenRoot(folder)
	if err != nil {
		return nil, fmt.Errorf("failed to open input folder: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	candidates := DefaultSettingsFiles
	if fileName != "" {
		candidates = []string{fileName}
	}

	for _, name := range candidates {
		file, err := root.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}

		settings, err := l.LoadFromReader(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return settings, nil
	}

	return nil, fmt.Errorf("%w in %s (looked for %s)", ErrSettingsNotFound, folder, strings.Join(candidates, ", "))
}

// LoadFromReader parses and validates settings in JSON or YAML form.
func (l *SettingsLoader) LoadFromReader(r io.Reader) (*entities.AppSettings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	jsonData := data
	if !looksLikeJSON(data) {
		jsonData, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode settings YAML: %w", err)
		}
	}

	if err := l.validate(jsonData); err != nil {
		return nil, err
	}

	var settings entities.AppSettings
	if err := json.Unmarshal(jsonData, &settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}

	return &settings, nil
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func (l *SettingsLoader) validate(jsonData []byte) error {
	var doc any
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()
	if err := decoder.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode settings: %w", err)
	}

	if err := l.schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("settings validation failed: %w", err)
	}

	return nil
}

// formatSchemaValidationError formats a JSON Schema validation error into a readable message.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collectErrors func(*jsonschema.ValidationError)
	collectErrors = func(e *jsonschema.ValidationError) {
		if e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collectErrors(cause)
		}
	}

	collectErrors(err)

	if len(messages) == 0 {
		return fmt.Errorf("settings validation failed")
	}

	return fmt.Errorf("settings validation failed:\n    - %s", strings.Join(messages, "\n    - "))
}
