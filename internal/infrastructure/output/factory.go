// Package output renders deployment plans and publish results.
package output

import (
	"fmt"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
)

// Options tune the formatters that support them.
type Options struct {
	// Indent pretty-prints JSON output
	Indent bool
	// NoColor disables ANSI colors in table output
	NoColor bool
}

// FormatterFactory creates output formatters by name.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

// Create returns a formatter for the given format name.
func (f *FormatterFactory) Create(format string, writer io.Writer, options Options) (ports.OutputFormatter, error) {
	switch format {
	case "table":
		return NewTableFormatter(writer, !options.NoColor), nil
	case "json":
		return NewJSONFormatter(writer, options.Indent), nil
	case "yaml":
		return NewYAMLFormatter(writer), nil
	case "junit":
		return NewJUnitFormatter(writer), nil
	case "sarif":
		return NewSARIFFormatter(writer), nil
	default:
		return nil, fmt.Errorf(
			"unknown format: %s (supported: %v)",
			format, f.SupportedFormats(),
		)
	}
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	return []string{"table", "json", "yaml", "junit", "sarif"}
}
