package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

// CommonOptions contains flags shared by the plan and publish commands.
type CommonOptions struct {
	// Output
	Format  string
	OutFile string

	// Execution
	Timeout time.Duration

	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 10 * time.Minute,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for entire execution (0 to disable)")

	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml, junit, sarif")
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	// No timeout - return no-op cancel
	return ctx, func() {}
}

// ValidateFlags validates common options.
func (opts *CommonOptions) ValidateFlags() error {
	if opts.Timeout < 0 {
		return fmt.Errorf("invalid timeout: %s", opts.Timeout)
	}

	formats := output.NewFormatterFactory().SupportedFormats()
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %v)", opts.Format, formats)
	}

	return nil
}

// openOutput returns the writer results go to. The returned close function
// is always safe to call.
func (opts *CommonOptions) openOutput(stdout io.Writer) (io.Writer, func(), error) {
	if opts.OutFile == "" {
		return stdout, func() {}, nil
	}

	//nolint:gosec // G304: User-controlled output file path is intentional
	file, err := os.Create(opts.OutFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return file, func() {
		_ = file.Close() // Best-effort cleanup
	}, nil
}

// FilterOptions selects the policies a plan covers.
type FilterOptions struct {
	Filter           string
	Policies         []string
	ExcludePolicies  []string
	IncludeAncestors bool
}

// RegisterFlags adds the policy selection flags to a cobra command.
func (opts *FilterOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&opts.Filter, "filter", "",
		"Filter expression (e.g. \"parentId == 'B2C_1A_TrustFrameworkBase'\")")
	cmd.Flags().StringSliceVar(&opts.Policies, "policy", nil,
		"Deploy only these policy ids (comma-separated)")
	cmd.Flags().StringSliceVar(&opts.ExcludePolicies, "exclude-policy", nil,
		"Skip these policy ids (comma-separated)")
	cmd.Flags().BoolVar(&opts.IncludeAncestors, "include-ancestors", false,
		"Also deploy the base policies of selected policies")
}

// ToDTO converts the flags to the use case filter options.
func (opts *FilterOptions) ToDTO() dto.FilterOptions {
	return dto.FilterOptions{
		FilterExpression: opts.Filter,
		IncludePolicies:  opts.Policies,
		ExcludePolicies:  opts.ExcludePolicies,
		IncludeAncestors: opts.IncludeAncestors,
	}
}
