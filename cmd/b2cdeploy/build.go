package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/spf13/cobra"
)

// BuildOptions holds the flags of the build command.
type BuildOptions struct {
	InputFolder    string
	OutputFolder   string
	SettingsFile   string
	Environment    string
	Set            []string
	AdditionalArgs string
	Timeout        time.Duration
	Strict         bool
}

var buildOpts = BuildOptions{Timeout: 10 * time.Minute}

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Substitute environment settings into policy templates",
	Long: `Read appsettings.json from the input folder, select the named environment
and replace every {Settings:Key} placeholder in the policy templates.
The rendered policies are written to the output folder under their
original file names.

Overrides:
  --set Key=Value             Override one policy setting (repeatable)
  --additional-args "A=1
B=2"                          Newline-separated overrides, as passed by pipelines
  --strict                    Fail when a placeholder has no value`,
	Args: cobra.NoArgs,
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
		return runBuild(cc, buildOpts, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOpts.InputFolder, "input", "i", "", "Folder holding the policy templates and settings file")
	buildCmd.Flags().StringVarP(&buildOpts.OutputFolder, "output-dir", "o", "", "Folder the rendered policies are written to")
	buildCmd.Flags().StringVar(&buildOpts.SettingsFile, "settings-file", "", "Settings file name inside the input folder (default appsettings.json)")
	buildCmd.Flags().StringVarP(&buildOpts.Environment, "environment", "e", "", "Environment to build for")
	buildCmd.Flags().StringArrayVar(&buildOpts.Set, "set", nil, "Override a policy setting as Key=Value (repeatable)")
	buildCmd.Flags().StringVar(&buildOpts.AdditionalArgs, "additional-args", "", "Newline-separated Key=Value overrides")
	buildCmd.Flags().DurationVar(&buildOpts.Timeout, "timeout", buildOpts.Timeout, "Global timeout for entire execution (0 to disable)")
	buildCmd.Flags().BoolVar(&buildOpts.Strict, "strict", false, "Fail when a placeholder has no value")
}

// Validate checks the required flags.
func (opts *BuildOptions) Validate() error {
	var missing []string
	if opts.InputFolder == "" {
		missing = append(missing, "--input")
	}
	if opts.OutputFolder == "" {
		missing = append(missing, "--output-dir")
	}
	if opts.Environment == "" {
		missing = append(missing, "--environment")
	}
	if len(missing) > 0 {
		return apperrors.NewConfigurationError("flags",
			"required flags not set: "+strings.Join(missing, ", "), nil)
	}
	if opts.Timeout < 0 {
		return apperrors.NewConfigurationError("flags", fmt.Sprintf("invalid timeout: %s", opts.Timeout), nil)
	}
	return nil
}

// overrideLines joins --set values and the --additional-args block. Later
// lines win, so --set takes precedence.
func (opts *BuildOptions) overrideLines() []string {
	var lines []string
	if opts.AdditionalArgs != "" {
		lines = append(lines, strings.Split(opts.AdditionalArgs, "\n")...)
	}
	return append(lines, opts.Set...)
}

// runBuild implements the core logic for the build command.
func runBuild(cc *CommandContext, opts BuildOptions, out io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	common := CommonOptions{Timeout: opts.Timeout}
	ctx, cancel := common.ApplyToContext(cc.Context)
	defer cancel()

	resp, err := cc.Container.BuildPoliciesUseCase().Execute(ctx, dto.BuildPoliciesRequest{
		InputFolder:   opts.InputFolder,
		OutputFolder:  opts.OutputFolder,
		SettingsFile:  opts.SettingsFile,
		Environment:   opts.Environment,
		OverrideLines: opts.overrideLines(),
		Strict:        opts.Strict,
		Metadata:      dto.RequestMetadata{RunID: cc.RunID},
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "Wrote %d policies to %s\n", len(resp.Written), resp.OutputFolder)
	return err
}
