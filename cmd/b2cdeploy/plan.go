package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/output"
	"github.com/spf13/cobra"
)

// PlanOptions holds the flags of the plan command.
type PlanOptions struct {
	CommonOptions
	Filters FilterOptions

	InputFolder string
}

var planOpts = PlanOptions{CommonOptions: DefaultCommonOptions()}

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the order in which policies would be uploaded",
	Long: `Read every policy in the input folder and group them into waves: a
policy is uploaded only after its base policy. Nothing is sent to the tenant.

Filtering:
  --policy B2C_1A_signup_signin     Deploy only these policies
  --exclude-policy B2C_1A_PasswordReset
  --filter "parentId == 'B2C_1A_TrustFrameworkExtensions'"
  --include-ancestors               Also deploy the base policies of the selection`,
	Args: cobra.NoArgs,
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
		return runPlan(cc, planOpts, cmd.OutOrStdout())
	}),
}

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVarP(&planOpts.InputFolder, "input", "i", "", "Folder holding the built policies")
	planOpts.Filters.RegisterFlags(planCmd)
	planOpts.CommonOptions.RegisterFlags(planCmd)
}

// runPlan implements the core logic for the plan command.
func runPlan(cc *CommandContext, opts PlanOptions, stdout io.Writer) error {
	if err := validateInput(opts.InputFolder, &opts.CommonOptions); err != nil {
		return err
	}

	ctx, cancel := opts.ApplyToContext(cc.Context)
	defer cancel()

	resp, planErr := cc.Container.PlanDeploymentUseCase().Execute(ctx, dto.PlanDeploymentRequest{
		InputFolder: opts.InputFolder,
		Filters:     opts.Filters.ToDTO(),
		Metadata:    dto.RequestMetadata{RunID: cc.RunID},
	})
	if resp == nil {
		return planErr
	}

	err := renderResult(cc, &opts.CommonOptions, stdout, func(f ports.OutputFormatter) error {
		return f.FormatPlan(resp)
	})
	return errors.Join(planErr, err)
}

func validateInput(inputFolder string, common *CommonOptions) error {
	if inputFolder == "" {
		return apperrors.NewConfigurationError("flags", "required flag not set: --input", nil)
	}
	if err := common.ValidateFlags(); err != nil {
		return apperrors.NewConfigurationError("flags", err.Error(), nil)
	}
	return nil
}

// renderResult creates the formatter selected by --format and --output and
// hands it to render.
func renderResult(cc *CommandContext, common *CommonOptions, stdout io.Writer, render func(ports.OutputFormatter) error) error {
	writer, closeOutput, err := common.openOutput(stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	formatter, err := cc.Container.Formatters().Create(common.Format, writer, output.Options{
		Indent:  true,
		NoColor: common.NoColor || common.OutFile != "",
	})
	if err != nil {
		return err
	}

	if common.OutFile != "" {
		cc.Logger.Info("writing output", "file", common.OutFile, "format", common.Format)
	}
	if err := render(formatter); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
