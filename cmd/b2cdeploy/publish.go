package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/container"
	"github.com/spf13/cobra"
)

// PublishOptions holds the flags of the publish command.
type PublishOptions struct {
	CommonOptions
	Filters FilterOptions

	InputFolder     string
	Authority       string
	ClientID        string
	ClientSecret    string
	ClientSecretRef string
	MaxConcurrent   int
	Parallel        bool
	Yes             bool
}

var publishOpts = PublishOptions{CommonOptions: DefaultCommonOptions()}

// publishCmd represents the publish command
var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upload policies to the tenant wave by wave",
	Long: `Plan the deployment, then upload every selected policy to Microsoft Graph
using a confidential client. Base policies are uploaded before the policies
that extend them. The first failed upload stops the run; policies already
uploaded stay uploaded.

Credentials:
  --authority https://login.microsoftonline.com/contoso.onmicrosoft.com
  --client-id 00000000-0000-0000-0000-000000000000
  --client-secret ...          or B2CDEPLOY_CLIENT_SECRET
  --client-secret-ref name     secret from the system config`,
	Args: cobra.NoArgs,
	RunE: withContainer(func(cc *CommandContext, cmd *cobra.Command, _ []string) error {
		return runPublish(cc, publishOpts, cmd.OutOrStdout())
	}, func(o *container.Options) {
		o.AssumeYes = publishOpts.Yes
	}),
}

func init() {
	rootCmd.AddCommand(publishCmd)

	publishCmd.Flags().StringVarP(&publishOpts.InputFolder, "input", "i", "", "Folder holding the built policies")
	publishCmd.Flags().StringVar(&publishOpts.Authority, "authority", "", "Token authority, e.g. https://login.microsoftonline.com/<tenant>")
	publishCmd.Flags().StringVar(&publishOpts.ClientID, "client-id", "", "Application (client) id of the deployment app registration")
	publishCmd.Flags().StringVar(&publishOpts.ClientSecret, "client-secret", "", "Client secret (prefer B2CDEPLOY_CLIENT_SECRET)")
	publishCmd.Flags().StringVar(&publishOpts.ClientSecretRef, "client-secret-ref", "", "Name of a secret in the system config")
	publishCmd.Flags().BoolVar(&publishOpts.Parallel, "parallel", false, "Upload the policies of one wave concurrently")
	publishCmd.Flags().IntVar(&publishOpts.MaxConcurrent, "max-concurrent", 0, "Parallel uploads per wave (0 = system config default)")
	publishCmd.Flags().BoolVarP(&publishOpts.Yes, "yes", "y", false, "Publish without asking for confirmation")
	publishOpts.Filters.RegisterFlags(publishCmd)
	publishOpts.CommonOptions.RegisterFlags(publishCmd)
}

// Validate checks the flags that do not depend on the container.
func (opts *PublishOptions) Validate() error {
	if err := validateInput(opts.InputFolder, &opts.CommonOptions); err != nil {
		return err
	}
	if opts.Authority == "" {
		return apperrors.NewConfigurationError("credentials", "required flag not set: --authority", nil)
	}
	if opts.ClientID == "" {
		return apperrors.NewConfigurationError("credentials", "required flag not set: --client-id", nil)
	}
	if opts.MaxConcurrent < 0 {
		return apperrors.NewConfigurationError("flags",
			fmt.Sprintf("--max-concurrent must not be negative: %d", opts.MaxConcurrent), nil)
	}
	return nil
}

// runPublish implements the core logic for the publish command.
func runPublish(cc *CommandContext, opts PublishOptions, stdout io.Writer) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	secret, err := cc.Container.SecretResolver().ClientSecret(opts.ClientSecret, opts.ClientSecretRef)
	if err != nil {
		return apperrors.NewConfigurationError("credentials", "client secret unavailable", err)
	}

	ctx, cancel := opts.ApplyToContext(cc.Context)
	defer cancel()

	resp, publishErr := cc.Container.PublishPoliciesUseCase().Execute(ctx, dto.PublishPoliciesRequest{
		Plan: dto.PlanDeploymentRequest{
			InputFolder: opts.InputFolder,
			Filters:     opts.Filters.ToDTO(),
		},
		Credentials: dto.Credentials{
			Authority:    opts.Authority,
			ClientID:     opts.ClientID,
			ClientSecret: secret,
		},
		Execution: dto.ExecutionOptions{
			Parallel:      opts.Parallel,
			MaxConcurrent: opts.MaxConcurrent,
		},
		AutoApprove: opts.Yes,
		Metadata:    dto.RequestMetadata{RunID: cc.RunID},
	})
	if resp == nil || resp.Plan == nil {
		return publishErr
	}

	err = renderResult(cc, &opts.CommonOptions, stdout, func(f ports.OutputFormatter) error {
		return f.FormatPublish(resp)
	})
	return errors.Join(publishErr, err)
}
