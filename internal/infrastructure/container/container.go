// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/application/services"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/config"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/engine"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/filesystem"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/graph"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/output"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/prompt"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/redaction"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/secrets"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/sensitivedata"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/system"
	"github.com/reglet-dev/b2cdeploy/internal/infrastructure/xmlpolicy"
)

// Container holds all application dependencies for one command invocation.
type Container struct {
	buildUseCase   *services.BuildPoliciesUseCase
	planUseCase    *services.PlanDeploymentUseCase
	publishUseCase *services.PublishPoliciesUseCase
	secrets        *secrets.Resolver
	sensitive      *sensitivedata.Provider
	redactor       *redaction.Redactor
	formatters     *output.FormatterFactory
	systemCfg      *system.Config
	logger         *slog.Logger
}

// Options configure the container.
type Options struct {
	Logger *slog.Logger

	// LogOutput, when set, replaces Logger with a text logger that scrubs
	// secrets before writing to LogOutput.
	LogOutput io.Writer
	LogLevel  slog.Leveler

	// SystemConfigPath is the system config file; empty selects defaults.
	SystemConfigPath string

	// AssumeYes skips the publish confirmation prompt.
	AssumeYes bool
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	systemCfg, err := system.NewConfigLoader().Load(opts.SystemConfigPath)
	if err != nil {
		return nil, fmt.Errorf("system config %s: %w", opts.SystemConfigPath, err)
	}

	sensitive := sensitivedata.NewProvider()
	redactor, err := redaction.New(redaction.Config{
		Patterns: systemCfg.Redaction.Patterns,
		HashMode: systemCfg.Redaction.HashMode.Enabled,
		Salt:     systemCfg.Redaction.HashMode.Salt,
	}, sensitive)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if opts.LogOutput != nil {
		logger = slog.New(slog.NewTextHandler(
			redaction.NewWriter(opts.LogOutput, redactor),
			&slog.HandlerOptions{Level: opts.LogLevel},
		))
	}

	settingsLoader, err := config.NewSettingsLoader()
	if err != nil {
		return nil, err
	}

	source := filesystem.NewDirectorySource()

	buildUseCase := services.NewBuildPoliciesUseCase(
		settingsLoader,
		source,
		filesystem.NewFolderSink(),
		logger,
	)

	planUseCase := services.NewPlanDeploymentUseCase(source, xmlpolicy.NewExtractor(), logger)

	timeout := systemCfg.Graph.Timeout()
	publishUseCase := services.NewPublishPoliciesUseCase(
		planUseCase,
		source,
		graph.NewClientCredentialsTokenProvider(systemCfg.Graph.Scopes, timeout),
		graph.NewUploaderFactory(systemCfg.Graph.BaseURL, timeout, redactor, logger),
		engine.NewExecutorFactory(engine.ExecutionConfig{
			Parallel:      systemCfg.Publish.Parallel,
			MaxConcurrent: systemCfg.Publish.MaxConcurrent,
		}, logger),
		prompt.NewConfirmer(opts.AssumeYes, logger),
		sensitive,
		logger,
	)

	return &Container{
		buildUseCase:   buildUseCase,
		planUseCase:    planUseCase,
		publishUseCase: publishUseCase,
		secrets:        secrets.NewResolver(&systemCfg.SensitiveData.Secrets, sensitive),
		sensitive:      sensitive,
		redactor:       redactor,
		formatters:     output.NewFormatterFactory(),
		systemCfg:      systemCfg,
		logger:         logger,
	}, nil
}

// BuildPoliciesUseCase returns the build use case.
func (c *Container) BuildPoliciesUseCase() *services.BuildPoliciesUseCase {
	return c.buildUseCase
}

// PlanDeploymentUseCase returns the plan use case.
func (c *Container) PlanDeploymentUseCase() *services.PlanDeploymentUseCase {
	return c.planUseCase
}

// PublishPoliciesUseCase returns the publish use case.
func (c *Container) PublishPoliciesUseCase() *services.PublishPoliciesUseCase {
	return c.publishUseCase
}

// SecretResolver returns the resolver for named secrets.
func (c *Container) SecretResolver() ports.SecretResolver {
	return c.secrets
}

// SensitiveValues returns the registry of secrets seen during the run.
func (c *Container) SensitiveValues() ports.SensitiveValueProvider {
	return c.sensitive
}

// Scrubber returns the redactor used for logs and error output.
func (c *Container) Scrubber() ports.Scrubber {
	return c.redactor
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() *output.FormatterFactory {
	return c.formatters
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}
