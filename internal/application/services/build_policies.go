// Package services contains application use cases.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/domain/services"
)

// BuildPoliciesUseCase renders policy templates for one environment.
// This is a pure application layer component that depends only on ports.
type BuildPoliciesUseCase struct {
	settings    ports.SettingsSource
	source      ports.DocumentSource
	sink        ports.OutputSink
	resolver    *services.SettingsResolver
	substitutor *services.PlaceholderSubstitutor
	logger      *slog.Logger
}

// NewBuildPoliciesUseCase creates a new build policies use case.
func NewBuildPoliciesUseCase(
	settings ports.SettingsSource,
	source ports.DocumentSource,
	sink ports.OutputSink,
	logger *slog.Logger,
) *BuildPoliciesUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &BuildPoliciesUseCase{
		settings:    settings,
		source:      source,
		sink:        sink,
		resolver:    services.NewSettingsResolver(),
		substitutor: services.NewPlaceholderSubstitutor(),
		logger:      logger,
	}
}

// renderedPolicy is a template after substitution, not yet written.
type renderedPolicy struct {
	name       string
	content    string
	unresolved []string
}

// Execute resolves the environment, substitutes every template and writes the
// results under their original file names.
func (uc *BuildPoliciesUseCase) Execute(ctx context.Context, req dto.BuildPoliciesRequest) (*dto.BuildPoliciesResponse, error) {
	startTime := time.Now()
	logger := uc.logger.With("run_id", req.Metadata.RunID.String())

	env, err := uc.resolveEnvironment(ctx, req)
	if err != nil {
		return nil, err
	}

	logger.Info("environment resolved",
		"environment", env.Name,
		"tenant", env.Tenant,
		"settings", len(env.PolicySettings))
	if env.Production {
		logger.Warn("building policies for a production environment", "environment", env.Name)
	}

	rendered, err := uc.renderTemplates(ctx, logger, req.InputFolder, env)
	if err != nil {
		return nil, err
	}

	if err := uc.checkUnresolved(logger, rendered, req.Strict); err != nil {
		return nil, err
	}

	written := make([]string, 0, len(rendered))
	for _, policy := range rendered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := uc.sink.Write(ctx, req.OutputFolder, policy.name, policy.content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", policy.name, err)
		}
		logger.Debug("policy written", "file", policy.name)
		written = append(written, policy.name)
	}

	logger.Info("policies built", "count", len(written), "output", req.OutputFolder)

	return &dto.BuildPoliciesResponse{
		OutputFolder: req.OutputFolder,
		Environment:  env.Name,
		Tenant:       env.Tenant,
		Production:   env.Production,
		Written:      written,
		Metadata:     dto.NewResponseMetadata(req.Metadata.RunID, startTime),
	}, nil
}

func (uc *BuildPoliciesUseCase) resolveEnvironment(ctx context.Context, req dto.BuildPoliciesRequest) (entities.EnvironmentSettings, error) {
	appSettings, err := uc.settings.Load(ctx, req.InputFolder, req.SettingsFile)
	if err != nil {
		return entities.EnvironmentSettings{}, apperrors.NewConfigurationError("settings", "failed to load settings", err)
	}

	overrides := entities.ParseOverrides(req.OverrideLines)
	env, err := uc.resolver.Resolve(appSettings.Environments, req.Environment, overrides)
	if err != nil {
		return entities.EnvironmentSettings{}, apperrors.NewConfigurationError("environment", "cannot resolve environment", err)
	}

	return env, nil
}

func (uc *BuildPoliciesUseCase) renderTemplates(
	ctx context.Context,
	logger *slog.Logger,
	folder string,
	env entities.EnvironmentSettings,
) ([]renderedPolicy, error) {
	names, err := uc.source.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list input folder: %w", err)
	}
	if len(names) == 0 {
		return nil, apperrors.NewNoInputError(folder)
	}

	keys := services.SortedSettingKeys(env)
	rendered := make([]renderedPolicy, 0, len(names))

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := uc.source.Read(ctx, folder, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		logger.Debug("replacing placeholders", "file", name, "keys", keys)
		rendered = append(rendered, renderedPolicy{
			name:       name,
			content:    uc.substitutor.Substitute(content, env),
			unresolved: uc.substitutor.UnresolvedPlaceholders(content, env),
		})
	}

	return rendered, nil
}

// checkUnresolved reports placeholders no setting matched. In strict mode
// they fail the build before anything is written.
func (uc *BuildPoliciesUseCase) checkUnresolved(logger *slog.Logger, rendered []renderedPolicy, strict bool) error {
	var problems []string
	for _, policy := range rendered {
		if len(policy.unresolved) == 0 {
			continue
		}
		if !strict {
			logger.Warn("unresolved placeholders left in policy", "file", policy.name, "placeholders", policy.unresolved)
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: %s", policy.name, strings.Join(policy.unresolved, ", ")))
	}

	if len(problems) > 0 {
		return apperrors.NewConfigurationError(
			"placeholders",
			"unresolved placeholders in "+strings.Join(problems, "; "),
			nil,
		)
	}
	return nil
}
