package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"github.com/reglet-dev/b2cdeploy/internal/domain/services"
)

// PlanDeploymentUseCase discovers policy documents and orders them into waves.
type PlanDeploymentUseCase struct {
	source    ports.DocumentSource
	extractor ports.DescriptorExtractor
	scheduler *services.WaveScheduler
	logger    *slog.Logger
}

// NewPlanDeploymentUseCase creates a new plan deployment use case.
func NewPlanDeploymentUseCase(
	source ports.DocumentSource,
	extractor ports.DescriptorExtractor,
	logger *slog.Logger,
) *PlanDeploymentUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &PlanDeploymentUseCase{
		source:    source,
		extractor: extractor,
		scheduler: services.NewWaveScheduler(),
		logger:    logger,
	}
}

// Execute builds the plan over the whole corpus, then applies the filters.
//
// When some documents cannot be ordered the returned response still carries
// the unresolved list next to the *entities.UnresolvableDependencyError.
func (uc *PlanDeploymentUseCase) Execute(ctx context.Context, req dto.PlanDeploymentRequest) (*dto.PlanDeploymentResponse, error) {
	startTime := time.Now()
	logger := uc.logger.With("run_id", req.Metadata.RunID.String())

	filter, err := uc.compileFilter(req.Filters)
	if err != nil {
		return nil, err
	}

	docs, err := uc.discoverDocuments(ctx, req.InputFolder)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanDeploymentResponse{
		InputFolder: req.InputFolder,
		CorpusSize:  len(docs),
	}

	plan, err := uc.scheduler.BuildPlan(docs)
	if err != nil {
		resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)
		return resp, uc.planError(logger, resp, err)
	}

	if err := validateSelectedPolicies(docs, req.Filters); err != nil {
		return nil, err
	}

	filtered, skipped := filter.Apply(plan)
	for _, doc := range skipped {
		logger.Debug("policy skipped by filter", "policy_id", doc.ID, "reason", doc.Reason)
	}
	resp.Plan = filtered
	resp.Selected = filtered.DocumentCount()
	resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)

	logger.Info("deployment plan built",
		"policies", resp.CorpusSize,
		"selected", resp.Selected,
		"waves", len(filtered.Waves))
	for _, wave := range filtered.Waves {
		logger.Debug("deployment wave", "level", wave.Level, "policies", wave.IDs())
	}

	return resp, nil
}

func (uc *PlanDeploymentUseCase) compileFilter(filters dto.FilterOptions) (*services.DocumentFilter, error) {
	filter := services.NewDocumentFilter().
		WithSelectedPolicies(filters.IncludePolicies).
		WithExcludedPolicies(filters.ExcludePolicies).
		WithAncestors(filters.IncludeAncestors)

	if filters.FilterExpression != "" {
		program, err := services.CompileDocumentFilter(filters.FilterExpression)
		if err != nil {
			return nil, apperrors.NewConfigurationError(
				"filter",
				"invalid --filter expression (example: id startsWith 'B2C_1A_' && parentId != '')",
				err,
			)
		}
		filter.WithFilterExpression(program)
	}

	return filter, nil
}

func (uc *PlanDeploymentUseCase) discoverDocuments(ctx context.Context, folder string) ([]entities.PolicyDocument, error) {
	names, err := uc.source.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("failed to list input folder: %w", err)
	}
	if len(names) == 0 {
		return nil, apperrors.NewNoInputError(folder)
	}

	docs := make([]entities.PolicyDocument, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := uc.extractDescriptor(ctx, folder, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func (uc *PlanDeploymentUseCase) extractDescriptor(ctx context.Context, folder, name string) (entities.PolicyDocument, error) {
	r, err := uc.source.Open(ctx, folder, name)
	if err != nil {
		return entities.PolicyDocument{}, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer func() { _ = r.Close() }()

	doc, err := uc.extractor.Extract(name, r)
	if err != nil {
		return entities.PolicyDocument{}, apperrors.NewConfigurationError(
			"documents",
			fmt.Sprintf("cannot read policy descriptor from %s", name),
			err,
		)
	}

	uc.logger.Debug("policy discovered", "policy_id", doc.ID, "base_policy", doc.ParentID, "file", name)
	return doc, nil
}

func (uc *PlanDeploymentUseCase) planError(logger *slog.Logger, resp *dto.PlanDeploymentResponse, err error) error {
	var unresolvable *entities.UnresolvableDependencyError
	if errors.As(err, &unresolvable) {
		resp.Unresolved = unresolvable.Documents
		for _, doc := range unresolvable.Documents {
			logger.Debug("base policy not found or not deployable",
				"policy_id", doc.ID,
				"base_policy", doc.ParentID,
				"file", doc.SourceFile)
		}
		return err
	}

	return apperrors.NewConfigurationError("documents", "invalid policy corpus", err)
}

// validateSelectedPolicies rejects --policy and --exclude-policy ids that
// are not part of the corpus.
func validateSelectedPolicies(docs []entities.PolicyDocument, filters dto.FilterOptions) error {
	if len(filters.IncludePolicies) == 0 && len(filters.ExcludePolicies) == 0 {
		return nil
	}

	known := make(map[string]bool, len(docs))
	for _, doc := range docs {
		known[doc.ID] = true
	}

	for _, id := range filters.IncludePolicies {
		if !known[id] {
			return apperrors.NewConfigurationError("filter",
				fmt.Sprintf("--policy references non-existent policy: %s", id), nil)
		}
	}
	for _, id := range filters.ExcludePolicies {
		if !known[id] {
			return apperrors.NewConfigurationError("filter",
				fmt.Sprintf("--exclude-policy references non-existent policy: %s", id), nil)
		}
	}

	return nil
}
