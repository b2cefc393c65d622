package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// PublishPoliciesUseCase uploads a corpus of policies in dependency order.
type PublishPoliciesUseCase struct {
	planner   *PlanDeploymentUseCase
	source    ports.DocumentSource
	tokens    ports.TokenProvider
	uploaders ports.UploaderFactory
	executors ports.PlanExecutorFactory
	confirmer ports.Confirmer
	sensitive ports.SensitiveValueProvider
	logger    *slog.Logger
}

// NewPublishPoliciesUseCase creates a new publish policies use case.
func NewPublishPoliciesUseCase(
	planner *PlanDeploymentUseCase,
	source ports.DocumentSource,
	tokens ports.TokenProvider,
	uploaders ports.UploaderFactory,
	executors ports.PlanExecutorFactory,
	confirmer ports.Confirmer,
	sensitive ports.SensitiveValueProvider,
	logger *slog.Logger,
) *PublishPoliciesUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &PublishPoliciesUseCase{
		planner:   planner,
		source:    source,
		tokens:    tokens,
		uploaders: uploaders,
		executors: executors,
		confirmer: confirmer,
		sensitive: sensitive,
		logger:    logger,
	}
}

// Execute plans the deployment, asks for confirmation, acquires a token and
// uploads every selected document wave by wave.
//
// A failed upload aborts the remaining plan. Documents already published stay
// published; the response report says how far the run got.
func (uc *PublishPoliciesUseCase) Execute(ctx context.Context, req dto.PublishPoliciesRequest) (*dto.PublishPoliciesResponse, error) {
	startTime := time.Now()
	logger := uc.logger.With("run_id", req.Metadata.RunID.String())

	planReq := req.Plan
	planReq.Metadata = req.Metadata

	planResp, err := uc.planner.Execute(ctx, planReq)
	resp := &dto.PublishPoliciesResponse{Plan: planResp}
	if err != nil {
		resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)
		return resp, err
	}

	if planResp.Selected == 0 {
		logger.Warn("no policies selected for publishing", "policies", planResp.CorpusSize)
		resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)
		return resp, nil
	}

	if uc.sensitive != nil {
		uc.sensitive.Track(req.Credentials.ClientSecret)
	}

	if !req.AutoApprove {
		approved, err := uc.confirm(ctx, planResp, req.Credentials)
		if err != nil {
			return resp, err
		}
		if !approved {
			logger.Info("publishing declined")
			resp.Declined = true
			resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)
			return resp, nil
		}
	}

	token, err := uc.acquireToken(ctx, req.Credentials)
	if err != nil {
		return resp, err
	}
	logger.Debug("MS Graph API access token acquired")

	uploader := uc.uploaders.NewUploader(token)
	executor := uc.executors.NewExecutor(req.Execution)

	upload := func(ctx context.Context, doc entities.PolicyDocument) error {
		r, err := uc.source.Open(ctx, req.Plan.InputFolder, doc.SourceFile)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", doc.SourceFile, err)
		}
		defer func() { _ = r.Close() }()

		return uploader.Upload(ctx, doc.ID, r)
	}

	report, err := executor.Execute(ctx, planResp.Plan, upload)
	resp.Report = report
	resp.Metadata = dto.NewResponseMetadata(req.Metadata.RunID, startTime)
	if err != nil {
		logger.Error("policy upload failed",
			"failed_policy", report.FailedID,
			"published", report.Completed,
			"error", err)
		return resp, err
	}

	logger.Info("policies published", "count", report.Completed, "duration", report.Duration)
	return resp, nil
}

func (uc *PublishPoliciesUseCase) confirm(ctx context.Context, plan *dto.PlanDeploymentResponse, creds dto.Credentials) (bool, error) {
	message := fmt.Sprintf("Publish %d policies in %d waves using %s?",
		plan.Selected, len(plan.Plan.Waves), creds.Authority)

	approved, err := uc.confirmer.Confirm(ctx, message)
	if err != nil {
		return false, fmt.Errorf("confirmation failed: %w", err)
	}
	return approved, nil
}

func (uc *PublishPoliciesUseCase) acquireToken(ctx context.Context, creds dto.Credentials) (string, error) {
	token, err := uc.tokens.Token(ctx, creds)
	if err != nil {
		return "", apperrors.NewAuthenticationError("unable to acquire access token for MS Graph API", err)
	}
	if token == "" {
		return "", apperrors.NewAuthenticationError("token endpoint returned an empty access token", nil)
	}

	if uc.sensitive != nil {
		uc.sensitive.Track(token)
	}
	return token, nil
}
