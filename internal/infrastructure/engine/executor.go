package engine

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
)

// SequentialExecutor uploads every document of a plan one after another,
// wave by wave, and stops at the first failure.
type SequentialExecutor struct {
	logger *slog.Logger
}

// NewSequentialExecutor creates a sequential plan executor.
func NewSequentialExecutor(logger *slog.Logger) *SequentialExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequentialExecutor{logger: logger}
}

// Execute walks the plan in order. Documents uploaded before a failure stay
// published; nothing is rolled back.
func (e *SequentialExecutor) Execute(
	ctx context.Context,
	plan *entities.DeploymentPlan,
	upload ports.UploadFunc,
) (entities.PublishReport, error) {
	start := time.Now()
	report := entities.PublishReport{}
	if plan == nil {
		return report, nil
	}

	for _, wave := range plan.Waves {
		e.logger.Debug("deploying wave", "level", wave.Level, "policies", len(wave.Documents))

		for _, doc := range wave.Documents {
			if err := ctx.Err(); err != nil {
				report.Duration = time.Since(start)
				return report, err
			}

			e.logger.Debug("publishing policy", "policy_id", doc.ID, "file", doc.SourceFile)
			if err := upload(ctx, doc); err != nil {
				report.FailedID = doc.ID
				report.Duration = time.Since(start)
				return report, apperrors.NewExecutionError(doc.ID, "upload failed", err)
			}

			report.Completed++
			report.Published = append(report.Published, doc.ID)
			e.logger.Debug("published policy", "policy_id", doc.ID)
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}
