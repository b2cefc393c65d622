package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/reglet-dev/b2cdeploy/internal/application/errors"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
	"github.com/reglet-dev/b2cdeploy/internal/domain/entities"
	"golang.org/x/sync/errgroup"
)

// ConcurrentExecutor uploads the documents of one wave in parallel.
// A wave only starts once every upload of the previous wave has finished,
// so a base policy is always accepted before its children are sent.
type ConcurrentExecutor struct {
	logger        *slog.Logger
	maxConcurrent int
}

// NewConcurrentExecutor creates a wave-parallel plan executor.
// maxConcurrent <= 0 selects DefaultMaxConcurrent.
func NewConcurrentExecutor(maxConcurrent int, logger *slog.Logger) *ConcurrentExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ConcurrentExecutor{
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// waveState collects the outcome of one wave. Workers only touch it under mu.
type waveState struct {
	mu        sync.Mutex
	published []string
}

func (s *waveState) markPublished(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.published = append(s.published, id)
}

// Execute walks the plan wave by wave. The first failing upload cancels the
// rest of its wave and no later wave is started.
func (e *ConcurrentExecutor) Execute(
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
		if err := ctx.Err(); err != nil {
			report.Duration = time.Since(start)
			return report, err
		}

		e.logger.Debug("deploying wave", "level", wave.Level, "policies", len(wave.Documents), "max_concurrent", e.maxConcurrent)

		state, err := e.executeWave(ctx, wave, upload)
		report.Published = append(report.Published, state.published...)
		report.Completed += len(state.published)

		if err != nil {
			var execErr *apperrors.ExecutionError
			if errors.As(err, &execErr) {
				report.FailedID = execErr.DocumentID
			}
			report.Duration = time.Since(start)
			return report, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

func (e *ConcurrentExecutor) executeWave(
	ctx context.Context,
	wave entities.DeploymentWave,
	upload ports.UploadFunc,
) (*waveState, error) {
	state := &waveState{}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.maxConcurrent)

	for _, doc := range wave.Documents {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}

			e.logger.Debug("publishing policy", "policy_id", doc.ID, "file", doc.SourceFile)
			if err := upload(gCtx, doc); err != nil {
				return apperrors.NewExecutionError(doc.ID, "upload failed", err)
			}

			state.markPublished(doc.ID)
			e.logger.Debug("published policy", "policy_id", doc.ID)
			return nil
		})
	}

	return state, g.Wait()
}
