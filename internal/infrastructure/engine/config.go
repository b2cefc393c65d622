// Package engine executes deployment plans.
package engine

import (
	"log/slog"

	"github.com/reglet-dev/b2cdeploy/internal/application/dto"
	"github.com/reglet-dev/b2cdeploy/internal/application/ports"
)

// DefaultMaxConcurrent is the default number of parallel uploads within one wave.
const DefaultMaxConcurrent = 4

// ExecutionConfig controls execution behavior.
type ExecutionConfig struct {
	Parallel      bool
	MaxConcurrent int
}

// DefaultExecutionConfig returns the reference behaviour: one upload at a time.
func DefaultExecutionConfig() ExecutionConfig {
	return ExecutionConfig{
		MaxConcurrent: DefaultMaxConcurrent,
		Parallel:      false,
	}
}

// NewPlanExecutor returns the executor matching cfg.
func NewPlanExecutor(cfg ExecutionConfig, logger *slog.Logger) ports.PlanExecutor {
	if cfg.Parallel {
		return NewConcurrentExecutor(cfg.MaxConcurrent, logger)
	}
	return NewSequentialExecutor(logger)
}

// ExecutorFactory implements ports.PlanExecutorFactory. Per-run options
// override the defaults it was built with.
type ExecutorFactory struct {
	defaults ExecutionConfig
	logger   *slog.Logger
}

// NewExecutorFactory creates a factory. A non-positive MaxConcurrent in
// defaults falls back to DefaultMaxConcurrent.
func NewExecutorFactory(defaults ExecutionConfig, logger *slog.Logger) *ExecutorFactory {
	if defaults.MaxConcurrent <= 0 {
		defaults.MaxConcurrent = DefaultMaxConcurrent
	}
	return &ExecutorFactory{defaults: defaults, logger: logger}
}

// NewExecutor returns an executor for one publish run.
func (f *ExecutorFactory) NewExecutor(opts dto.ExecutionOptions) ports.PlanExecutor {
	return NewPlanExecutor(f.resolve(opts), f.logger)
}

func (f *ExecutorFactory) resolve(opts dto.ExecutionOptions) ExecutionConfig {
	cfg := f.defaults
	if opts.Parallel {
		cfg.Parallel = true
	}
	if opts.MaxConcurrent > 0 {
		cfg.MaxConcurrent = opts.MaxConcurrent
	}
	return cfg
}
