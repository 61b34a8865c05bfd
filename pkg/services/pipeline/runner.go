package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/stages"
	"github.com/rs/zerolog"
)

// StageRunner is the failure boundary of the pipeline: whatever a stage does,
// Isolate returns a StageResult and never an error or a panic.
type StageRunner struct {
	timeout time.Duration
	metrics *Metrics
}

func NewStageRunner(timeout time.Duration, metrics *Metrics) *StageRunner {
	return &StageRunner{timeout: timeout, metrics: metrics}
}

type stageOutcome struct {
	text string
	err  error
}

func (r *StageRunner) Isolate(ctx context.Context, stage stages.Stage, req domain.AnalysisRequest) domain.StageResult {
	name := stage.Name()
	logger := zerolog.Ctx(ctx).With().Str("stage", name).Logger()
	logger.Debug().Msg("stage started")

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	done := make(chan stageOutcome, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- stageOutcome{err: fmt.Errorf("stage panicked: %v", p)}
			}
		}()
		text, err := stage.Run(ctx, req)
		done <- stageOutcome{text: text, err: err}
	}()

	var out stageOutcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}
	if out.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		out.err = fmt.Errorf("%w after %s", domain.ErrStageTimeout, r.timeout)
	}

	var result domain.StageResult
	if out.err != nil {
		result = domain.Failure(name, out.err.Error())
		logger.Error().Err(out.err).Dur("duration", time.Since(start)).Msg("stage failed")
	} else {
		result = domain.Success(name, out.text)
		logger.Info().Dur("duration", time.Since(start)).Msg("stage finished")
	}
	result.Duration = time.Since(start)
	r.metrics.observeStage(name, result.Duration, result.Failed())
	return result
}

// stageFunc adapts a closure to stages.Stage.
type stageFunc struct {
	name string
	fn   func(ctx context.Context, req domain.AnalysisRequest) (string, error)
}

func (s stageFunc) Name() string {
	return s.name
}

func (s stageFunc) Run(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	return s.fn(ctx, req)
}
