// Package pipeline runs the analysis stages of a report behind a failure
// boundary, assembles their sections in fixed order and hands the report to
// the document sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/stages"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Sink interface {
	Persist(ctx context.Context, report domain.Report) (domain.Artifact, error)
}

type Publisher interface {
	Publish(ctx context.Context, report domain.Report, artifact domain.Artifact) error
}

type Orchestrator interface {
	// Assemble runs every stage and returns the report. It never fails: stage
	// failures become failure sections.
	Assemble(ctx context.Context, req domain.AnalysisRequest) domain.Report
	// Build assembles the report and persists it. Only an invalid request or a
	// sink failure is returned as an error.
	Build(ctx context.Context, req domain.AnalysisRequest) (Result, error)
}

type Result struct {
	Report   domain.Report
	Artifact domain.Artifact
}

type Config struct {
	StageTimeout time.Duration
	Parallel     bool
}

type ReportOrchestrator struct {
	stages     []stages.Stage
	runner     *StageRunner
	sink       Sink
	summarizer *Summarizer
	publisher  Publisher
	metrics    *Metrics
	config     Config
	validate   *validator.Validate
	now        func() time.Time
}

func NewOrchestrator(cfg Config, pipeline []stages.Stage, sink Sink, metrics *Metrics) *ReportOrchestrator {
	return &ReportOrchestrator{
		stages:   pipeline,
		runner:   NewStageRunner(cfg.StageTimeout, metrics),
		sink:     sink,
		metrics:  metrics,
		config:   cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithSummary enables the executive summary preamble.
func (o *ReportOrchestrator) WithSummary(s *Summarizer) *ReportOrchestrator {
	o.summarizer = s
	return o
}

func (o *ReportOrchestrator) WithPublisher(p Publisher) *ReportOrchestrator {
	o.publisher = p
	return o
}

func (o *ReportOrchestrator) Assemble(ctx context.Context, req domain.AnalysisRequest) domain.Report {
	report := domain.Report{
		ID:          uuid.NewString(),
		Title:       domain.ReportTitle,
		GeneratedAt: o.now(),
	}
	logger := zerolog.Ctx(ctx).With().Str("report_id", report.ID).Logger()
	ctx = logger.WithContext(ctx)

	results := o.runStages(ctx, req)
	report.Sections = make([]domain.Section, len(results))
	for i, r := range results {
		report.Sections[i] = domain.Section{Heading: r.Heading, Body: r.Text(), Failed: r.Failed()}
	}

	if o.summarizer != nil {
		summary := o.runner.Isolate(ctx, stageFunc{
			name: domain.SummaryHeading,
			fn: func(ctx context.Context, req domain.AnalysisRequest) (string, error) {
				return o.summarizer.Summarize(ctx, req, report.Sections)
			},
		}, req)
		if !summary.Failed() {
			report.Summary = summary.Body
			report.Recommendations = Recommendations(summary.Body)
		}
	}

	logger.Info().
		Int("sections", len(report.Sections)).
		Strs("failed", report.FailedSections()).
		Msg("report assembled")
	return report
}

// runStages gives every stage its own result slot, so section order is the
// pipeline order whatever the completion order.
func (o *ReportOrchestrator) runStages(ctx context.Context, req domain.AnalysisRequest) []domain.StageResult {
	results := make([]domain.StageResult, len(o.stages))
	if !o.config.Parallel {
		for i, stage := range o.stages {
			results[i] = o.runner.Isolate(ctx, stage, req)
		}
		return results
	}

	var g errgroup.Group
	for i, stage := range o.stages {
		g.Go(func() error {
			results[i] = o.runner.Isolate(ctx, stage, req)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (o *ReportOrchestrator) Build(ctx context.Context, req domain.AnalysisRequest) (Result, error) {
	if err := o.validate.Struct(req); err != nil {
		o.metrics.observeReport("invalid")
		return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	report := o.Assemble(ctx, req)

	artifact, err := o.sink.Persist(ctx, report)
	if err != nil {
		o.metrics.observeReport("sink_failure")
		if !errors.Is(err, domain.ErrSink) {
			err = fmt.Errorf("%w: %v", domain.ErrSink, err)
		}
		return Result{}, err
	}
	o.metrics.observeReport("persisted")

	if o.publisher != nil {
		if err := o.publisher.Publish(ctx, report, artifact); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("report_id", report.ID).Msg("failed to publish report event")
		}
	}

	return Result{Report: report, Artifact: artifact}, nil
}
