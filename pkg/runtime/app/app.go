// Package app wires configuration into the report pipeline shared by the web
// server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/viability/pkg/config"
	"github.com/de-tools/viability/pkg/services/events"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/pipeline"
	"github.com/de-tools/viability/pkg/services/prompts"
	"github.com/de-tools/viability/pkg/services/regression"
	"github.com/de-tools/viability/pkg/services/sink"
	"github.com/de-tools/viability/pkg/services/stages"
	"github.com/de-tools/viability/pkg/services/validation"
	"github.com/de-tools/viability/pkg/store/catalog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

type App struct {
	Orchestrator *pipeline.ReportOrchestrator
	Validator    validation.Validator
	Catalog      catalog.Store
	Registry     *prometheus.Registry

	closers []func() error
}

// New builds every component named by cfg. Close releases the catalog
// database and the NATS connection.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	a := &App{Registry: prometheus.NewRegistry()}

	generator, err := llm.NewGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}

	catalogPrompts := prompts.Default()
	if cfg.Pipeline.PromptsPath != "" {
		if catalogPrompts, err = prompts.LoadFile(cfg.Pipeline.PromptsPath); err != nil {
			return nil, err
		}
	}

	db, err := catalog.Open(ctx, cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open report catalog: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	if a.Catalog, err = catalog.NewStore(db); err != nil {
		return nil, a.closeWith(err)
	}

	documents, err := sink.NewFromConfig(ctx, cfg.Sink, a.Catalog)
	if err != nil {
		return nil, a.closeWith(fmt.Errorf("failed to create report sink: %w", err))
	}

	metrics := pipeline.NewMetrics(a.Registry)
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pipe := stages.Pipeline(catalogPrompts, generator, regression.NewLinearRegressor(), stages.Options{
		Horizon: cfg.Pipeline.Horizon,
		Forecast: stages.ForecastOptions{
			TestFraction: cfg.Pipeline.TestFraction,
			Seed:         cfg.Pipeline.Seed,
		},
	})
	a.Orchestrator = pipeline.NewOrchestrator(pipeline.Config{
		StageTimeout: cfg.Pipeline.StageTimeout,
		Parallel:     cfg.Pipeline.Parallel,
	}, pipe, documents, metrics)

	if cfg.Pipeline.Summary {
		a.Orchestrator.WithSummary(pipeline.NewSummarizer(catalogPrompts, generator))
	}

	if cfg.Events.NatsURL != "" {
		publisher, nc, err := events.Connect(cfg.Events.NatsURL, cfg.Events.Subject, logger)
		if err != nil {
			return nil, a.closeWith(err)
		}
		a.closers = append(a.closers, func() error { return nc.Drain() })
		a.Orchestrator.WithPublisher(publisher)
	}

	a.Validator = validation.NewValidator(catalogPrompts, generator)

	logger.Info().
		Str("catalog", cfg.Catalog.Driver).
		Str("sink", cfg.Sink.Kind).
		Str("format", cfg.Sink.Format).
		Bool("parallel", cfg.Pipeline.Parallel).
		Bool("events", cfg.Events.NatsURL != "").
		Msg("report pipeline initialized")

	return a, nil
}

func (a *App) closeWith(err error) error {
	return errors.Join(err, a.Close())
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && !errors.Is(err, sql.ErrConnDone) {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
