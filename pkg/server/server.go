package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/viability/pkg/handlers/report"
	viabilitymiddleware "github.com/de-tools/viability/pkg/server/middleware"
	"github.com/de-tools/viability/pkg/services/pipeline"
	"github.com/de-tools/viability/pkg/services/validation"
	"github.com/de-tools/viability/pkg/store/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	logger          *zerolog.Logger
	server          *http.Server
	shutdownTimeout time.Duration
}

type Dependencies struct {
	Orchestrator pipeline.Orchestrator
	Validator    validation.Validator
	// Catalog is optional; without it the report listing routes are not mounted.
	Catalog catalog.Store
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	// ReportsDir is served under /reports when the filesystem sink is in use.
	ReportsDir   string
	Dependencies Dependencies
}

func ConfigureRouter(config Config) http.Handler {
	deps := config.Dependencies
	h := report.NewHandler(deps.Orchestrator, deps.Validator, deps.Catalog)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(viabilitymiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)
	router.Use(viabilitymiddleware.CORS(config.AllowedOrigins))

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", h.Analyze)
		r.Post("/validate", h.Validate)
		if deps.Catalog != nil {
			r.Get("/reports", h.ListReports)
			r.Get("/reports/{id}", h.GetReport)
		}
	})

	// Routes kept for existing frontends.
	router.Post("/analyze", h.Analyze)
	router.Post("/llm/validate", h.Validate)

	if config.ReportsDir != "" {
		fs := http.StripPrefix("/reports/", http.FileServer(http.Dir(config.ReportsDir)))
		router.Get("/reports/*", fs.ServeHTTP)
	}
	if deps.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

func NewWebAPI(config Config) *WebAPI {
	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	logger := config.Dependencies.Logger

	return &WebAPI{
		logger:          &logger,
		shutdownTimeout: timeout,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           ConfigureRouter(config),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
