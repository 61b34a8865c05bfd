package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/viability/pkg/config"
	"github.com/de-tools/viability/pkg/runtime/app"
	"github.com/de-tools/viability/pkg/server"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for the viability analyzer",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML config file (VIABILITY_* environment variables override it)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to release resources")
		}
	}()

	reportsDir := ""
	if cfg.Sink.Kind == "filesystem" {
		reportsDir = cfg.Sink.Dir
	}

	api := server.NewWebAPI(server.Config{
		Addr:            net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		ReportsDir:      reportsDir,
		Dependencies: server.Dependencies{
			Orchestrator: a.Orchestrator,
			Validator:    a.Validator,
			Catalog:      a.Catalog,
			Gatherer:     a.Registry,
			Logger:       logger,
		},
	})

	return api.Start()
}
