package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/de-tools/viability/pkg/config"
	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/runtime/app"
	"github.com/de-tools/viability/pkg/runtime/terminal"
	"github.com/de-tools/viability/pkg/runtime/terminal/commands"
	"github.com/de-tools/viability/pkg/store/warehouse"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithContext(ctx)

	cli := terminal.NewCLI(terminal.Options{
		Services: services(logger),
		Output:   os.Stdout,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func services(logger zerolog.Logger) commands.ServiceProvider {
	return func(ctx context.Context) (*commands.Services, func() error, error) {
		cfg, err := config.Load(os.Getenv("VIABILITY_CONFIG"))
		if err != nil {
			return nil, nil, err
		}
		a, err := app.New(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}

		svc := &commands.Services{Orchestrator: a.Orchestrator, Validator: a.Validator}
		if cfg.Warehouse.ProfilesPath != "" {
			registry, err := warehouse.NewRegistry(cfg.Warehouse.ProfilesPath)
			if err != nil {
				return nil, nil, errors.Join(err, a.Close())
			}
			svc.Tables = profileTables{registry: registry}
			svc.MarketQuery = commands.MarketQuery{
				Profile: cfg.Warehouse.Profile,
				Query:   cfg.Warehouse.Query,
				Target:  cfg.Warehouse.Target,
			}
		}
		return svc, a.Close, nil
	}
}

type profileTables struct {
	registry warehouse.Registry
}

func (p profileTables) LoadTable(ctx context.Context, profile, query, target string) (domain.Table, error) {
	db, err := warehouse.Open(ctx, p.registry, profile)
	if err != nil {
		return domain.Table{}, err
	}
	defer db.Close()

	loader, err := warehouse.NewLoader(db)
	if err != nil {
		return domain.Table{}, err
	}
	return loader.LoadTable(ctx, query, target)
}
