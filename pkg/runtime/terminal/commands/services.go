package commands

import (
	"context"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/pipeline"
	"github.com/de-tools/viability/pkg/services/validation"
)

// TableLoader fetches market data from a named warehouse profile.
type TableLoader interface {
	LoadTable(ctx context.Context, profile, query, target string) (domain.Table, error)
}

type Services struct {
	Orchestrator pipeline.Orchestrator
	Validator    validation.Validator
	// Tables is nil when no warehouse profiles are configured.
	Tables TableLoader
	// MarketQuery is used when neither --market-data nor --profile is given.
	MarketQuery MarketQuery
}

type MarketQuery struct {
	Profile string
	Query   string
	Target  string
}

// ServiceProvider builds the services a command needs. The returned func
// releases them.
type ServiceProvider func(ctx context.Context) (*Services, func() error, error)
