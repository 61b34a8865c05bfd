package stages

import (
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
	"github.com/de-tools/viability/pkg/services/regression"
)

type Options struct {
	Horizon  int
	Forecast ForecastOptions
}

// Pipeline returns the report stages in section order.
func Pipeline(
	catalog *prompts.Catalog,
	generator llm.Generator,
	regressor regression.Regressor,
	opts Options,
) []Stage {
	return []Stage{
		NewMarketAnalysis(catalog, generator),
		NewCompetitionAnalysis(catalog, generator),
		NewBalanceSheetAnalysis(catalog, generator),
		NewInvestmentAnalysis(),
		NewMarketPrediction(catalog, generator, regressor, opts.Forecast),
		NewCashflowProjector(catalog, generator, opts.Horizon),
	}
}
