package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/finance"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
	"github.com/de-tools/viability/pkg/services/regression"
)

type ForecastOptions struct {
	TestFraction float64
	Seed         int64
}

// MarketPrediction asks for a market-size narrative. When the request carries
// a market-data table, a regression forecast is fitted first, quoted in the
// prompt and appended to the section.
type MarketPrediction struct {
	prompt    *PromptStage
	regressor regression.Regressor
	opts      ForecastOptions
}

func NewMarketPrediction(
	catalog *prompts.Catalog,
	generator llm.Generator,
	regressor regression.Regressor,
	opts ForecastOptions,
) *MarketPrediction {
	return &MarketPrediction{
		prompt:    NewPromptStage(HeadingMarketPrediction, catalog.MustGet(prompts.MarketPrediction), generator, nil),
		regressor: regressor,
		opts:      opts,
	}
}

func (s *MarketPrediction) Name() string {
	return HeadingMarketPrediction
}

func (s *MarketPrediction) Forecast(ctx context.Context, table domain.Table) (domain.MarketForecast, error) {
	resp, err := s.regressor.FitPredict(ctx, regression.Request{
		Table:        table,
		TestFraction: s.opts.TestFraction,
		Seed:         s.opts.Seed,
	})
	if err != nil {
		return domain.MarketForecast{}, fmt.Errorf("market regression: %w", err)
	}
	cagr, err := finance.CAGR(resp.Predictions)
	if err != nil {
		return domain.MarketForecast{}, fmt.Errorf("market growth: %w", err)
	}
	return domain.MarketForecast{Predictions: resp.Predictions, CAGR: cagr}, nil
}

func (s *MarketPrediction) Run(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	var forecast *domain.MarketForecast
	if s.regressor != nil && !req.MarketData.Empty() {
		f, err := s.Forecast(ctx, req.MarketData)
		if err != nil {
			return "", err
		}
		forecast = &f
	}

	binding := struct {
		Idea       string
		MarketArea string
		MarketData string
		Forecast   string
	}{
		Idea:       req.Idea,
		MarketArea: req.MarketArea,
		MarketData: req.MarketDataText,
	}
	if forecast != nil {
		binding.Forecast = fmt.Sprintf("%s with a compound annual growth rate of %s",
			formatSeries(forecast.Predictions), formatPercent(forecast.CAGR))
	}

	text, err := s.prompt.generate(ctx, binding)
	if err != nil {
		return "", err
	}
	if forecast == nil {
		return text, nil
	}

	var b strings.Builder
	b.WriteString(text)
	fmt.Fprintf(&b, "\n\nPredictions: %s\nCAGR: %s", formatSeries(forecast.Predictions), formatPercent(forecast.CAGR))
	return b.String(), nil
}
