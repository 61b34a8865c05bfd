// Package stages holds the analysis stages of a report. Every stage reads the
// request, produces the text of one section, and reports failure as an error;
// isolation and timeouts are the pipeline's concern.
package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/dustin/go-humanize"
)

const (
	HeadingMarketAnalysis       = "Market Analysis"
	HeadingCompetitionAnalysis  = "Competition Analysis"
	HeadingBalanceSheetAnalysis = "Balance Sheet Analysis"
	HeadingInvestmentAnalysis   = "Investment Analysis"
	HeadingMarketPrediction     = "Market Prediction"
	HeadingCashFlowPrediction   = "Cash Flow Prediction"
)

type Stage interface {
	// Name is the section heading the stage produces.
	Name() string
	Run(ctx context.Context, req domain.AnalysisRequest) (string, error)
}

func formatAmount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func formatSeries(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatAmount(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
