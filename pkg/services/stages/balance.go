package stages

import (
	"context"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
)

const (
	LiquiditySufficient   = "No liquidity issues."
	LiquidityInsufficient = "Insufficient liquidity."
)

// Liquidity reports whether cash on hand covers the investment.
func Liquidity(sheet domain.BalanceSheet, investment float64) (ok bool, sentence string) {
	if sheet.Cash()-investment >= 0 {
		return true, LiquiditySufficient
	}
	return false, LiquidityInsufficient
}

// BalanceSheetAnalysis prefixes the generated analysis with a liquidity
// sentence computed locally before generation.
type BalanceSheetAnalysis struct {
	prompt *PromptStage
}

func NewBalanceSheetAnalysis(catalog *prompts.Catalog, generator llm.Generator) *BalanceSheetAnalysis {
	return &BalanceSheetAnalysis{
		prompt: NewPromptStage(HeadingBalanceSheetAnalysis, catalog.MustGet(prompts.BalanceSheetAnalysis), generator,
			func(req domain.AnalysisRequest) any {
				return struct {
					InvestmentAmount string
					BalanceSheet     string
				}{
					InvestmentAmount: formatAmount(req.InvestmentAmount),
					BalanceSheet:     balanceSheetText(req),
				}
			}),
	}
}

func (s *BalanceSheetAnalysis) Name() string {
	return HeadingBalanceSheetAnalysis
}

func (s *BalanceSheetAnalysis) Run(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	_, sentence := Liquidity(req.BalanceSheet, req.InvestmentAmount)
	text, err := s.prompt.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return sentence + "\n" + text, nil
}
