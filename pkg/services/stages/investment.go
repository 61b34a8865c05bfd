package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/finance"
)

// InvestmentAnalysis is the deterministic stage: NPV, ROI and payback period
// of the request's cash-flow series.
type InvestmentAnalysis struct{}

func NewInvestmentAnalysis() *InvestmentAnalysis {
	return &InvestmentAnalysis{}
}

func (s *InvestmentAnalysis) Name() string {
	return HeadingInvestmentAnalysis
}

func (s *InvestmentAnalysis) Run(_ context.Context, req domain.AnalysisRequest) (string, error) {
	metrics, err := finance.InvestmentMetrics(req.CashFlows, req.DiscountRate)
	if err != nil {
		return "", err
	}
	return FormatMetrics(metrics), nil
}

func FormatMetrics(m domain.InvestmentMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NPV: %s\n", formatAmount(m.NPV))
	fmt.Fprintf(&b, "ROI: %s\n", formatPercent(m.ROI))
	if m.PaybackPeriod != nil {
		fmt.Fprintf(&b, "Payback Period: %d", *m.PaybackPeriod)
	} else {
		b.WriteString("Payback Period: not reached")
	}
	return b.String()
}
