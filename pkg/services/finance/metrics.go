// Package finance holds the deterministic investment math of the report. Every
// function is pure; degenerate input yields a typed error from the domain package.
package finance

import (
	"fmt"
	"math"

	"github.com/de-tools/viability/pkg/models/domain"
)

// NPV discounts cashFlows[i] by (1+rate)^i. cashFlows[0] is the undiscounted outlay.
func NPV(cashFlows []float64, rate float64) (float64, error) {
	if len(cashFlows) == 0 {
		return 0, fmt.Errorf("npv: %w", domain.ErrEmptyInput)
	}
	base := 1 + rate
	if base == 0 {
		return 0, fmt.Errorf("npv: discount rate -1: %w", domain.ErrDivisionByZero)
	}

	var npv float64
	factor := 1.0
	for _, cf := range cashFlows {
		npv += cf / factor
		factor *= base
	}
	if math.IsNaN(npv) || math.IsInf(npv, 0) {
		return 0, fmt.Errorf("npv: %w", domain.ErrNonFinite)
	}
	return npv, nil
}

// ROI is (sum(cashFlows) - cashFlows[0]) / cashFlows[0].
func ROI(cashFlows []float64) (float64, error) {
	if len(cashFlows) == 0 {
		return 0, fmt.Errorf("roi: %w", domain.ErrEmptyInput)
	}
	initial := cashFlows[0]
	if initial == 0 {
		return 0, fmt.Errorf("roi: initial cash flow is zero: %w", domain.ErrDivisionByZero)
	}

	var total float64
	for _, cf := range cashFlows {
		total += cf
	}
	return (total - initial) / initial, nil
}

// PaybackPeriod returns the first index at which the running sum of cashFlows is
// non-negative. The scan stops at that index. ok is false when no index qualifies.
func PaybackPeriod(cashFlows []float64) (period int, ok bool) {
	var cumulative float64
	for i, cf := range cashFlows {
		cumulative += cf
		if cumulative >= 0 {
			return i, true
		}
	}
	return 0, false
}

// InvestmentMetrics computes NPV, ROI and payback period of one cash-flow series.
func InvestmentMetrics(cashFlows []float64, discountRate float64) (domain.InvestmentMetrics, error) {
	npv, err := NPV(cashFlows, discountRate)
	if err != nil {
		return domain.InvestmentMetrics{}, err
	}
	roi, err := ROI(cashFlows)
	if err != nil {
		return domain.InvestmentMetrics{}, err
	}

	metrics := domain.InvestmentMetrics{NPV: npv, ROI: roi}
	if period, ok := PaybackPeriod(cashFlows); ok {
		metrics.PaybackPeriod = &period
	}
	return metrics, nil
}

// CAGR is (last/first)^(1/n) - 1 where n is the number of values.
func CAGR(values []float64) (float64, error) {
	n := len(values)
	if n == 0 {
		return 0, fmt.Errorf("cagr: %w", domain.ErrEmptyInput)
	}
	first, last := values[0], values[n-1]
	if first == 0 {
		return 0, fmt.Errorf("cagr: first value is zero: %w", domain.ErrDivisionByZero)
	}

	growth := math.Pow(last/first, 1/float64(n)) - 1
	if math.IsNaN(growth) || math.IsInf(growth, 0) {
		return 0, fmt.Errorf("cagr: growth from %g to %g: %w", first, last, domain.ErrNonFinite)
	}
	return growth, nil
}
