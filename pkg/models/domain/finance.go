package domain

// InvestmentMetrics is the output of the deterministic investment analysis.
// PaybackPeriod is nil when cumulative cash flow never becomes non-negative.
type InvestmentMetrics struct {
	NPV           float64 `json:"npv"`
	ROI           float64 `json:"roi"`
	PaybackPeriod *int    `json:"payback_period"`
}

// CashflowProjection is derived from three estimates: unit price, yearly unit
// sales and yearly costs. CashFlows[i] = Price*Sales[i] - Costs[i].
type CashflowProjection struct {
	Price     float64   `json:"competitive_price"`
	Sales     []float64 `json:"estimated_sales"`
	Costs     []float64 `json:"yearly_costs"`
	CashFlows []float64 `json:"cashflows"`
}

// MarketForecast is the output of the regression step of the market prediction.
type MarketForecast struct {
	Predictions []float64 `json:"predictions"`
	CAGR        float64   `json:"cagr"`
}
