package domain

import "fmt"

// BalanceSheet maps named numeric fields (cash, assets, liabilities, ...) to values.
type BalanceSheet map[string]float64

// Cash returns the cash position, zero when the field is absent.
func (b BalanceSheet) Cash() float64 {
	return b["cash"]
}

// Table is a market-data table: named feature columns plus one target column.
type Table struct {
	Features []string
	Rows     [][]float64 // one value per feature, in Features order
	Target   []float64   // one value per row
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// AnalysisRequest is the input bundle of one report. It is never mutated by the pipeline.
type AnalysisRequest struct {
	Idea               string       `validate:"required"`
	ProductDescription string       `validate:"required"`
	MarketArea         string       `validate:"required"`
	BalanceSheet       BalanceSheet `validate:"required"`
	// BalanceSheetText is the uploaded balance sheet as the analyst sees it.
	BalanceSheetText string
	CompetitorData   string `validate:"required"`
	MarketData       Table
	// MarketDataText is the raw market data rendered for prompts.
	MarketDataText   string
	DiscountRate     float64   `validate:"gt=0"`
	InvestmentAmount float64   `validate:"gt=0"`
	CashFlows        []float64 // first entry is conventionally the negative outlay
}

// DefaultTargetColumn names the column a market-data table predicts.
const DefaultTargetColumn = "target"

// NewTable splits rows of named columns into feature columns and the target column.
func NewTable(columns []string, rows [][]float64, target string) (Table, error) {
	if target == "" {
		target = DefaultTargetColumn
	}
	targetIdx := -1
	features := make([]string, 0, len(columns))
	for i, c := range columns {
		if c == target {
			targetIdx = i
			continue
		}
		features = append(features, c)
	}
	if targetIdx < 0 {
		return Table{}, fmt.Errorf("%w: no %q column among %v", ErrShapeMismatch, target, columns)
	}

	t := Table{Features: features}
	for n, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf("%w: row %d has %d values for %d columns", ErrShapeMismatch, n, len(row), len(columns))
		}
		values := make([]float64, 0, len(features))
		for i, v := range row {
			if i == targetIdx {
				t.Target = append(t.Target, v)
				continue
			}
			values = append(values, v)
		}
		t.Rows = append(t.Rows, values)
	}
	return t, nil
}
