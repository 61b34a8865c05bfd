package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
	"golang.org/x/sync/errgroup"
)

const DefaultHorizon = 5

// CashflowProjector combines three independent estimates (unit price, yearly
// unit sales, yearly costs) into a yearly cash-flow series. The estimates share
// only the request inputs, so they are requested concurrently.
type CashflowProjector struct {
	generator llm.Generator
	price     *prompts.Prompt
	sales     *prompts.Prompt
	costs     *prompts.Prompt
	horizon   int
}

func NewCashflowProjector(catalog *prompts.Catalog, generator llm.Generator, horizon int) *CashflowProjector {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	return &CashflowProjector{
		generator: generator,
		price:     catalog.MustGet(prompts.PriceEstimate),
		sales:     catalog.MustGet(prompts.SalesEstimate),
		costs:     catalog.MustGet(prompts.CostEstimate),
		horizon:   horizon,
	}
}

func (p *CashflowProjector) Name() string {
	return HeadingCashFlowPrediction
}

func (p *CashflowProjector) Run(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	projection, err := p.Project(ctx, req.ProductDescription, req.MarketArea, req.InvestmentAmount)
	if err != nil {
		return "", err
	}
	return FormatProjection(projection), nil
}

func (p *CashflowProjector) Project(
	ctx context.Context,
	productDescription, marketArea string,
	investmentAmount float64,
) (domain.CashflowProjection, error) {
	var (
		price        float64
		sales, costs []float64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := p.ask(gctx, p.price, struct{ ProductDescription string }{productDescription})
		if err != nil {
			return fmt.Errorf("price estimate: %w", err)
		}
		if price, err = ParseNumber(text); err != nil {
			return fmt.Errorf("price estimate: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		text, err := p.ask(gctx, p.sales, struct {
			ProductDescription string
			MarketArea         string
			Horizon            int
		}{productDescription, marketArea, p.horizon})
		if err != nil {
			return fmt.Errorf("sales estimate: %w", err)
		}
		if sales, err = ParseSeries(text); err != nil {
			return fmt.Errorf("sales estimate: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		text, err := p.ask(gctx, p.costs, struct {
			ProductDescription string
			InvestmentAmount   string
			MarketArea         string
			Horizon            int
		}{productDescription, formatAmount(investmentAmount), marketArea, p.horizon})
		if err != nil {
			return fmt.Errorf("cost estimate: %w", err)
		}
		if costs, err = ParseSeries(text); err != nil {
			return fmt.Errorf("cost estimate: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.CashflowProjection{}, err
	}

	cashFlows, err := CashFlows(price, sales, costs)
	if err != nil {
		return domain.CashflowProjection{}, err
	}
	if len(cashFlows) != p.horizon {
		return domain.CashflowProjection{}, fmt.Errorf("%w: %d yearly estimates for a %d-year horizon",
			domain.ErrShapeMismatch, len(cashFlows), p.horizon)
	}

	return domain.CashflowProjection{Price: price, Sales: sales, Costs: costs, CashFlows: cashFlows}, nil
}

// CashFlows computes price*sales[i] - costs[i]. Unequal lengths are an error.
func CashFlows(price float64, sales, costs []float64) ([]float64, error) {
	if len(sales) != len(costs) {
		return nil, fmt.Errorf("%w: %d sales estimates but %d cost estimates",
			domain.ErrShapeMismatch, len(sales), len(costs))
	}
	out := make([]float64, len(sales))
	for i := range sales {
		out[i] = price*sales[i] - costs[i]
	}
	return out, nil
}

func (p *CashflowProjector) ask(ctx context.Context, prompt *prompts.Prompt, binding any) (string, error) {
	req, err := prompt.Render(binding)
	if err != nil {
		return "", err
	}
	resp, err := p.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func FormatProjection(p domain.CashflowProjection) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Competitive Price: %s\n", formatAmount(p.Price))
	fmt.Fprintf(&b, "Estimated Sales: %s\n", formatSeries(p.Sales))
	fmt.Fprintf(&b, "Yearly Costs: %s\n", formatSeries(p.Costs))
	fmt.Fprintf(&b, "Cashflows: %s", formatSeries(p.CashFlows))
	return b.String()
}
