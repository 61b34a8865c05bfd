package commands

import (
	"fmt"
	"os"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/runtime/terminal/export"
	"github.com/de-tools/viability/pkg/services/ingest"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	description        string
	productDescription string
	marketArea         string
	discountRate       float64
	investmentAmount   float64
	cashFlows          string
	competitorsPath    string
	balanceSheetPath   string
	marketDataPath     string
	targetColumn       string
	profile            string
	query              string
	persist            bool
	services           ServiceProvider
	reporter           *export.Reporter
}

func NewAnalyzeCmd(services ServiceProvider, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{services: services, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Generate an investment analysis report",
		RunE:  ac.run,
	}

	cmd.Flags().StringVar(&ac.description, "description", "", "Business idea description")
	cmd.Flags().StringVar(&ac.productDescription, "product", "", "Product description")
	cmd.Flags().StringVar(&ac.marketArea, "market-area", "", "Target market area")
	cmd.Flags().Float64Var(&ac.discountRate, "discount-rate", 0.1, "Discount rate for NPV (e.g., 0.1)")
	cmd.Flags().Float64Var(&ac.investmentAmount, "investment", 0, "Investment amount")
	cmd.Flags().StringVar(&ac.cashFlows, "cash-flows", "", "Cash flows, comma separated or a JSON array")
	cmd.Flags().StringVar(&ac.competitorsPath, "competitors", "", "Path to the competitor data file")
	cmd.Flags().StringVar(&ac.balanceSheetPath, "balance-sheet", "", "Path to the balance sheet (CSV or JSON)")
	cmd.Flags().StringVar(&ac.marketDataPath, "market-data", "", "Path to the market data CSV")
	cmd.Flags().StringVar(&ac.targetColumn, "target-column", domain.DefaultTargetColumn, "Market data column to predict")
	cmd.Flags().StringVar(&ac.profile, "profile", "", "Warehouse profile to load market data from")
	cmd.Flags().StringVar(&ac.query, "query", "", "Market data query to run against --profile")
	cmd.Flags().BoolVar(&ac.persist, "persist", false, "Render and store the report through the configured sink")

	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("market-area")
	_ = cmd.MarkFlagRequired("investment")
	_ = cmd.MarkFlagRequired("competitors")
	_ = cmd.MarkFlagRequired("balance-sheet")
	cmd.MarkFlagsRequiredTogether("profile", "query")
	cmd.MarkFlagsMutuallyExclusive("market-data", "profile")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	req, err := ac.request()
	if err != nil {
		return err
	}

	svc, release, err := ac.services(ctx)
	if err != nil {
		return err
	}
	defer release()

	q := MarketQuery{Profile: ac.profile, Query: ac.query, Target: ac.targetColumn}
	if q.Profile == "" && ac.marketDataPath == "" {
		q = svc.MarketQuery
	}
	if q.Profile != "" {
		if svc.Tables == nil {
			return fmt.Errorf("no warehouse profiles configured for profile %q", q.Profile)
		}
		if req.MarketData, err = svc.Tables.LoadTable(ctx, q.Profile, q.Query, q.Target); err != nil {
			return fmt.Errorf("failed to load market data: %w", err)
		}
		req.MarketDataText = ingest.TableText(req.MarketData, q.Target)
	}

	if !ac.persist {
		report := svc.Orchestrator.Assemble(ctx, req)
		return ac.reporter.Handle(&report, nil)
	}

	res, err := svc.Orchestrator.Build(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	return ac.reporter.Handle(&res.Report, &res.Artifact)
}

func (ac *AnalyzeCmd) request() (domain.AnalysisRequest, error) {
	req := domain.AnalysisRequest{
		Idea:               ac.description,
		ProductDescription: ac.productDescription,
		MarketArea:         ac.marketArea,
		DiscountRate:       ac.discountRate,
		InvestmentAmount:   ac.investmentAmount,
	}

	var err error
	if req.CashFlows, err = ingest.CashFlows(ac.cashFlows); err != nil {
		return req, err
	}

	data, err := os.ReadFile(ac.competitorsPath)
	if err != nil {
		return req, fmt.Errorf("failed to read competitor data: %w", err)
	}
	if req.CompetitorData, err = ingest.Text(ac.competitorsPath, data); err != nil {
		return req, err
	}

	data, err = os.ReadFile(ac.balanceSheetPath)
	if err != nil {
		return req, fmt.Errorf("failed to read balance sheet: %w", err)
	}
	if req.BalanceSheet, req.BalanceSheetText, err = ingest.BalanceSheet(ac.balanceSheetPath, data); err != nil {
		return req, err
	}

	if ac.marketDataPath != "" {
		data, err = os.ReadFile(ac.marketDataPath)
		if err != nil {
			return req, fmt.Errorf("failed to read market data: %w", err)
		}
		if req.MarketData, req.MarketDataText, err = ingest.MarketData(ac.marketDataPath, data, ac.targetColumn); err != nil {
			return req, err
		}
	}
	return req, nil
}
