package stages

import (
	"context"
	"fmt"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
)

// Binding selects the request fields a prompt template reads.
type Binding func(req domain.AnalysisRequest) any

// PromptStage renders one template and returns the generated text verbatim.
// The narrative sections are all PromptStages that differ only in prompt and binding.
type PromptStage struct {
	name      string
	prompt    *prompts.Prompt
	bind      Binding
	generator llm.Generator
}

func NewPromptStage(name string, prompt *prompts.Prompt, generator llm.Generator, bind Binding) *PromptStage {
	return &PromptStage{name: name, prompt: prompt, bind: bind, generator: generator}
}

func (s *PromptStage) Name() string {
	return s.name
}

func (s *PromptStage) Run(ctx context.Context, req domain.AnalysisRequest) (string, error) {
	return s.generate(ctx, s.bind(req))
}

func (s *PromptStage) generate(ctx context.Context, binding any) (string, error) {
	request, err := s.prompt.Render(binding)
	if err != nil {
		return "", err
	}
	resp, err := s.generator.Generate(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%s: %w", s.name, err)
	}
	return resp.Text, nil
}

func NewMarketAnalysis(catalog *prompts.Catalog, generator llm.Generator) *PromptStage {
	return NewPromptStage(HeadingMarketAnalysis, catalog.MustGet(prompts.MarketAnalysis), generator,
		func(req domain.AnalysisRequest) any {
			return struct{ Idea string }{Idea: req.Idea}
		})
}

// NewCompetitionAnalysis compares the company's own figures, taken from its
// balance sheet, with the competitor data.
func NewCompetitionAnalysis(catalog *prompts.Catalog, generator llm.Generator) *PromptStage {
	return NewPromptStage(HeadingCompetitionAnalysis, catalog.MustGet(prompts.CompetitionAnalysis), generator,
		func(req domain.AnalysisRequest) any {
			return struct {
				FinancialData  string
				CompetitorData string
			}{
				FinancialData:  balanceSheetText(req),
				CompetitorData: req.CompetitorData,
			}
		})
}

func balanceSheetText(req domain.AnalysisRequest) string {
	if req.BalanceSheetText != "" {
		return req.BalanceSheetText
	}
	return fmt.Sprint(map[string]float64(req.BalanceSheet))
}
