package pipeline

import (
	"context"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
	"github.com/de-tools/viability/pkg/services/llm"
	"github.com/de-tools/viability/pkg/services/prompts"
)

// Summarizer writes the executive summary over the assembled sections.
type Summarizer struct {
	prompt    *prompts.Prompt
	generator llm.Generator
}

func NewSummarizer(catalog *prompts.Catalog, generator llm.Generator) *Summarizer {
	return &Summarizer{prompt: catalog.MustGet(prompts.ExecutiveSummary), generator: generator}
}

func (s *Summarizer) Summarize(ctx context.Context, req domain.AnalysisRequest, sections []domain.Section) (string, error) {
	request, err := s.prompt.Render(struct {
		Idea               string
		ProductDescription string
		MarketArea         string
		InvestmentAmount   float64
		DiscountRate       float64
		Sections           []domain.Section
	}{
		Idea:               req.Idea,
		ProductDescription: req.ProductDescription,
		MarketArea:         req.MarketArea,
		InvestmentAmount:   req.InvestmentAmount,
		DiscountRate:       req.DiscountRate,
		Sections:           sections,
	})
	if err != nil {
		return "", err
	}
	resp, err := s.generator.Generate(ctx, request)
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// Recommendations collects the bullet lines ("- " or "* ") of a summary.
func Recommendations(summary string) []string {
	var out []string
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		for _, bullet := range []string{"- ", "* "} {
			if strings.HasPrefix(line, bullet) {
				if rec := strings.TrimSpace(strings.TrimPrefix(line, bullet)); rec != "" {
					out = append(out, rec)
				}
				break
			}
		}
	}
	return out
}
