// Package prompts holds the templated prompts of every generation call. The
// default catalog is embedded; a deployment may load its own file instead.
package prompts

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/viability/pkg/services/llm"
	"gopkg.in/yaml.v3"
)

const (
	MarketAnalysis       = "market_analysis"
	CompetitionAnalysis  = "competition_analysis"
	BalanceSheetAnalysis = "balance_sheet_analysis"
	MarketPrediction     = "market_prediction"
	PriceEstimate        = "price_estimate"
	SalesEstimate        = "sales_estimate"
	CostEstimate         = "cost_estimate"
	ExecutiveSummary     = "executive_summary"
	ValidateDescription  = "validate_description"
)

//go:embed prompts.yaml
var defaultCatalog []byte

type Prompt struct {
	ID          string  `yaml:"id"`
	System      string  `yaml:"system"`
	// Temperature and MaxTokens fall back to the generator defaults when omitted.
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	Template    string   `yaml:"template"`

	tmpl *template.Template
}

// Render executes the template against binding and returns a ready request.
// A binding missing a referenced field is an error.
func (p *Prompt) Render(binding any) (llm.Request, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, binding); err != nil {
		return llm.Request{}, fmt.Errorf("render prompt %s: %w", p.ID, err)
	}
	return llm.Request{
		SystemRole:  p.System,
		UserPrompt:  strings.TrimSpace(buf.String()),
		Temperature: p.Temperature,
		MaxTokens:   p.MaxTokens,
	}, nil
}

type Catalog struct {
	prompts map[string]*Prompt
}

func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Prompts []*Prompt `yaml:"prompts"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	c := &Catalog{prompts: make(map[string]*Prompt, len(doc.Prompts))}
	for _, p := range doc.Prompts {
		if p.ID == "" {
			return nil, fmt.Errorf("prompt ID cannot be empty")
		}
		if _, exists := c.prompts[p.ID]; exists {
			return nil, fmt.Errorf("duplicate prompt: %s", p.ID)
		}
		tmpl, err := template.New(p.ID).Option("missingkey=error").Parse(p.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", p.ID, err)
		}
		p.tmpl = tmpl
		c.prompts[p.ID] = p
	}
	return c, nil
}

func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt catalog: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Get(id string) (*Prompt, error) {
	p, ok := c.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	return p, nil
}

// MustGet is for wiring code that references the built-in IDs.
func (c *Catalog) MustGet(id string) *Prompt {
	p, err := c.Get(id)
	if err != nil {
		panic(err)
	}
	return p
}
