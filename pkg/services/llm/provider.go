// Package llm is the text-generation collaborator of the pipeline. Every backend
// satisfies Generator and reports any failure (network, rate limit, malformed or
// empty response) wrapped in domain.ErrGeneration.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/viability/pkg/models/domain"
)

const (
	// AnalystRole is the system role of every analysis prompt.
	AnalystRole = "You are an expert investment analyst."

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

type Request struct {
	SystemRole string
	UserPrompt string
	// Temperature is nil when the caller leaves it to the backend default.
	// Zero is a valid, deterministic setting.
	Temperature *float64
	MaxTokens   int
}

// Temperature returns a pointer to v for Request.Temperature.
func Temperature(v float64) *float64 {
	return &v
}

// Defaults fill the sampling settings a request leaves unset.
type Defaults struct {
	Temperature float64
	MaxTokens   int
}

type Response struct {
	Text string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (Response, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

func withDefaults(req Request) Request {
	return Defaults{Temperature: DefaultTemperature, MaxTokens: DefaultMaxTokens}.apply(req)
}

func (d Defaults) apply(req Request) Request {
	if req.SystemRole == "" {
		req.SystemRole = AnalystRole
	}
	if req.Temperature == nil {
		req.Temperature = Temperature(d.Temperature)
	}
	if req.MaxTokens <= 0 && d.MaxTokens > 0 {
		req.MaxTokens = d.MaxTokens
	}
	return req
}

// WithDefaults fills unset request settings from d before calling next.
func WithDefaults(next Generator, d Defaults) Generator {
	return GeneratorFunc(func(ctx context.Context, req Request) (Response, error) {
		return next.Generate(ctx, d.apply(req))
	})
}

func generationError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrGeneration, provider, err)
}

func responseText(provider, text string) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{}, fmt.Errorf("%w: %s: empty response", domain.ErrGeneration, provider)
	}
	return Response{Text: text}, nil
}
