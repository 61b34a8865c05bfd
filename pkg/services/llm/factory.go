package llm

import (
	"context"
	"fmt"

	"github.com/de-tools/viability/pkg/config"
	"github.com/rs/zerolog"
)

// NewGenerator builds the configured backend wrapped in a rate limiter.
func NewGenerator(ctx context.Context, cfg config.LLMConfig, logger zerolog.Logger) (Generator, error) {
	var gen Generator
	switch cfg.Provider {
	case "anthropic":
		gen = NewAnthropicGenerator(cfg.APIKey, cfg.Model, cfg.Timeout)
	case "gemini":
		g, err := NewGeminiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		gen = g
	case "openai":
		gen = NewOpenAIGenerator(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, logger)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %q", cfg.Provider)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Float64("requests_per_second", cfg.RequestsPerSecond).
		Float64("default_temperature", cfg.Temperature).
		Int("default_max_tokens", cfg.MaxTokens).
		Msg("text generation backend initialized")

	gen = WithDefaults(gen, Defaults{Temperature: cfg.Temperature, MaxTokens: cfg.MaxTokens})
	return NewRateLimited(gen, cfg.RequestsPerSecond), nil
}
