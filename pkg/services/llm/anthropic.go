package llm

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

const defaultClaudeModel = "claude-sonnet-4-20250514"

type AnthropicGenerator struct {
	client  anthropic.Client
	model   string
	timeout time.Duration
}

func NewAnthropicGenerator(apiKey, model string, timeout time.Duration) *AnthropicGenerator {
	if model == "" {
		model = defaultClaudeModel
	}
	return &AnthropicGenerator{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		timeout: timeout,
	}
}

func (g *AnthropicGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	req = withDefaults(req)
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserPrompt)),
		},
		System:      []anthropic.TextBlockParam{{Text: req.SystemRole}},
		Temperature: anthropic.Float(*req.Temperature),
	}

	start := time.Now()
	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("model", g.model).Msg("claude completion failed")
		return Response{}, generationError("anthropic", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("model", g.model).
		Int("response_length", text.Len()).
		Dur("duration", time.Since(start)).
		Msg("claude completion finished")

	return responseText("anthropic", text.String())
}
