package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
// Rate limits (429) and server errors are retried with backoff.
type OpenAIGenerator struct {
	client  *retryablehttp.Client
	baseURL string
	apiKey  string
	model   string
}

func NewOpenAIGenerator(apiKey, baseURL, model string, timeout time.Duration, logger zerolog.Logger) *OpenAIGenerator {
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 10 * time.Second
	client.HTTPClient.Timeout = timeout
	client.Logger = leveledLogger{logger: logger}

	return &OpenAIGenerator{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (Response, error) {
	req = withDefaults(req)

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemRole},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return Response{}, generationError("openai", fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", body)
	if err != nil {
		return Response{}, generationError("openai", fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.client.Do(httpReq)
	if err != nil {
		return Response{}, generationError("openai", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close completion response body")
		}
	}(res.Body)

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return Response{}, generationError("openai", fmt.Errorf("read body: %w", err))
	}
	if res.StatusCode != http.StatusOK {
		return Response{}, generationError("openai", fmt.Errorf("status=%d body=%s", res.StatusCode, truncate(payload, 512)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return Response{}, generationError("openai", fmt.Errorf("malformed response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return Response{}, generationError("openai", fmt.Errorf("no choices"))
	}

	return responseText("openai", parsed.Choices[0].Message.Content)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(bytes.ToValidUTF8(b[:n], nil)) + "..."
}

// leveledLogger routes retryablehttp diagnostics into zerolog.
type leveledLogger struct {
	logger zerolog.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}
