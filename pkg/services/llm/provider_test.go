package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithDefaults(t *testing.T) {
	configured := Defaults{Temperature: 0.2, MaxTokens: 800}

	tests := []struct {
		name            string
		req             Request
		wantTemperature float64
		wantMaxTokens   int
	}{
		{name: "unset fields take configured defaults", req: Request{}, wantTemperature: 0.2, wantMaxTokens: 800},
		{name: "explicit zero temperature is kept", req: Request{Temperature: Temperature(0)}, wantTemperature: 0, wantMaxTokens: 800},
		{name: "prompt settings win", req: Request{Temperature: Temperature(0.9), MaxTokens: 50}, wantTemperature: 0.9, wantMaxTokens: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen Request
			next := GeneratorFunc(func(ctx context.Context, req Request) (Response, error) {
				seen = req
				return Response{Text: "ok"}, nil
			})

			_, err := WithDefaults(next, configured).Generate(context.Background(), tt.req)

			require.NoError(t, err)
			require.NotNil(t, seen.Temperature)
			assert.Equal(t, tt.wantTemperature, *seen.Temperature)
			assert.Equal(t, tt.wantMaxTokens, seen.MaxTokens)
			assert.Equal(t, AnalystRole, seen.SystemRole)
		})
	}
}

func TestWithDefaults_BackendFallback(t *testing.T) {
	req := withDefaults(Request{Temperature: Temperature(0)})

	assert.Equal(t, 0.0, *req.Temperature)
	assert.Equal(t, DefaultMaxTokens, req.MaxTokens)
}
