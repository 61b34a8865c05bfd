package app

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/viability/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Provider:          "openai",
			APIKey:            "test",
			MaxTokens:         2000,
			Timeout:           time.Second,
			RequestsPerSecond: 1,
		},
		Pipeline: config.PipelineConfig{
			StageTimeout: time.Second,
			Horizon:      5,
			Parallel:     true,
			TestFraction: 0.2,
			Seed:         42,
			Summary:      true,
		},
		Sink: config.SinkConfig{
			Kind:   "filesystem",
			Format: "markdown",
			Dir:    t.TempDir(),
		},
		Catalog: config.CatalogConfig{Driver: "duckdb", DSN: ":memory:"},
	}
}

func TestNew_WiresPipeline(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Orchestrator)
	assert.NotNil(t, a.Validator)

	reports, err := a.Catalog.List(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, reports)

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_UnknownCatalogDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Catalog.Driver = "sqlite"

	_, err := New(context.Background(), cfg, zerolog.Nop())

	assert.ErrorContains(t, err, "unsupported catalog driver")
}

func TestNew_MissingPromptFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pipeline.PromptsPath = "/does/not/exist.yaml"

	_, err := New(context.Background(), cfg, zerolog.Nop())

	assert.ErrorContains(t, err, "prompt catalog")
}

func TestClose_Idempotent(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, a.Close())
	assert.NoError(t, a.Close())
}
