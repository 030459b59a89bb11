package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, 300, config.Pipeline.AgentTimeoutSeconds)
	assert.Equal(t, 10, config.Pipeline.MinRecommendedJobs)
	assert.Equal(t, 3, config.Pipeline.MaxDiscoveryIterations)
	assert.InDelta(t, 5.0, config.Costs.MaxCostPerRunUSD, 1e-9)
	assert.InDelta(t, 2.0, config.Costs.WarnCostThresholdUSD, 1e-9)
	assert.Equal(t, 60, config.Scoring.MinScoreThreshold)
	assert.Equal(t, 5, config.Scraper.MaxConcurrent)
	assert.True(t, config.Checkpoint.Enabled)
	assert.Equal(t, LLMProviderClaude, config.LLM.Provider)

	require.NoError(t, Validate(config))
}

func TestLoadFromFiles_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "venari.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[pipeline]
min_recommended_jobs = 4
max_discovery_iterations = 2

[costs]
max_cost_per_run_usd = 1.5
warn_cost_threshold_usd = 0.5

[llm]
provider = "gemini"
`), 0644))

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.Equal(t, 4, config.Pipeline.MinRecommendedJobs)
	assert.Equal(t, 2, config.Pipeline.MaxDiscoveryIterations)
	assert.InDelta(t, 1.5, config.Costs.MaxCostPerRunUSD, 1e-9)
	assert.Equal(t, LLMProviderGemini, config.LLM.Provider)
	// Untouched values keep their defaults
	assert.Equal(t, 300, config.Pipeline.AgentTimeoutSeconds)
}

func TestLoadFromFiles_MissingFile(t *testing.T) {
	_, err := LoadFromFiles(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate_RejectsInvertedCostThresholds(t *testing.T) {
	config := DefaultConfig()
	config.Costs.WarnCostThresholdUSD = 10.0

	err := Validate(config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "warn_cost_threshold_usd")
}

func TestValidate_RejectsBadProvider(t *testing.T) {
	config := DefaultConfig()
	config.LLM.Provider = "openai"
	assert.Error(t, Validate(config))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VENARI_MAX_COST_PER_RUN_USD", "9.5")
	t.Setenv("VENARI_MAX_CONCURRENT_SCRAPERS", "2")
	t.Setenv("VENARI_LLM_PROVIDER", "claude")

	config := DefaultConfig()
	applyEnvOverrides(config)

	assert.InDelta(t, 9.5, config.Costs.MaxCostPerRunUSD, 1e-9)
	assert.Equal(t, 2, config.Scraper.MaxConcurrent)
	assert.Equal(t, LLMProviderClaude, config.LLM.Provider)
}
