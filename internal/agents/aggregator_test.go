package agents

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/models"
)

func aggregatorWithDir(t *testing.T) (*AggregatorAgent, string) {
	t.Helper()
	deps := testDeps(&fakeLLM{})
	dir := t.TempDir()
	deps.Config.Output.Dir = dir
	return NewAggregatorAgent(deps), dir
}

func TestAggregator_WritesCSVAndSummary(t *testing.T) {
	agent, dir := aggregatorWithDir(t)

	state := seededState()
	state.NormalizedJobs = normalizedJobs(2)
	state.ScoredJobs = []models.ScoredJob{
		{
			Job:       state.NormalizedJobs[0],
			FitReport: models.FitReport{Score: 85, Summary: "great", Recommendation: models.RecommendGoodMatch, Confidence: 0.9},
			Rank:      1,
		},
		{
			Job:       state.NormalizedJobs[1],
			FitReport: models.FitReport{Score: 70, Summary: "fine", Recommendation: models.RecommendStretch, Confidence: 0.7},
			Rank:      2,
		},
	}
	state.TotalTokens = 500
	state.TotalCostUSD = 0.05

	require.NoError(t, agent.Run(context.Background(), state))

	require.NotNil(t, state.RunResult)
	assert.Equal(t, models.RunSuccess, state.RunResult.Status)
	assert.Len(t, state.RunResult.OutputFiles, 2)

	// CSV holds a header plus one row per scored job
	csvFile, err := os.Open(filepath.Join(dir, "run_test_results.csv"))
	require.NoError(t, err)
	defer csvFile.Close()
	rows, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Rank", rows[0][0])
	assert.Equal(t, "1", rows[1][0])
	assert.Equal(t, "85", rows[1][1])
	assert.Equal(t, "Engineer 0", rows[1][4])

	// Summary JSON carries the run counters
	data, err := os.ReadFile(filepath.Join(dir, "run_test_summary.json"))
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal(data, &summary))
	assert.Equal(t, "run_test", summary["run_id"])
	assert.EqualValues(t, 2, summary["jobs_scored"])
	assert.EqualValues(t, 500, summary["total_tokens"])
}

func TestAggregator_EmptyScoredListIsPartial(t *testing.T) {
	agent, _ := aggregatorWithDir(t)

	state := seededState()
	require.NoError(t, agent.Run(context.Background(), state))

	require.NotNil(t, state.RunResult)
	assert.Equal(t, models.RunPartial, state.RunResult.Status)
}

func TestAggregator_RespectsRunConfigFormats(t *testing.T) {
	agent, dir := aggregatorWithDir(t)

	state := seededState()
	state.Config.OutputFormats = []string{"json"}

	require.NoError(t, agent.Run(context.Background(), state))
	_, err := os.Stat(filepath.Join(dir, "run_test_results.csv"))
	assert.True(t, os.IsNotExist(err), "csv must not be written when only json is requested")
	_, err = os.Stat(filepath.Join(dir, "run_test_summary.json"))
	assert.NoError(t, err)
}
