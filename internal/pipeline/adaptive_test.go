package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/agents"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/observability"
)

// discoveryFixture builds the adaptive pipeline with stubbed discovery
// stages. perIteration maps iteration index to the scored jobs the scorer
// yields; companies are named "co-<iteration>-<n>".
type discoveryFixture struct {
	pipeline      *AdaptivePipeline
	finderCalls   int
	exclusionSeen []map[string]bool
}

func newDiscoveryFixture(t *testing.T, minJobs, maxIterations int, perIteration map[int][]models.ScoredJob, finderErr map[int]error) *discoveryFixture {
	t.Helper()
	config := common.DefaultConfig()
	config.Checkpoint.Enabled = false
	config.Checkpoint.Dir = t.TempDir()
	config.Pipeline.MinRecommendedJobs = minJobs
	config.Pipeline.MaxDiscoveryIterations = maxIterations
	config.Pipeline.AgentTimeoutSeconds = 5
	logger := common.GetLogger()

	f := &discoveryFixture{}

	steps := []agents.Agent{
		&stubAgent{name: models.StepParseResume, run: func(_ context.Context, s *models.PipelineState) error {
			s.Profile = &models.CandidateProfile{Name: "Jane", Email: "jane@example.com"}
			return nil
		}},
		&stubAgent{name: models.StepParsePrefs, run: func(_ context.Context, s *models.PipelineState) error {
			s.Preferences = &models.SearchPreferences{RemotePreference: models.RemotePrefAny}
			return nil
		}},
		&stubAgent{name: models.StepFindCompanies, run: func(_ context.Context, s *models.PipelineState) error {
			iteration := f.finderCalls
			f.finderCalls++
			f.exclusionSeen = append(f.exclusionSeen, s.ExcludedCompanySet())
			if err := finderErr[iteration]; err != nil {
				return err
			}
			s.Companies = []models.Company{
				{ID: fmt.Sprintf("c%d", iteration), Name: fmt.Sprintf("co-%d-0", iteration)},
				{ID: fmt.Sprintf("c%dx", iteration), Name: fmt.Sprintf("co-%d-1", iteration)},
			}
			return nil
		}},
		&stubAgent{name: models.StepScrapeJobs, run: func(_ context.Context, s *models.PipelineState) error {
			s.RawJobs = []models.RawJob{{ID: "r", CompanyID: "c", CompanyName: "co"}}
			return nil
		}},
		&stubAgent{name: models.StepProcessJobs, run: func(_ context.Context, s *models.PipelineState) error {
			s.NormalizedJobs = []models.NormalizedJob{{ID: "n", Title: "t", ContentHash: "h"}}
			return nil
		}},
		&stubAgent{name: models.StepScoreJobs, run: func(_ context.Context, s *models.PipelineState) error {
			s.ScoredJobs = perIteration[s.DiscoveryIteration]
			return nil
		}},
		&stubAgent{name: models.StepAggregate, run: func(_ context.Context, s *models.PipelineState) error {
			status := models.RunSuccess
			if len(s.ScoredJobs) == 0 {
				status = models.RunPartial
			}
			s.RunResult = s.BuildResult(status, time.Second)
			return nil
		}},
		&stubAgent{name: models.StepNotify},
	}

	f.pipeline = &AdaptivePipeline{Pipeline: &Pipeline{
		config: config,
		steps:  steps,
		store:  NewCheckpointStore(config.Checkpoint.Dir, logger),
		tracer: observability.NewNoopTracer(),
		logger: logger,
	}}
	return f
}

func scoredJob(hash string, score int) models.ScoredJob {
	return models.ScoredJob{
		Job:       models.NormalizedJob{ID: hash, Title: "Job " + hash, ContentHash: hash},
		FitReport: models.FitReport{Score: score, Recommendation: models.RecommendGoodMatch},
	}
}

func TestAdaptive_RefillsUntilQuota(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 90), scoredJob("h2", 70)},
		1: {scoredJob("h3", 85), scoredJob("h4", 65), scoredJob("h5", 95)},
	}
	f := newDiscoveryFixture(t, 4, 3, perIteration, nil)

	result, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_adaptive"})
	require.NoError(t, err)

	assert.Equal(t, models.RunSuccess, result.Status)
	assert.Equal(t, 5, result.JobsScored)
	assert.Equal(t, 2, f.finderCalls, "quota met after the second iteration")
}

func TestAdaptive_MergeDeduplicatesByFingerprint(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 90), scoredJob("h2", 70)},
		// h1 reappears in iteration 1 and must not be double counted
		1: {scoredJob("h1", 90), scoredJob("h3", 80)},
		2: {scoredJob("h4", 60)},
	}
	f := newDiscoveryFixture(t, 4, 3, perIteration, nil)

	result, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_dedup"})
	require.NoError(t, err)

	assert.Equal(t, 4, result.JobsScored)
	assert.Equal(t, 3, f.finderCalls)
}

func TestAdaptive_RanksAreMonotoneAfterMerge(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 70), scoredJob("h2", 90)},
		1: {scoredJob("h3", 80), scoredJob("h4", 85)},
	}
	f := newDiscoveryFixture(t, 4, 3, perIteration, nil)

	var finalScored []models.ScoredJob
	// Capture the merged list via the aggregate stub's BuildResult input
	f.pipeline.steps[6] = &stubAgent{name: models.StepAggregate, run: func(_ context.Context, s *models.PipelineState) error {
		finalScored = s.ScoredJobs
		s.RunResult = s.BuildResult(models.RunSuccess, time.Second)
		return nil
	}}

	_, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_ranks"})
	require.NoError(t, err)
	require.Len(t, finalScored, 4)

	for i, sj := range finalScored {
		assert.Equal(t, i+1, sj.Rank, "ranks must be a permutation of 1..N")
		if i > 0 {
			assert.GreaterOrEqual(t, finalScored[i-1].FitReport.Score, sj.FitReport.Score,
				"scores must be non-increasing by rank")
		}
	}
}

func TestAdaptive_TracksAttemptedCompaniesAcrossIterations(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 90)},
		1: {scoredJob("h2", 80)},
		2: {scoredJob("h3", 70)},
	}
	f := newDiscoveryFixture(t, 10, 3, perIteration, nil)

	_, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_excl"})
	require.NoError(t, err)

	require.Len(t, f.exclusionSeen, 3)
	assert.Empty(t, f.exclusionSeen[0], "first iteration starts with no attempted companies")
	assert.True(t, f.exclusionSeen[1]["co-0-0"], "second iteration must exclude first iteration companies")
	assert.True(t, f.exclusionSeen[1]["co-0-1"])
	assert.True(t, f.exclusionSeen[2]["co-1-0"], "exclusions accumulate")
	assert.True(t, f.exclusionSeen[2]["co-0-0"])
}

func TestAdaptive_FatalRestoresPreviousScoredJobs(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 90), scoredJob("h2", 70)},
	}
	finderErr := map[int]error{
		1: models.NewFatalAgentError("no companies found with valid career pages"),
	}
	f := newDiscoveryFixture(t, 10, 3, perIteration, finderErr)

	result, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_restore"})
	require.NoError(t, err)

	assert.Equal(t, models.RunFailed, result.Status)
	assert.Equal(t, 2, result.JobsScored, "previous iteration's scored jobs are preserved")
}

func TestAdaptive_IterationBudgetExhausted(t *testing.T) {
	perIteration := map[int][]models.ScoredJob{
		0: {scoredJob("h1", 90)},
		1: {scoredJob("h2", 80)},
		2: {scoredJob("h3", 70)},
	}
	f := newDiscoveryFixture(t, 100, 3, perIteration, nil)

	result, err := f.pipeline.Run(context.Background(), models.RunConfig{RunID: "run_budget"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.finderCalls, "loop stops at the iteration budget")
	assert.Equal(t, 3, result.JobsScored, "accumulation is monotone across iterations")
}
