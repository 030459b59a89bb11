package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() *PipelineState {
	state := NewPipelineState(RunConfig{
		RunID:           "run_test",
		ResumePath:      "/tmp/resume.pdf",
		PreferencesText: "remote ML roles",
		CompanyLimit:    3,
	})
	state.Profile = &CandidateProfile{
		Name:              "Jane Doe",
		Email:             "jane@example.com",
		YearsOfExperience: 5,
		Skills:            []Skill{{Name: "Python"}, {Name: "Go"}},
		RawText:           "raw resume",
		ContentHash:       "abc",
		ParsedAt:          time.Now().UTC().Truncate(time.Second),
	}
	state.Preferences = &SearchPreferences{
		RemotePreference:  RemotePrefRemote,
		TargetTitles:      []string{"ML Engineer"},
		ExcludedCompanies: []string{"BigCo"},
		Currency:          "USD",
		RawText:           "remote ML roles",
	}
	state.Companies = []Company{{
		ID:   "c1",
		Name: "Acme",
		CareerPage: CareerPage{
			URL:            "https://boards.greenhouse.io/acme",
			ATSType:        ATSGreenhouse,
			ScrapeStrategy: StrategyAPI,
		},
		Tier: TierStartup,
	}}
	state.RawJobs = []RawJob{{
		ID: "r1", CompanyID: "c1", CompanyName: "Acme",
		RawJSON:          []byte(`{"title":"ML Engineer"}`),
		SourceURL:        "https://boards.greenhouse.io/acme",
		ScrapeStrategy:   StrategyAPI,
		SourceConfidence: 0.95,
		ScrapedAt:        time.Now().UTC().Truncate(time.Second),
	}}
	state.NormalizedJobs = []NormalizedJob{{
		ID: "n1", RawJobID: "r1", CompanyID: "c1", CompanyName: "Acme",
		Title: "ML Engineer", Description: "Build models",
		ApplyURL:    "https://boards.greenhouse.io/acme/1",
		RemoteType:  RemoteRemote,
		ContentHash: ComputeContentHash("Acme", "ML Engineer", "Build models"),
		ProcessedAt: time.Now().UTC().Truncate(time.Second),
	}}
	state.ScoredJobs = []ScoredJob{{
		Job: state.NormalizedJobs[0],
		FitReport: FitReport{
			Score:          85,
			Summary:        "great fit",
			Recommendation: RecommendGoodMatch,
			Confidence:     0.9,
		},
		Rank: 1,
	}}
	state.TotalTokens = 1234
	state.TotalCostUSD = 0.42
	state.AttemptedCompanyNames["Acme"] = true
	state.DiscoveryIteration = 1
	return state
}

func TestCompletedStepsInference(t *testing.T) {
	state := NewPipelineState(RunConfig{RunID: "r"})
	assert.Empty(t, state.CompletedSteps())

	state.Profile = &CandidateProfile{Name: "x"}
	assert.Equal(t, []string{StepParseResume}, state.CompletedSteps())

	state.Preferences = &SearchPreferences{}
	state.Companies = []Company{{ID: "c"}}
	assert.ElementsMatch(t,
		[]string{StepParseResume, StepParsePrefs, StepFindCompanies},
		state.CompletedSteps())

	assert.True(t, state.StepCompleted(StepParsePrefs))
	assert.False(t, state.StepCompleted(StepScoreJobs))

	state.ScoredJobs = []ScoredJob{{Rank: 1}}
	assert.True(t, state.StepCompleted(StepScoreJobs))

	state.RunResult = &RunResult{RunID: "r", Status: RunSuccess}
	assert.True(t, state.StepCompleted(StepAggregate))
	assert.False(t, state.StepCompleted(StepNotify))

	state.RunResult.EmailSent = true
	assert.True(t, state.StepCompleted(StepNotify))
}

func TestCheckpointRoundTrip(t *testing.T) {
	state := sampleState()

	cp, err := state.ToCheckpoint(StepScoreJobs)
	require.NoError(t, err)
	assert.Equal(t, "run_test", cp.RunID)
	assert.Equal(t, StepScoreJobs, cp.CompletedStep)

	restored, err := StateFromCheckpoint(cp)
	require.NoError(t, err)

	assert.Equal(t, state.Config, restored.Config)
	assert.Equal(t, state.Profile, restored.Profile)
	assert.Equal(t, state.Preferences, restored.Preferences)
	assert.Equal(t, state.Companies, restored.Companies)
	assert.Equal(t, state.RawJobs, restored.RawJobs)
	assert.Equal(t, state.NormalizedJobs, restored.NormalizedJobs)
	assert.Equal(t, state.ScoredJobs, restored.ScoredJobs)
	assert.Equal(t, state.TotalTokens, restored.TotalTokens)
	assert.Equal(t, state.TotalCostUSD, restored.TotalCostUSD)
	assert.Equal(t, state.AttemptedCompanyNames, restored.AttemptedCompanyNames)
	assert.Equal(t, state.DiscoveryIteration, restored.DiscoveryIteration)

	// Restored state must recognize the same completed steps
	assert.Subset(t, restored.CompletedSteps(), state.CompletedSteps())
}

func TestStateFromCheckpoint_Invalid(t *testing.T) {
	_, err := StateFromCheckpoint(&Checkpoint{StateSnapshot: []byte("{not json")})
	var cpErr *CheckpointError
	assert.True(t, errors.As(err, &cpErr))

	_, err = StateFromCheckpoint(&Checkpoint{StateSnapshot: []byte(`{"config":{}}`)})
	assert.True(t, errors.As(err, &cpErr), "missing run id must be rejected")
}

func TestRecordError(t *testing.T) {
	state := NewPipelineState(RunConfig{RunID: "r"})
	state.RecordError("scrape_jobs", errors.New("boom"), "Acme", "j1", false)

	require.Len(t, state.Errors, 1)
	errRecord := state.Errors[0]
	assert.Equal(t, "scrape_jobs", errRecord.AgentName)
	assert.Equal(t, "boom", errRecord.ErrorMessage)
	assert.Equal(t, "Acme", errRecord.CompanyName)
	assert.False(t, errRecord.IsFatal)
	assert.False(t, errRecord.Timestamp.IsZero())
}

func TestExcludedCompanySet(t *testing.T) {
	state := NewPipelineState(RunConfig{RunID: "r"})
	state.Preferences = &SearchPreferences{ExcludedCompanies: []string{"BigCo"}}
	state.AttemptedCompanyNames["Acme"] = true

	excluded := state.ExcludedCompanySet()
	assert.True(t, excluded["BigCo"])
	assert.True(t, excluded["Acme"])
	assert.Len(t, excluded, 2)
}

func TestBuildResult(t *testing.T) {
	state := sampleState()
	result := state.BuildResult(RunPartial, 2*time.Second)

	assert.Equal(t, RunPartial, result.Status)
	assert.Equal(t, 1, result.CompaniesAttempted)
	assert.Equal(t, 1, result.CompaniesSucceeded)
	assert.Equal(t, 1, result.JobsScraped)
	assert.Equal(t, 1, result.JobsScored)
	assert.Equal(t, 1234, result.TotalTokensUsed)
	assert.InDelta(t, 0.42, result.EstimatedCostUSD, 1e-9)
	assert.InDelta(t, 2.0, result.DurationSeconds, 0.01)
}
