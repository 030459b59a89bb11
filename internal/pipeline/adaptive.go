package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/ternarybob/venari/internal/agents"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
)

// Stage index boundaries within the fixed step sequence: setup steps run
// once, discovery steps repeat inside the loop, output steps run once.
const (
	setupEnd     = 2 // parse_resume, parse_prefs
	discoveryEnd = 6 // find_companies, scrape_jobs, process_jobs, score_jobs
)

// AdaptivePipeline wraps the discovery stages in an outer loop that reruns
// them with expanding exclusions until the minimum-result quota is met or
// the iteration budget is exhausted.
type AdaptivePipeline struct {
	*Pipeline
}

// NewAdaptive builds the adaptive pipeline
func NewAdaptive(config *common.Config, deps agents.Deps) *AdaptivePipeline {
	return &AdaptivePipeline{Pipeline: New(config, deps)}
}

// Run executes setup once, loops discovery, then runs output stages
func (p *AdaptivePipeline) Run(ctx context.Context, runConfig models.RunConfig) (*models.RunResult, error) {
	start := time.Now()

	state, err := p.loadOrCreateState(runConfig)
	if err != nil {
		return models.NewPipelineState(runConfig).BuildResult(models.RunFailed, time.Since(start)), err
	}

	p.logger.Info().Str("run_id", runConfig.RunID).Msg("Adaptive pipeline start")

	rootSpan := p.tracer.StartSpan("pipeline.run")
	rootSpan.SetAttr("pipeline.run_id", runConfig.RunID)
	rootSpan.SetAttr("pipeline.adaptive", true)
	defer rootSpan.End()

	// Phase 1: one-time setup
	for _, step := range p.steps[:setupEnd] {
		if terminal := p.runStep(ctx, step, state, start); terminal != nil {
			return terminal, nil
		}
	}

	// Phase 2: adaptive discovery loop
	if terminal := p.discoveryLoop(ctx, state, start); terminal != nil {
		return terminal, nil
	}

	// Phase 3: one-time output
	for _, step := range p.steps[discoveryEnd:] {
		if terminal := p.runStep(ctx, step, state, start); terminal != nil {
			return terminal, nil
		}
	}

	duration := time.Since(start)
	p.logCostSummary(state, duration)

	if state.RunResult != nil {
		state.RunResult.DurationSeconds = duration.Seconds()
		return state.RunResult, nil
	}
	return state.BuildResult(models.RunSuccess, duration), nil
}

// discoveryLoop reruns the discovery stages until the scored-job quota is
// met or the iteration budget runs out. A non-nil return is terminal.
func (p *AdaptivePipeline) discoveryLoop(ctx context.Context, state *models.PipelineState, pipelineStart time.Time) *models.RunResult {
	minJobs := p.config.Pipeline.MinRecommendedJobs
	maxIterations := p.config.Pipeline.MaxDiscoveryIterations

	for iteration := 0; iteration < maxIterations; iteration++ {
		state.DiscoveryIteration = iteration

		// Snapshot scored jobs before this iteration
		previous := make([]models.ScoredJob, len(state.ScoredJobs))
		copy(previous, state.ScoredJobs)
		previousHashes := make(map[string]bool, len(previous))
		for _, sj := range previous {
			previousHashes[sj.Job.ContentHash] = true
		}

		// Clear per-iteration working data; attempted_company_names is
		// cumulative and survives.
		state.Companies = nil
		state.RawJobs = nil
		state.NormalizedJobs = nil
		state.ScoredJobs = nil

		p.logger.Info().
			Int("iteration", iteration).
			Int("scored_so_far", len(previous)).
			Int("target", minJobs).
			Msg("Discovery iteration start")

		for _, step := range p.steps[setupEnd:discoveryEnd] {
			if terminal := p.runStep(ctx, step, state, pipelineStart); terminal != nil {
				// Fatal inside discovery: restore the snapshot and surface
				state.ScoredJobs = previous
				terminal.JobsScored = len(previous)
				terminal.JobsInOutput = len(previous)
				return terminal
			}
		}

		// Merge: previous jobs plus new fingerprints only, re-ranked
		newScored := make([]models.ScoredJob, 0, len(state.ScoredJobs))
		for _, sj := range state.ScoredJobs {
			if !previousHashes[sj.Job.ContentHash] {
				newScored = append(newScored, sj)
			}
		}
		merged := append(previous, newScored...)
		sort.SliceStable(merged, func(i, j int) bool {
			return merged[i].FitReport.Score > merged[j].FitReport.Score
		})
		for i := range merged {
			merged[i].Rank = i + 1
		}
		state.ScoredJobs = merged

		// Track attempted companies across iterations
		for _, company := range state.Companies {
			state.AttemptedCompanyNames[company.Name] = true
		}

		p.logger.Info().
			Int("iteration", iteration).
			Int("new_jobs", len(newScored)).
			Int("total_scored", len(state.ScoredJobs)).
			Msg("Discovery iteration end")

		if len(state.ScoredJobs) >= minJobs {
			p.logger.Info().
				Int("scored", len(state.ScoredJobs)).
				Int("target", minJobs).
				Msg("Discovery target met")
			break
		}
	}

	return nil
}
