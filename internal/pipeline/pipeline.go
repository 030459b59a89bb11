// Package pipeline implements the staged orchestrator with checkpoint-based
// crash recovery and the adaptive discovery loop.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/agents"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Pipeline executes the fixed stage sequence with per-stage timeouts,
// checkpointing after each completed stage.
type Pipeline struct {
	config *common.Config
	steps  []agents.Agent
	store  *CheckpointStore
	tracer interfaces.Tracer
	logger arbor.ILogger
}

// New builds the staged pipeline with its eight stage handlers
func New(config *common.Config, deps agents.Deps) *Pipeline {
	return &Pipeline{
		config: config,
		steps: []agents.Agent{
			agents.NewResumeParserAgent(deps),
			agents.NewPrefsParserAgent(deps),
			agents.NewCompanyFinderAgent(deps),
			agents.NewJobsScraperAgent(deps),
			agents.NewJobProcessorAgent(deps),
			agents.NewJobsScorerAgent(deps),
			agents.NewAggregatorAgent(deps),
			agents.NewNotifierAgent(deps),
		},
		store:  NewCheckpointStore(config.Checkpoint.Dir, deps.Logger),
		tracer: deps.Tracer,
		logger: deps.Logger,
	}
}

// Run executes the full stage sequence for one run config
func (p *Pipeline) Run(ctx context.Context, runConfig models.RunConfig) (*models.RunResult, error) {
	start := time.Now()

	state, err := p.loadOrCreateState(runConfig)
	if err != nil {
		// Corrupt checkpoint is fatal
		return models.NewPipelineState(runConfig).BuildResult(models.RunFailed, time.Since(start)), err
	}

	p.logger.Info().Str("run_id", runConfig.RunID).Msg("Pipeline start")

	rootSpan := p.tracer.StartSpan("pipeline.run")
	rootSpan.SetAttr("pipeline.run_id", runConfig.RunID)
	defer rootSpan.End()

	for _, step := range p.steps {
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

// runStep executes one stage under the per-stage timeout, snapshots state
// on success and classifies failures. A non-nil return is terminal.
func (p *Pipeline) runStep(ctx context.Context, step agents.Agent, state *models.PipelineState, pipelineStart time.Time) *models.RunResult {
	if state.StepCompleted(step.Name()) {
		p.logger.Info().Str("step", step.Name()).Msg("Step skipped")
		return nil
	}

	err := p.executeWithTimeout(ctx, step, state)
	if err == nil {
		if p.config.Checkpoint.Enabled {
			if saveErr := p.saveCheckpoint(state, step.Name()); saveErr != nil {
				p.logger.Error().Err(saveErr).Str("step", step.Name()).Msg("Checkpoint save failed")
				duration := time.Since(pipelineStart)
				p.logCostSummary(state, duration)
				return state.BuildResult(models.RunFailed, duration)
			}
		}
		return nil
	}

	duration := time.Since(pipelineStart)

	var costErr *models.CostLimitExceededError
	if errors.As(err, &costErr) {
		p.logger.Error().Err(err).Msg("Cost limit exceeded")
		p.logCostSummary(state, duration)
		return state.BuildResult(models.RunPartial, duration)
	}

	var fatalErr *models.FatalAgentError
	if errors.As(err, &fatalErr) {
		p.logger.Error().Str("step", step.Name()).Err(err).Msg("Fatal agent error")
		state.RecordError(step.Name(), err, "", "", true)
		p.logCostSummary(state, duration)
		return state.BuildResult(models.RunFailed, duration)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		p.logger.Error().
			Str("step", step.Name()).
			Int("timeout_seconds", p.config.Pipeline.AgentTimeoutSeconds).
			Msg("Agent timeout")
		p.logCostSummary(state, duration)
		return state.BuildResult(models.RunFailed, duration)
	}

	// Anything else a stage lets escape is unrecoverable
	p.logger.Error().Str("step", step.Name()).Err(err).Msg("Unhandled stage error")
	state.RecordError(step.Name(), err, "", "", true)
	p.logCostSummary(state, duration)
	return state.BuildResult(models.RunFailed, duration)
}

// executeWithTimeout runs the stage handler under agent_timeout_seconds
func (p *Pipeline) executeWithTimeout(ctx context.Context, step agents.Agent, state *models.PipelineState) error {
	timeout := time.Duration(p.config.Pipeline.AgentTimeoutSeconds) * time.Second
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- step.Run(stageCtx, state)
	}()

	select {
	case err := <-done:
		return err
	case <-stageCtx.Done():
		// In-flight work inside the stage aborts via stageCtx; the stage
		// is simply not resumed.
		return stageCtx.Err()
	}
}

// saveCheckpoint snapshots the state after a completed stage
func (p *Pipeline) saveCheckpoint(state *models.PipelineState, stepName string) error {
	cp, err := state.ToCheckpoint(stepName)
	if err != nil {
		return err
	}
	_, err = p.store.Save(cp)
	return err
}

// loadOrCreateState resumes from the latest checkpoint when enabled,
// otherwise starts fresh
func (p *Pipeline) loadOrCreateState(runConfig models.RunConfig) (*models.PipelineState, error) {
	if p.config.Checkpoint.Enabled {
		cp, err := p.store.LoadLatest(runConfig.RunID)
		if err != nil {
			return nil, err
		}
		if cp != nil {
			p.logger.Info().Str("step", cp.CompletedStep).Msg("Resuming from checkpoint")
			return models.StateFromCheckpoint(cp)
		}
	}
	return models.NewPipelineState(runConfig), nil
}

// logCostSummary emits the structured cost and performance summary
func (p *Pipeline) logCostSummary(state *models.PipelineState, duration time.Duration) {
	p.logger.Info().
		Int("total_tokens", state.TotalTokens).
		Float64("total_cost_usd", state.TotalCostUSD).
		Dur("duration", duration).
		Int("jobs_scored", len(state.ScoredJobs)).
		Int("errors", len(state.Errors)).
		Msg("Pipeline summary")
}
