// Package agents implements the eight pipeline stage handlers.
package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/costs"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Agent is one pipeline stage handler. Run mutates the state it is given;
// the pipeline task is the only caller, so no locking happens here.
type Agent interface {
	Name() string
	Run(ctx context.Context, state *models.PipelineState) error
}

// Deps bundles the collaborators shared by the stage handlers
type Deps struct {
	Config     *common.Config
	LLM        interfaces.LLMService
	Search     interfaces.SearchService
	Scraper    interfaces.PageScraper
	ATSClients []interfaces.ATSClient
	PDF        interfaces.PDFExtractor
	Mail       interfaces.MailSender
	Tracker    *costs.Tracker
	Tracer     interfaces.Tracer
	Logger     arbor.ILogger
}

// BaseAgent carries the shared collaborators and helpers for one stage
type BaseAgent struct {
	name string
	deps Deps
}

// NewBaseAgent embeds the dependency bundle under a stage name
func NewBaseAgent(name string, deps Deps) BaseAgent {
	return BaseAgent{name: name, deps: deps}
}

// Name returns the stage name
func (a *BaseAgent) Name() string {
	return a.name
}

// CallLLM performs a structured completion, opens a child span, and feeds
// usage into the cost tracker. A CostLimitExceededError from the tracker
// propagates to the pipeline, which converts it to a partial run.
func (a *BaseAgent) CallLLM(ctx context.Context, state *models.PipelineState, req interfaces.CompletionRequest, out any) error {
	span := a.deps.Tracer.StartSpan(fmt.Sprintf("llm.%s", a.name))
	start := time.Now()

	usage, err := a.deps.LLM.CompleteStructured(ctx, req, out)

	span.SetAttr("llm.model", usage.Model)
	span.SetAttr("llm.input_tokens", usage.InputTokens)
	span.SetAttr("llm.output_tokens", usage.OutputTokens)
	span.SetAttr("llm.agent", a.name)
	span.End()

	// Usage is charged even when the call ultimately failed
	if trackErr := a.deps.Tracker.Record(state, usage); trackErr != nil {
		return trackErr
	}
	if err != nil {
		return err
	}

	a.deps.Logger.Debug().
		Str("agent", a.name).
		Str("model", usage.Model).
		Int("input_tokens", usage.InputTokens).
		Int("output_tokens", usage.OutputTokens).
		Dur("duration", time.Since(start)).
		Msg("LLM call complete")
	return nil
}

// RecordError appends a non-fatal error record to the state
func (a *BaseAgent) RecordError(state *models.PipelineState, err error, companyName, jobID string) {
	state.RecordError(a.name, err, companyName, jobID, false)
	a.deps.Logger.Error().
		Str("agent", a.name).
		Str("company", companyName).
		Err(err).
		Msg("Stage error recorded")
}

// LogStart emits the stage start event
func (a *BaseAgent) LogStart() time.Time {
	a.deps.Logger.Info().Str("agent", a.name).Msg("Agent start")
	return time.Now()
}

// LogEnd emits the stage end event with duration
func (a *BaseAgent) LogEnd(start time.Time) {
	a.deps.Logger.Info().
		Str("agent", a.name).
		Dur("duration", time.Since(start)).
		Msg("Agent end")
}

// joinOr joins values with ", " or returns the fallback when empty
func joinOr(values []string, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
