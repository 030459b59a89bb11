package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/venari/internal/models"
)

// NotifierAgent emails the run summary. Dry runs and missing SMTP
// configuration skip delivery without failing the pipeline.
type NotifierAgent struct {
	BaseAgent
}

// NewNotifierAgent creates the notify stage handler
func NewNotifierAgent(deps Deps) *NotifierAgent {
	return &NotifierAgent{BaseAgent: NewBaseAgent(models.StepNotify, deps)}
}

// Run sends the summary email when configured and not a dry run
func (a *NotifierAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	if state.Config.DryRun {
		a.deps.Logger.Info().Msg("Dry run, skipping notification email")
		a.LogEnd(start)
		return nil
	}
	if a.deps.Mail == nil || !a.deps.Mail.Configured() {
		a.deps.Logger.Info().Msg("SMTP not configured, skipping notification email")
		a.LogEnd(start)
		return nil
	}

	subject := fmt.Sprintf("Job search results: %d matches (%s)", len(state.ScoredJobs), state.Config.RunID)
	body := buildSummaryBody(state)

	if err := a.deps.Mail.Send(ctx, subject, body); err != nil {
		a.RecordError(state, err, "", "")
		a.LogEnd(start)
		return nil
	}

	if state.RunResult != nil {
		state.RunResult.EmailSent = true
	}

	a.LogEnd(start)
	return nil
}

// buildSummaryBody renders the plain-text run summary
func buildSummaryBody(state *models.PipelineState) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s completed.\n\n", state.Config.RunID)
	fmt.Fprintf(&b, "Companies attempted: %d\n", len(state.Companies))
	fmt.Fprintf(&b, "Jobs scraped: %d\n", len(state.RawJobs))
	fmt.Fprintf(&b, "Jobs scored: %d\n", len(state.ScoredJobs))
	fmt.Fprintf(&b, "Total tokens: %d\n", state.TotalTokens)
	fmt.Fprintf(&b, "Estimated cost: $%.4f\n\n", state.TotalCostUSD)

	if len(state.ScoredJobs) > 0 {
		b.WriteString("Top matches:\n")
		limit := len(state.ScoredJobs)
		if limit > 10 {
			limit = 10
		}
		for _, sj := range state.ScoredJobs[:limit] {
			fmt.Fprintf(&b, "%2d. [%3d] %s - %s\n    %s\n",
				sj.Rank, sj.FitReport.Score, sj.Job.CompanyName, sj.Job.Title, sj.Job.ApplyURL)
		}
	}

	if len(state.Errors) > 0 {
		fmt.Fprintf(&b, "\nErrors encountered: %d\n", len(state.Errors))
	}
	return b.String()
}
