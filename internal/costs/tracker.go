package costs

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// Tracker accumulates token usage and cost onto the pipeline state and
// enforces the run spend guardrails. Mutations happen only from the
// pipeline task, so the tracker holds no locks.
type Tracker struct {
	maxCostUSD  float64
	warnCostUSD float64
	warned      bool
	logger      arbor.ILogger
}

// NewTracker creates a cost tracker with hard and soft thresholds
func NewTracker(maxCostUSD, warnCostUSD float64, logger arbor.ILogger) *Tracker {
	return &Tracker{
		maxCostUSD:  maxCostUSD,
		warnCostUSD: warnCostUSD,
		logger:      logger,
	}
}

// Record adds a call's usage to the state totals. Returns
// CostLimitExceededError once the accumulated cost crosses the hard limit;
// the call that crossed the limit is still counted.
func (t *Tracker) Record(state *models.PipelineState, usage interfaces.TokenUsage) error {
	state.TotalTokens += usage.TotalTokens()

	cost := CalculateCost(usage.Model, usage.InputTokens, usage.OutputTokens)
	state.TotalCostUSD += cost

	if state.TotalCostUSD > t.maxCostUSD {
		return &models.CostLimitExceededError{
			CostUSD:  state.TotalCostUSD,
			LimitUSD: t.maxCostUSD,
		}
	}

	if state.TotalCostUSD > t.warnCostUSD && !t.warned {
		t.warned = true
		t.logger.Warn().
			Float64("current_cost_usd", state.TotalCostUSD).
			Float64("warn_threshold_usd", t.warnCostUSD).
			Float64("limit_usd", t.maxCostUSD).
			Msg("Run cost crossed warning threshold")
	}

	return nil
}
