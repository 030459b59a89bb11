package agents

import (
	"context"
	"fmt"

	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/prompts"
)

// prefsSchema describes the expected JSON shape for the preferences call
const prefsSchema = `{
  "preferred_locations": ["string"], "remote_preference": "onsite|hybrid|remote|any",
  "target_titles": ["string"], "target_seniority": ["string"], "excluded_titles": ["string"],
  "org_types": ["string"], "company_sizes": ["1-10|11-50|51-200|201-500|501-1000|1001+"],
  "preferred_industries": ["string"], "excluded_companies": ["string"],
  "preferred_companies": ["string"], "min_salary": 0, "max_salary": 0, "currency": "USD"
}`

// PrefsParserAgent parses freeform preferences text into SearchPreferences
type PrefsParserAgent struct {
	BaseAgent
}

// NewPrefsParserAgent creates the parse_prefs stage handler
func NewPrefsParserAgent(deps Deps) *PrefsParserAgent {
	return &PrefsParserAgent{BaseAgent: NewBaseAgent(models.StepParsePrefs, deps)}
}

// Run parses the run config's preferences text
func (a *PrefsParserAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	var prefs models.SearchPreferences
	err := a.CallLLM(ctx, state, interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: prompts.PrefsParserSystem},
			{Role: "user", Content: fmt.Sprintf(prompts.PrefsParserUser, state.Config.PreferencesText)},
		},
		Model:  a.deps.LLM.FastModel(),
		Schema: prefsSchema,
	}, &prefs)
	if err != nil {
		return err
	}

	if prefs.RemotePreference == "" {
		prefs.RemotePreference = models.RemotePrefAny
	}
	if prefs.Currency == "" {
		prefs.Currency = "USD"
	}
	prefs.RawText = state.Config.PreferencesText

	if err := prefs.Validate(); err != nil {
		return err
	}

	state.Preferences = &prefs

	a.deps.Logger.Info().
		Strs("target_titles", prefs.TargetTitles).
		Strs("locations", prefs.PreferredLocations).
		Msg("Preferences parsed")
	a.LogEnd(start)
	return nil
}
