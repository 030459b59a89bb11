package agents

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/prompts"
)

// scoringBatchSize is the number of jobs per LLM scoring call
const scoringBatchSize = 5

// currencySymbols maps currency codes to display symbols for prompt
// formatting. Unknown codes prefix with the code and a space.
var currencySymbols = map[string]string{
	"USD": "$",
	"INR": "₹",
	"EUR": "€",
	"GBP": "£",
	"CAD": "C$",
	"AUD": "A$",
	"SGD": "S$",
}

// currencySymbol returns the symbol for a currency code
func currencySymbol(currency string) string {
	if symbol, ok := currencySymbols[strings.ToUpper(currency)]; ok {
		return symbol
	}
	return currency + " "
}

// jobScore is one job's scoring result within a batch response
type jobScore struct {
	JobIndex       int      `json:"job_index"`
	Score          int      `json:"score"`
	SkillOverlap   []string `json:"skill_overlap"`
	SkillGaps      []string `json:"skill_gaps"`
	SeniorityMatch bool     `json:"seniority_match"`
	LocationMatch  bool     `json:"location_match"`
	OrgTypeMatch   bool     `json:"org_type_match"`
	Summary        string   `json:"summary"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
}

// batchScoreResult is the structured response of one scoring call
type batchScoreResult struct {
	Scores []jobScore `json:"scores"`
}

const batchScoreSchema = `{
  "scores": [{"job_index": 0, "score": 0, "skill_overlap": ["string"], "skill_gaps": ["string"],
    "seniority_match": true, "location_match": true, "org_type_match": true,
    "summary": "string", "recommendation": "strong_match|good_match|stretch|mismatch",
    "confidence": 0.8}]
}`

// JobsScorerAgent scores normalized jobs against the candidate profile in
// fixed-size batches, filters by threshold and assigns ranks.
type JobsScorerAgent struct {
	BaseAgent
}

// NewJobsScorerAgent creates the score_jobs stage handler
func NewJobsScorerAgent(deps Deps) *JobsScorerAgent {
	return &JobsScorerAgent{BaseAgent: NewBaseAgent(models.StepScoreJobs, deps)}
}

// Run scores all normalized jobs in batches of scoringBatchSize
func (a *JobsScorerAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	if state.Profile == nil || state.Preferences == nil {
		a.deps.Logger.Warn().Msg("Scorer missing profile or preferences, skipping")
		return nil
	}

	jobs := state.NormalizedJobs
	var scored []models.ScoredJob

	for i := 0; i < len(jobs); i += scoringBatchSize {
		end := i + scoringBatchSize
		if end > len(jobs) {
			end = len(jobs)
		}
		batch := jobs[i:end]

		batchScored, err := a.scoreBatch(ctx, state, batch)
		if err != nil {
			var costErr *models.CostLimitExceededError
			if errors.As(err, &costErr) {
				return err
			}
			a.RecordError(state, err, "", "")
			continue
		}
		scored = append(scored, batchScored...)
	}

	// Stable sort keeps insertion order for equal scores
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FitReport.Score > scored[j].FitReport.Score
	})

	threshold := a.deps.Config.Scoring.MinScoreThreshold
	filtered := make([]models.ScoredJob, 0, len(scored))
	for _, sj := range scored {
		if sj.FitReport.Score >= threshold {
			filtered = append(filtered, sj)
		}
	}
	for i := range filtered {
		filtered[i].Rank = i + 1
	}

	state.ScoredJobs = filtered

	a.deps.Logger.Info().
		Int("scored_count", len(scored)).
		Int("above_threshold", len(filtered)).
		Msg("Scoring complete")
	a.LogEnd(start)
	return nil
}

// scoreBatch scores one batch of jobs via LLM
func (a *JobsScorerAgent) scoreBatch(ctx context.Context, state *models.PipelineState, batch []models.NormalizedJob) ([]models.ScoredJob, error) {
	profile := state.Profile
	prefs := state.Preferences

	prompt := fmt.Sprintf(prompts.JobScorerUser,
		profile.Name,
		firstNonEmpty(profile.CurrentTitle, "Not specified"),
		profile.YearsOfExperience,
		firstNonEmpty(string(profile.SeniorityLevel), "Not specified"),
		joinOr(profile.SkillNames(), "Not specified"),
		joinOr(profile.Industries, "Not specified"),
		firstNonEmpty(profile.Location, "Not specified"),
		string(prefs.RemotePreference),
		joinOr(prefs.OrgTypes, "any"),
		a.formatSalaryRange(prefs),
		formatJobsBlock(batch),
	)

	var result batchScoreResult
	err := a.CallLLM(ctx, state, interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: prompts.JobScorerSystem},
			{Role: "user", Content: prompt},
		},
		Model:  a.deps.LLM.SmartModel(),
		Schema: batchScoreSchema,
	}, &result)
	if err != nil {
		return nil, err
	}

	scoredJobs := make([]models.ScoredJob, 0, len(result.Scores))
	for _, score := range result.Scores {
		// Out-of-range indexes are dropped silently
		if score.JobIndex < 0 || score.JobIndex >= len(batch) {
			continue
		}
		scoredJobs = append(scoredJobs, models.ScoredJob{
			Job: batch[score.JobIndex],
			FitReport: models.FitReport{
				Score:          clampScore(score.Score),
				SkillOverlap:   score.SkillOverlap,
				SkillGaps:      score.SkillGaps,
				SeniorityMatch: score.SeniorityMatch,
				LocationMatch:  score.LocationMatch,
				OrgTypeMatch:   score.OrgTypeMatch,
				Summary:        score.Summary,
				Recommendation: models.CoerceRecommendation(score.Recommendation),
				Confidence:     clampConfidence(score.Confidence),
			},
			ScoredAt: time.Now().UTC(),
		})
	}
	return scoredJobs, nil
}

// formatSalaryRange renders the candidate's desired range for the prompt
func (a *JobsScorerAgent) formatSalaryRange(prefs *models.SearchPreferences) string {
	currency := firstNonEmpty(prefs.Currency, "USD")
	symbol := currencySymbol(currency)
	switch {
	case prefs.MinSalary > 0 && prefs.MaxSalary > 0:
		return fmt.Sprintf("%s%d-%s%d %s", symbol, prefs.MinSalary, symbol, prefs.MaxSalary, currency)
	case prefs.MinSalary > 0:
		return fmt.Sprintf("%s%d+ %s", symbol, prefs.MinSalary, currency)
	default:
		return "Not specified"
	}
}

// formatJobsBlock renders the indexed job blocks for the scoring prompt
func formatJobsBlock(jobs []models.NormalizedJob) string {
	blocks := make([]string, 0, len(jobs))
	for i, job := range jobs {
		salary := "Not specified"
		if job.SalaryMin > 0 && job.SalaryMax > 0 {
			currency := firstNonEmpty(job.Currency, "USD")
			symbol := currencySymbol(currency)
			salary = fmt.Sprintf("%s%d-%s%d %s", symbol, job.SalaryMin, symbol, job.SalaryMax, currency)
		}

		description := job.Description
		if len(description) > 1000 {
			description = description[:1000]
		}

		experience := "Not specified"
		if job.RequiredExperienceYears > 0 {
			experience = fmt.Sprintf("%.1f", job.RequiredExperienceYears)
		}

		blocks = append(blocks, fmt.Sprintf(
			"<job index=\"%d\">\nCompany: %s\nTitle: %s\nLocation: %s\nRemote: %s\nSalary: %s\nRequired Skills: %s\nPreferred Skills: %s\nExperience: %s years\nSeniority: %s\nDescription: %s\n</job>",
			i,
			job.CompanyName,
			job.Title,
			firstNonEmpty(job.Location, "Not specified"),
			string(job.RemoteType),
			salary,
			joinOr(job.RequiredSkills, "Not specified"),
			joinOr(job.PreferredSkills, "None"),
			experience,
			firstNonEmpty(job.SeniorityLevel, "Not specified"),
			description,
		))
	}
	return strings.Join(blocks, "\n\n")
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}
