package agents

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/prompts"
)

// resumeProfileSchema describes the expected JSON shape for the parser call
const resumeProfileSchema = `{
  "name": "string", "email": "string", "phone": "string|null", "location": "string|null",
  "linkedin_url": "string|null", "github_url": "string|null", "current_title": "string|null",
  "years_of_experience": 0.0,
  "skills": [{"name": "string", "level": "beginner|intermediate|advanced|expert|null", "years": 0.0}],
  "past_titles": ["string"], "industries": ["string"],
  "education": [{"degree": "string", "field": "string", "institution": "string", "graduation_year": 0}],
  "seniority_level": "intern|junior|mid|senior|staff|principal|director|vp|c-level",
  "tech_stack": ["string"]
}`

// ResumeParserAgent parses a resume PDF into a structured CandidateProfile
type ResumeParserAgent struct {
	BaseAgent
}

// NewResumeParserAgent creates the parse_resume stage handler
func NewResumeParserAgent(deps Deps) *ResumeParserAgent {
	return &ResumeParserAgent{BaseAgent: NewBaseAgent(models.StepParseResume, deps)}
}

// Run extracts the candidate profile from the configured resume PDF
func (a *ResumeParserAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	rawText, err := a.deps.PDF.ExtractText(ctx, state.Config.ResumePath)
	if err != nil {
		return models.NewFatalAgentError("resume extraction failed: %v", err)
	}

	sum := sha256.Sum256([]byte(rawText))
	contentHash := hex.EncodeToString(sum[:])

	var profile models.CandidateProfile
	err = a.CallLLM(ctx, state, interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: prompts.ResumeParserSystem},
			{Role: "user", Content: fmt.Sprintf(prompts.ResumeParserUser, rawText)},
		},
		Model:  a.deps.LLM.FastModel(),
		Schema: resumeProfileSchema,
	}, &profile)
	if err != nil {
		return err
	}

	profile.RawText = rawText
	profile.ContentHash = contentHash
	profile.ParsedAt = time.Now().UTC()

	state.Profile = &profile

	a.deps.Logger.Info().
		Str("name", profile.Name).
		Str("email", profile.Email).
		Int("skills_count", len(profile.Skills)).
		Msg("Resume parsed")
	a.LogEnd(start)
	return nil
}
