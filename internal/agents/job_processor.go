package agents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/prompts"
)

// htmlContentWindow caps how much raw page content goes to the LLM
const htmlContentWindow = 8000

// minHTMLContentLength skips crawler artifacts too thin to hold a posting
const minHTMLContentLength = 100

// dateFields are the ATS JSON keys tried for the posted date, in priority order
var dateFields = []string{
	"updated_at", "publishedAt", "published_at", "created_at", "date_posted", "createdAt",
}

// extractedJob is the structured response of the HTML extraction call
type extractedJob struct {
	Title                   string   `json:"title"`
	Description             string   `json:"description"`
	IsValidPosting          bool     `json:"is_valid_posting"`
	Location                string   `json:"location"`
	RemoteType              string   `json:"remote_type"`
	SalaryMin               int      `json:"salary_min"`
	SalaryMax               int      `json:"salary_max"`
	Currency                string   `json:"currency"`
	PostedDate              string   `json:"posted_date"`
	ApplyURL                string   `json:"apply_url"`
	RequiredSkills          []string `json:"required_skills"`
	PreferredSkills         []string `json:"preferred_skills"`
	RequiredExperienceYears float64  `json:"required_experience_years"`
	SeniorityLevel          string   `json:"seniority_level"`
	Department              string   `json:"department"`
}

const extractedJobSchema = `{
  "title": "string", "description": "string", "is_valid_posting": true,
  "location": "string|null", "remote_type": "onsite|hybrid|remote|unknown",
  "salary_min": 0, "salary_max": 0, "currency": "string|null",
  "posted_date": "YYYY-MM-DD|null", "apply_url": "string|null",
  "required_skills": ["string"], "preferred_skills": ["string"],
  "required_experience_years": 0.0, "seniority_level": "string|null", "department": "string|null"
}`

// JobProcessorAgent normalizes raw scraped artifacts into canonical jobs,
// deduplicating by content fingerprint within the stage.
type JobProcessorAgent struct {
	BaseAgent
}

// NewJobProcessorAgent creates the process_jobs stage handler
func NewJobProcessorAgent(deps Deps) *JobProcessorAgent {
	return &JobProcessorAgent{BaseAgent: NewBaseAgent(models.StepProcessJobs, deps)}
}

// Run processes every raw job into zero or one normalized job
func (a *JobProcessorAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()
	a.deps.Logger.Info().Int("raw_jobs_count", len(state.RawJobs)).Msg("Processing raw jobs")

	seenHashes := make(map[string]bool)

	for _, rawJob := range state.RawJobs {
		normalized, err := a.processJob(ctx, state, rawJob)
		if err != nil {
			// Cost and fatal errors propagate; anything else is per-item
			var costErr *models.CostLimitExceededError
			var fatalErr *models.FatalAgentError
			if errors.As(err, &costErr) || errors.As(err, &fatalErr) {
				return err
			}
			a.RecordError(state, err, rawJob.CompanyName, rawJob.ID)
			continue
		}
		if normalized == nil {
			continue
		}
		if seenHashes[normalized.ContentHash] {
			continue
		}
		seenHashes[normalized.ContentHash] = true
		state.NormalizedJobs = append(state.NormalizedJobs, *normalized)
	}

	a.deps.Logger.Info().Int("normalized_count", len(state.NormalizedJobs)).Msg("Processing complete")
	a.LogEnd(start)
	return nil
}

// processJob dispatches by artifact shape
func (a *JobProcessorAgent) processJob(ctx context.Context, state *models.PipelineState, rawJob models.RawJob) (*models.NormalizedJob, error) {
	if len(rawJob.RawJSON) > 0 {
		return a.processFromJSON(rawJob)
	}
	if rawJob.RawHTML != "" {
		return a.processFromHTML(ctx, state, rawJob)
	}
	return nil, nil
}

// processFromJSON maps ATS JSON fields directly, no LLM needed
func (a *JobProcessorAgent) processFromJSON(rawJob models.RawJob) (*models.NormalizedJob, error) {
	var data map[string]any
	if err := json.Unmarshal(rawJob.RawJSON, &data); err != nil {
		return nil, fmt.Errorf("invalid ATS JSON: %w", err)
	}

	title := stringField(data, "title")
	if title == "" {
		return nil, nil
	}

	description := stringField(data, "content")
	if description == "" {
		description = stringField(data, "description")
	}

	applyURL := firstNonEmpty(
		stringField(data, "absolute_url"),
		stringField(data, "applyUrl"),
		stringField(data, "applicationUrl"),
		stringField(data, "apply_url"),
		rawJob.SourceURL,
	)

	var location string
	if locData, ok := data["location"].(map[string]any); ok {
		location = stringField(locData, "name")
	}

	postedDate := extractPostedDate(data)

	// API jobs without description still deduplicate via the apply URL
	hashSeed := description
	if hashSeed == "" {
		hashSeed = applyURL
	}

	return &models.NormalizedJob{
		ID:          common.NewID(),
		RawJobID:    rawJob.ID,
		CompanyID:   rawJob.CompanyID,
		CompanyName: rawJob.CompanyName,
		Title:       title,
		Description: description,
		ApplyURL:    applyURL,
		Location:    location,
		RemoteType:  models.RemoteUnknown,
		PostedDate:  postedDate,
		ContentHash: models.ComputeContentHash(rawJob.CompanyName, title, hashSeed),
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// processFromHTML extracts structured fields from crawled content via LLM
func (a *JobProcessorAgent) processFromHTML(ctx context.Context, state *models.PipelineState, rawJob models.RawJob) (*models.NormalizedJob, error) {
	content := strings.TrimSpace(rawJob.RawHTML)
	if len(content) < minHTMLContentLength {
		a.deps.Logger.Warn().
			Str("company", rawJob.CompanyName).
			Int("content_length", len(content)).
			Str("source_url", rawJob.SourceURL).
			Msg("Skipping raw job with empty content")
		return nil, nil
	}
	if len(content) > htmlContentWindow {
		content = content[:htmlContentWindow]
	}

	var extracted extractedJob
	err := a.CallLLM(ctx, state, interfaces.CompletionRequest{
		Messages: []interfaces.Message{
			{Role: "system", Content: prompts.JobProcessorSystem},
			{Role: "user", Content: fmt.Sprintf(prompts.JobProcessorUser, rawJob.CompanyName, rawJob.SourceURL, content)},
		},
		Model:  a.deps.LLM.FastModel(),
		Schema: extractedJobSchema,
	}, &extracted)
	if err != nil {
		return nil, err
	}

	if !extracted.IsValidPosting {
		a.deps.Logger.Warn().
			Str("company", rawJob.CompanyName).
			Str("title", extracted.Title).
			Str("source_url", rawJob.SourceURL).
			Msg("Skipping non-posting content")
		return nil, nil
	}
	if extracted.Title == "" {
		return nil, nil
	}
	if extracted.SalaryMin > 0 && extracted.SalaryMax > 0 && extracted.SalaryMin > extracted.SalaryMax {
		extracted.SalaryMin, extracted.SalaryMax = extracted.SalaryMax, extracted.SalaryMin
	}

	return &models.NormalizedJob{
		ID:                      common.NewID(),
		RawJobID:                rawJob.ID,
		CompanyID:               rawJob.CompanyID,
		CompanyName:             rawJob.CompanyName,
		Title:                   extracted.Title,
		Description:             extracted.Description,
		ApplyURL:                firstNonEmpty(extracted.ApplyURL, rawJob.SourceURL),
		Location:                extracted.Location,
		RemoteType:              models.NormalizeRemoteType(extracted.RemoteType),
		PostedDate:              parseDateString(extracted.PostedDate),
		SalaryMin:               extracted.SalaryMin,
		SalaryMax:               extracted.SalaryMax,
		Currency:                extracted.Currency,
		RequiredSkills:          extracted.RequiredSkills,
		PreferredSkills:         extracted.PreferredSkills,
		RequiredExperienceYears: extracted.RequiredExperienceYears,
		SeniorityLevel:          extracted.SeniorityLevel,
		Department:              extracted.Department,
		ContentHash:             models.ComputeContentHash(rawJob.CompanyName, extracted.Title, extracted.Description),
		ProcessedAt:             time.Now().UTC(),
	}, nil
}

// stringField returns data[key] as a string, or ""
func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// extractPostedDate tries the known ATS date fields in priority order.
// Values may be ISO 8601 strings or Unix timestamps (seconds or millis).
func extractPostedDate(data map[string]any) string {
	for _, field := range dateFields {
		value, ok := data[field]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case float64:
			if v > 1_000_000_000 {
				ts := int64(v)
				if v > 1_000_000_000_000 {
					ts = int64(v / 1000)
				}
				return time.Unix(ts, 0).UTC().Format("2006-01-02")
			}
		case string:
			if parsed := parseDateString(v); parsed != "" {
				return parsed
			}
		}
	}
	return ""
}

// parseDateString extracts YYYY-MM-DD from the leading component of an
// ISO 8601 string. Returns "" when the value does not parse.
func parseDateString(value string) string {
	if value == "" {
		return ""
	}
	datePart := strings.TrimSpace(strings.SplitN(strings.SplitN(value, "T", 2)[0], "+", 2)[0])
	parts := strings.Split(datePart, "-")
	if len(parts) != 3 {
		return ""
	}
	year, err1 := strconv.Atoi(parts[0])
	month, err2 := strconv.Atoi(parts[1])
	day, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return ""
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
