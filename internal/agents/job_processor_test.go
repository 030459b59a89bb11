package agents

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/venari/internal/models"
)

func rawJSONJob(id, companyID, companyName, payload string) models.RawJob {
	return models.RawJob{
		ID:               id,
		CompanyID:        companyID,
		CompanyName:      companyName,
		RawJSON:          []byte(payload),
		SourceURL:        "https://boards.greenhouse.io/" + strings.ToLower(companyName),
		ScrapeStrategy:   models.StrategyAPI,
		SourceConfidence: 0.95,
	}
}

func rawHTMLJob(id, companyName, content string) models.RawJob {
	return models.RawJob{
		ID:               id,
		CompanyID:        "c1",
		CompanyName:      companyName,
		RawHTML:          content,
		SourceURL:        "https://" + strings.ToLower(companyName) + ".com/careers",
		ScrapeStrategy:   models.StrategyCrawler,
		SourceConfidence: 0.7,
	}
}

func TestJobProcessor_JSONPathFieldMapping(t *testing.T) {
	agent := NewJobProcessorAgent(testDeps(&fakeLLM{}))
	state := seededState()
	state.RawJobs = []models.RawJob{rawJSONJob("r1", "c1", "Acme", `{
		"title": "ML Engineer",
		"content": "Build models",
		"absolute_url": "https://boards.greenhouse.io/co/123",
		"location": {"name": "Remote"},
		"updated_at": "2025-01-15T00:00:00Z"
	}`)}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, state.NormalizedJobs, 1)

	job := state.NormalizedJobs[0]
	assert.Equal(t, "ML Engineer", job.Title)
	assert.Equal(t, "Build models", job.Description)
	assert.Equal(t, "https://boards.greenhouse.io/co/123", job.ApplyURL)
	assert.Equal(t, "Remote", job.Location)
	assert.Equal(t, "2025-01-15", job.PostedDate)
	assert.Equal(t, "r1", job.RawJobID)
	assert.Equal(t, "c1", job.CompanyID)
	assert.Equal(t, models.ComputeContentHash("Acme", "ML Engineer", "Build models"), job.ContentHash)
}

func TestJobProcessor_JSONPathSkipsMissingTitle(t *testing.T) {
	agent := NewJobProcessorAgent(testDeps(&fakeLLM{}))
	state := seededState()
	state.RawJobs = []models.RawJob{rawJSONJob("r1", "c1", "Acme", `{"content": "No title here"}`)}

	require.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.NormalizedJobs)
	assert.Empty(t, state.Errors)
}

func TestJobProcessor_JSONPathApplyURLPriority(t *testing.T) {
	agent := NewJobProcessorAgent(testDeps(&fakeLLM{}))
	state := seededState()
	state.RawJobs = []models.RawJob{
		rawJSONJob("r1", "c1", "Acme", `{"title": "A", "applyUrl": "https://x.example/apply"}`),
		rawJSONJob("r2", "c1", "Acme", `{"title": "B"}`),
	}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, state.NormalizedJobs, 2)
	assert.Equal(t, "https://x.example/apply", state.NormalizedJobs[0].ApplyURL)
	// Falls back to the source URL when no apply field is present
	assert.Equal(t, "https://boards.greenhouse.io/acme", state.NormalizedJobs[1].ApplyURL)
}

func TestJobProcessor_EmptyDescriptionHashesApplyURL(t *testing.T) {
	agent := NewJobProcessorAgent(testDeps(&fakeLLM{}))
	state := seededState()
	state.RawJobs = []models.RawJob{
		rawJSONJob("r1", "c1", "Acme", `{"title": "Engineer", "absolute_url": "https://a.example/1"}`),
		rawJSONJob("r2", "c1", "Acme", `{"title": "Engineer", "absolute_url": "https://a.example/2"}`),
	}

	require.NoError(t, agent.Run(context.Background(), state))
	// Same title and empty description, but distinct apply URLs keep them apart
	assert.Len(t, state.NormalizedJobs, 2)
}

func TestJobProcessor_UnixTimestampDates(t *testing.T) {
	agent := NewJobProcessorAgent(testDeps(&fakeLLM{}))
	state := seededState()
	state.RawJobs = []models.RawJob{
		// Lever-style millisecond timestamp: 2025-01-15 ~ 1736899200000 ms
		rawJSONJob("r1", "c1", "Acme", `{"title": "A", "createdAt": 1736899200000}`),
		// Second-resolution timestamp
		rawJSONJob("r2", "c1", "Acme", `{"title": "B", "created_at": 1736899200}`),
	}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, state.NormalizedJobs, 2)
	assert.Equal(t, "2025-01-15", state.NormalizedJobs[0].PostedDate)
	assert.Equal(t, "2025-01-15", state.NormalizedJobs[1].PostedDate)
}

func TestJobProcessor_DedupAcrossJSONAndHTML(t *testing.T) {
	// The HTML extraction yields the same title and description as the JSON
	// record; fingerprints collide and exactly one normalized job survives.
	llm := &fakeLLM{responses: []string{`{
		"title": "ML Engineer", "description": "Build models", "is_valid_posting": true
	}`}}
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{
		rawJSONJob("r1", "c1", "Acme", `{"title": "ML Engineer", "content": "Build models"}`),
		rawHTMLJob("r2", "Acme", strings.Repeat("ML Engineer role at Acme. Build models. ", 10)),
	}

	require.NoError(t, agent.Run(context.Background(), state))
	assert.Len(t, state.NormalizedJobs, 1)
	assert.Equal(t, 1, llm.calls)
}

func TestJobProcessor_HTMLSkipsThinContent(t *testing.T) {
	llm := &fakeLLM{}
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{rawHTMLJob("r1", "Acme", "too short")}

	require.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.NormalizedJobs)
	assert.Zero(t, llm.calls, "content under 100 chars must not reach the LLM")
}

func TestJobProcessor_HTMLSkipsInvalidPosting(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{
		"title": "Careers at Acme", "description": "We have many jobs", "is_valid_posting": false
	}`}}
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{rawHTMLJob("r1", "Acme", strings.Repeat("Landing page content. ", 20))}

	require.NoError(t, agent.Run(context.Background(), state))
	assert.Empty(t, state.NormalizedJobs)
	assert.Empty(t, state.Errors)
}

func TestJobProcessor_HTMLNormalizesRemoteType(t *testing.T) {
	llm := &fakeLLM{responses: []string{`{
		"title": "Engineer", "description": "Role description text for the engineer position.",
		"is_valid_posting": true, "remote_type": "Fully Remote"
	}`}}
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{rawHTMLJob("r1", "Acme", strings.Repeat("Engineer role. ", 20))}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, state.NormalizedJobs, 1)
	assert.Equal(t, models.RemoteRemote, state.NormalizedJobs[0].RemoteType)
}

func TestJobProcessor_HTMLTruncatesContentWindow(t *testing.T) {
	var seenLen int
	llm := &fakeLLM{responses: []string{`{
		"title": "Engineer", "description": "desc", "is_valid_posting": true
	}`}}
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{rawHTMLJob("r1", "Acme", strings.Repeat("x", 20000))}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, llm.prompts, 1)
	seenLen = len(llm.prompts[0].Messages[len(llm.prompts[0].Messages)-1].Content)
	assert.Less(t, seenLen, 10000, "only the first 8000 chars of content go to the LLM")
}

func TestJobProcessor_PerJobErrorsAreNonFatal(t *testing.T) {
	llm := &fakeLLM{} // any HTML job call fails with "unexpected LLM call"
	agent := NewJobProcessorAgent(testDeps(llm))

	state := seededState()
	state.RawJobs = []models.RawJob{
		rawHTMLJob("r1", "Acme", strings.Repeat("A posting that will fail extraction. ", 10)),
		rawJSONJob("r2", "c1", "Acme", `{"title": "Survivor", "content": "Still processed"}`),
	}

	require.NoError(t, agent.Run(context.Background(), state))
	require.Len(t, state.NormalizedJobs, 1)
	assert.Equal(t, "Survivor", state.NormalizedJobs[0].Title)
	require.Len(t, state.Errors, 1)
	assert.Equal(t, "r1", state.Errors[0].JobID)
}

func TestParseDateString(t *testing.T) {
	assert.Equal(t, "2025-01-15", parseDateString("2025-01-15"))
	assert.Equal(t, "2025-01-15", parseDateString("2025-01-15T10:30:00Z"))
	assert.Equal(t, "2025-01-15", parseDateString("2025-01-15T10:30:00+05:30"))
	assert.Equal(t, "", parseDateString("January 15, 2025"))
	assert.Equal(t, "", parseDateString(""))
	assert.Equal(t, "", parseDateString("2025-13-40"))
}
