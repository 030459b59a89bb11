package agents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/costs"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/observability"
)

// fakeLLM scripts structured completions for agent tests. Each call pops
// the next response; complete may also be set for prompt-sensitive tests.
type fakeLLM struct {
	responses []string
	usages    []interfaces.TokenUsage
	prompts   []interfaces.CompletionRequest
	complete  func(req interfaces.CompletionRequest, out any) (interfaces.TokenUsage, error)
	calls     int
}

var _ interfaces.LLMService = (*fakeLLM)(nil)

func (f *fakeLLM) FastModel() string  { return "claude-haiku-4-5-20251001" }
func (f *fakeLLM) SmartModel() string { return "claude-sonnet-4-5-20250514" }
func (f *fakeLLM) Close() error       { return nil }

func (f *fakeLLM) CompleteStructured(_ context.Context, req interfaces.CompletionRequest, out any) (interfaces.TokenUsage, error) {
	f.prompts = append(f.prompts, req)
	call := f.calls
	f.calls++

	if f.complete != nil {
		return f.complete(req, out)
	}
	if call >= len(f.responses) {
		return interfaces.TokenUsage{Model: req.Model}, fmt.Errorf("unexpected LLM call %d", call)
	}

	usage := interfaces.TokenUsage{Model: req.Model, InputTokens: 100, OutputTokens: 50}
	if call < len(f.usages) {
		usage = f.usages[call]
	}
	if err := json.Unmarshal([]byte(f.responses[call]), out); err != nil {
		return usage, err
	}
	return usage, nil
}

// fakeSearch maps company names to career URLs; missing entries resolve to ""
type fakeSearch struct {
	careerURLs map[string]string
	err        error
}

var _ interfaces.SearchService = (*fakeSearch)(nil)

func (f *fakeSearch) Search(context.Context, string, int) ([]interfaces.SearchResult, error) {
	return nil, nil
}

func (f *fakeSearch) FindCareerPage(_ context.Context, companyName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.careerURLs[companyName], nil
}

// fakeScraper returns fixed page content or an error
type fakeScraper struct {
	content string
	err     error
}

var _ interfaces.PageScraper = (*fakeScraper)(nil)

func (f *fakeScraper) FetchPage(context.Context, string) (string, error) {
	return f.content, f.err
}

// fakeATSClient serves one ATS type with scripted records
type fakeATSClient struct {
	atsType models.ATSType
	records map[string][]json.RawMessage // keyed by company name
	errs    map[string]error
	fetch   func(ctx context.Context, company models.Company) ([]json.RawMessage, error)
}

var _ interfaces.ATSClient = (*fakeATSClient)(nil)

func (f *fakeATSClient) Type() models.ATSType { return f.atsType }
func (f *fakeATSClient) Detect(string) bool   { return false }

func (f *fakeATSClient) FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error) {
	if f.fetch != nil {
		return f.fetch(ctx, company)
	}
	if err := f.errs[company.Name]; err != nil {
		return nil, err
	}
	return f.records[company.Name], nil
}

// fakeMailer records sends
type fakeMailer struct {
	configured bool
	sent       []string
	err        error
}

var _ interfaces.MailSender = (*fakeMailer)(nil)

func (f *fakeMailer) Configured() bool { return f.configured }

func (f *fakeMailer) Send(_ context.Context, subject, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, subject)
	return nil
}

// fakePDF returns fixed resume text
type fakePDF struct {
	text string
	err  error
}

var _ interfaces.PDFExtractor = (*fakePDF)(nil)

func (f *fakePDF) ExtractText(context.Context, string) (string, error) {
	return f.text, f.err
}

// testDeps assembles a Deps bundle around the given fakes
func testDeps(llm interfaces.LLMService) Deps {
	config := common.DefaultConfig()
	logger := common.GetLogger()
	return Deps{
		Config:  config,
		LLM:     llm,
		Search:  &fakeSearch{},
		Scraper: &fakeScraper{},
		PDF:     &fakePDF{},
		Mail:    &fakeMailer{},
		Tracker: costs.NewTracker(config.Costs.MaxCostPerRunUSD, config.Costs.WarnCostThresholdUSD, logger),
		Tracer:  observability.NewNoopTracer(),
		Logger:  logger,
	}
}

// seededState returns a state with profile and preferences populated
func seededState() *models.PipelineState {
	state := models.NewPipelineState(models.RunConfig{
		RunID:           "run_test",
		ResumePath:      "/tmp/resume.pdf",
		PreferencesText: "remote ML roles",
	})
	state.Profile = &models.CandidateProfile{
		Name:              "Jane Doe",
		Email:             "jane@example.com",
		CurrentTitle:      "ML Engineer",
		YearsOfExperience: 5,
		Skills:            []models.Skill{{Name: "Python"}, {Name: "ML"}},
		SeniorityLevel:    models.SenioritySenior,
	}
	state.Preferences = &models.SearchPreferences{
		RemotePreference: models.RemotePrefRemote,
		TargetTitles:     []string{"ML Engineer"},
		OrgTypes:         []string{"any"},
		Currency:         "USD",
	}
	return state
}
