// Package dryrun provides offline fakes for every external collaborator,
// letting the pipeline run end-to-end with no network access or spend.
package dryrun

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
)

// FakeLLMService returns canned structured responses selected by the
// request schema. Usage is reported as zero so dry runs cost nothing.
type FakeLLMService struct {
	logger arbor.ILogger
}

var _ interfaces.LLMService = (*FakeLLMService)(nil)

// NewFakeLLMService creates the dry-run LLM stub
func NewFakeLLMService(logger arbor.ILogger) *FakeLLMService {
	return &FakeLLMService{logger: logger}
}

// FastModel returns the stub model id
func (s *FakeLLMService) FastModel() string { return "dry-run" }

// SmartModel returns the stub model id
func (s *FakeLLMService) SmartModel() string { return "dry-run" }

// Close is a no-op
func (s *FakeLLMService) Close() error { return nil }

// CompleteStructured selects a fixture by schema shape and unmarshals it
func (s *FakeLLMService) CompleteStructured(_ context.Context, req interfaces.CompletionRequest, out any) (interfaces.TokenUsage, error) {
	usage := interfaces.TokenUsage{Model: "dry-run"}

	fixture := ""
	switch {
	case strings.Contains(req.Schema, "years_of_experience"):
		fixture = profileFixture
	case strings.Contains(req.Schema, "preferred_locations"):
		fixture = prefsFixture
	case strings.Contains(req.Schema, `"companies"`):
		fixture = companiesFixture
	case strings.Contains(req.Schema, "is_valid_posting"):
		fixture = extractedJobFixture
	case strings.Contains(req.Schema, `"scores"`):
		fixture = scoresFixture
	default:
		return usage, fmt.Errorf("no dry-run fixture for schema")
	}

	if err := json.Unmarshal([]byte(fixture), out); err != nil {
		return usage, fmt.Errorf("dry-run fixture did not parse: %w", err)
	}
	return usage, nil
}

const profileFixture = `{
  "name": "Jane Doe", "email": "jane@example.com", "location": "Bengaluru",
  "current_title": "Machine Learning Engineer", "years_of_experience": 5,
  "skills": [{"name": "Python"}, {"name": "PyTorch"}, {"name": "Go"}],
  "industries": ["fintech"], "seniority_level": "senior",
  "tech_stack": ["Python", "PyTorch", "Kubernetes"]
}`

const prefsFixture = `{
  "preferred_locations": ["Remote"], "remote_preference": "remote",
  "target_titles": ["ML Engineer"], "target_seniority": ["senior"],
  "org_types": ["any"], "currency": "USD"
}`

const companiesFixture = `{
  "companies": [
    {"name": "Stripe", "domain": "stripe.com", "industry": "fintech", "size": "large", "tier": "tier_1", "description": "Payments infrastructure"},
    {"name": "Linear", "domain": "linear.app", "industry": "saas", "size": "startup", "tier": "startup", "description": "Issue tracking"}
  ]
}`

const extractedJobFixture = `{
  "title": "ML Engineer", "description": "Build and deploy models at scale.",
  "is_valid_posting": true, "location": "Remote", "remote_type": "remote",
  "required_skills": ["Python", "PyTorch"], "preferred_skills": ["Go"]
}`

const scoresFixture = `{
  "scores": [
    {"job_index": 0, "score": 82, "skill_overlap": ["Python"], "skill_gaps": [],
     "seniority_match": true, "location_match": true, "org_type_match": true,
     "summary": "Strong skill alignment with remote fit.", "recommendation": "good_match", "confidence": 0.8},
    {"job_index": 1, "score": 68, "skill_overlap": ["Python"], "skill_gaps": ["Rust"],
     "seniority_match": true, "location_match": true, "org_type_match": true,
     "summary": "Viable with some gaps.", "recommendation": "stretch", "confidence": 0.7},
    {"job_index": 2, "score": 55, "skill_overlap": [], "skill_gaps": ["C++"],
     "seniority_match": false, "location_match": true, "org_type_match": true,
     "summary": "Significant gaps.", "recommendation": "mismatch", "confidence": 0.7},
    {"job_index": 3, "score": 74, "skill_overlap": ["Go"], "skill_gaps": [],
     "seniority_match": true, "location_match": true, "org_type_match": true,
     "summary": "Good alignment.", "recommendation": "good_match", "confidence": 0.75},
    {"job_index": 4, "score": 63, "skill_overlap": ["Python"], "skill_gaps": ["Spark"],
     "seniority_match": true, "location_match": false, "org_type_match": true,
     "summary": "Location mismatch.", "recommendation": "stretch", "confidence": 0.6}
  ]
}`

// FakeSearchService resolves every company to a Greenhouse board URL
type FakeSearchService struct{}

var _ interfaces.SearchService = (*FakeSearchService)(nil)

// NewFakeSearchService creates the dry-run search stub
func NewFakeSearchService() *FakeSearchService { return &FakeSearchService{} }

// Search returns no results
func (s *FakeSearchService) Search(_ context.Context, _ string, _ int) ([]interfaces.SearchResult, error) {
	return nil, nil
}

// FindCareerPage fabricates a Greenhouse board URL from the company name
func (s *FakeSearchService) FindCareerPage(_ context.Context, companyName string) (string, error) {
	slug := strings.ToLower(strings.ReplaceAll(companyName, " ", ""))
	return fmt.Sprintf("https://boards.greenhouse.io/%s", slug), nil
}

// FakePageScraper returns a fixed job posting page
type FakePageScraper struct{}

var _ interfaces.PageScraper = (*FakePageScraper)(nil)

// NewFakePageScraper creates the dry-run scraper stub
func NewFakePageScraper() *FakePageScraper { return &FakePageScraper{} }

// FetchPage returns canned posting content
func (s *FakePageScraper) FetchPage(_ context.Context, url string) (string, error) {
	return fmt.Sprintf("# Careers\n\nML Engineer - Remote\n\nWe are hiring an ML Engineer to build and deploy models at scale. Requirements: Python, PyTorch, 4+ years experience.\n\nApply at %s", url), nil
}

// FakePDFExtractor returns a fixed resume text
type FakePDFExtractor struct{}

var _ interfaces.PDFExtractor = (*FakePDFExtractor)(nil)

// NewFakePDFExtractor creates the dry-run PDF stub
func NewFakePDFExtractor() *FakePDFExtractor { return &FakePDFExtractor{} }

// ExtractText returns canned resume text regardless of path
func (s *FakePDFExtractor) ExtractText(_ context.Context, _ string) (string, error) {
	return "Jane Doe | jane@example.com | Machine Learning Engineer\n5 years of experience with Python, PyTorch and Go in fintech.", nil
}
