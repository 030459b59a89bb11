package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

var ashbyPattern = regexp.MustCompile(`(?i)jobs\.ashbyhq\.com/(\w[\w-]*)`)

const ashbyAPIURL = "https://api.ashbyhq.com/posting-api/job-board/%s"

// ashbyUserAgent is required: Ashby rejects requests with bot-like agents
const ashbyUserAgent = "Mozilla/5.0 (compatible; JobHunter/1.0)"

// AshbyClient fetches job boards from the Ashby posting API
type AshbyClient struct {
	httpClient *http.Client
	logger     arbor.ILogger
	apiURL     string
}

var _ interfaces.ATSClient = (*AshbyClient)(nil)

// NewAshbyClient creates an Ashby ATS client
func NewAshbyClient(httpClient *http.Client, logger arbor.ILogger) *AshbyClient {
	return &AshbyClient{httpClient: httpClient, logger: logger, apiURL: ashbyAPIURL}
}

// Type returns the ATS family
func (c *AshbyClient) Type() models.ATSType {
	return models.ATSAshby
}

// Detect reports whether the URL points to an Ashby job board
func (c *AshbyClient) Detect(careerURL string) bool {
	return ashbyPattern.MatchString(careerURL)
}

// FetchJobs fetches the board's jobs array from the Ashby API
func (c *AshbyClient) FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error) {
	slug := extractSlug(ashbyPattern, company.CareerPage.URL)
	if slug == "" {
		c.logger.Warn().Str("url", company.CareerPage.URL).Msg("No Ashby slug in career URL")
		return nil, nil
	}

	apiURL := fmt.Sprintf(c.apiURL, slug)
	headers := map[string]string{"User-Agent": ashbyUserAgent}
	var envelope struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := getJSON(ctx, c.httpClient, apiURL, headers, &envelope); err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", company.Name, err)
	}

	c.logger.Info().
		Str("company", company.Name).
		Int("count", len(envelope.Jobs)).
		Msg("Ashby jobs fetched")
	return envelope.Jobs, nil
}
