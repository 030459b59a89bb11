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

var greenhousePattern = regexp.MustCompile(`(?i)boards\.greenhouse\.io/(\w+)`)

const greenhouseAPIURL = "https://boards-api.greenhouse.io/v1/boards/%s/jobs"

// GreenhouseClient fetches job boards from the Greenhouse public API
type GreenhouseClient struct {
	httpClient *http.Client
	logger     arbor.ILogger
	apiURL     string
}

var _ interfaces.ATSClient = (*GreenhouseClient)(nil)

// NewGreenhouseClient creates a Greenhouse ATS client
func NewGreenhouseClient(httpClient *http.Client, logger arbor.ILogger) *GreenhouseClient {
	return &GreenhouseClient{httpClient: httpClient, logger: logger, apiURL: greenhouseAPIURL}
}

// Type returns the ATS family
func (c *GreenhouseClient) Type() models.ATSType {
	return models.ATSGreenhouse
}

// Detect reports whether the URL points to a Greenhouse board
func (c *GreenhouseClient) Detect(careerURL string) bool {
	return greenhousePattern.MatchString(careerURL)
}

// FetchJobs fetches the board's jobs array from the Greenhouse API
func (c *GreenhouseClient) FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error) {
	slug := extractSlug(greenhousePattern, company.CareerPage.URL)
	if slug == "" {
		c.logger.Warn().Str("url", company.CareerPage.URL).Msg("No Greenhouse slug in career URL")
		return nil, nil
	}

	apiURL := fmt.Sprintf(c.apiURL, slug)
	var envelope struct {
		Jobs []json.RawMessage `json:"jobs"`
	}
	if err := getJSON(ctx, c.httpClient, apiURL, nil, &envelope); err != nil {
		return nil, fmt.Errorf("greenhouse fetch for %s: %w", company.Name, err)
	}

	c.logger.Info().
		Str("company", company.Name).
		Int("count", len(envelope.Jobs)).
		Msg("Greenhouse jobs fetched")
	return envelope.Jobs, nil
}
