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

var leverPattern = regexp.MustCompile(`(?i)jobs\.lever\.co/(\w[\w-]*)`)

const leverAPIURL = "https://api.lever.co/v0/postings/%s"

// LeverClient fetches postings from the Lever public API.
// Lever returns a top-level array rather than a jobs envelope.
type LeverClient struct {
	httpClient *http.Client
	logger     arbor.ILogger
	apiURL     string
}

var _ interfaces.ATSClient = (*LeverClient)(nil)

// NewLeverClient creates a Lever ATS client
func NewLeverClient(httpClient *http.Client, logger arbor.ILogger) *LeverClient {
	return &LeverClient{httpClient: httpClient, logger: logger, apiURL: leverAPIURL}
}

// Type returns the ATS family
func (c *LeverClient) Type() models.ATSType {
	return models.ATSLever
}

// Detect reports whether the URL points to a Lever board
func (c *LeverClient) Detect(careerURL string) bool {
	return leverPattern.MatchString(careerURL)
}

// FetchJobs fetches the postings array from the Lever API
func (c *LeverClient) FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error) {
	slug := extractSlug(leverPattern, company.CareerPage.URL)
	if slug == "" {
		c.logger.Warn().Str("url", company.CareerPage.URL).Msg("No Lever slug in career URL")
		return nil, nil
	}

	apiURL := fmt.Sprintf(c.apiURL, slug)
	var postings []json.RawMessage
	if err := getJSON(ctx, c.httpClient, apiURL, nil, &postings); err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", company.Name, err)
	}

	c.logger.Info().
		Str("company", company.Name).
		Int("count", len(postings)).
		Msg("Lever jobs fetched")
	return postings, nil
}
