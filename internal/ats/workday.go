package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

var workdayPattern = regexp.MustCompile(`(?i)myworkdayjobs\.com|workday\.com/en-US`)

// WorkdayClient handles Workday-hosted career pages. Workday exposes no
// public job API, so this client renders the page through the scraper and
// returns a single wrapper record with the captured content.
type WorkdayClient struct {
	scraper interfaces.PageScraper
	logger  arbor.ILogger
}

var _ interfaces.ATSClient = (*WorkdayClient)(nil)

// NewWorkdayClient creates a Workday ATS client backed by the page scraper
func NewWorkdayClient(scraper interfaces.PageScraper, logger arbor.ILogger) *WorkdayClient {
	return &WorkdayClient{scraper: scraper, logger: logger}
}

// Type returns the ATS family
func (c *WorkdayClient) Type() models.ATSType {
	return models.ATSWorkday
}

// Detect reports whether the URL points to a Workday-hosted career page
func (c *WorkdayClient) Detect(careerURL string) bool {
	return workdayPattern.MatchString(careerURL)
}

// FetchJobs scrapes the Workday page and wraps the content as one record
func (c *WorkdayClient) FetchJobs(ctx context.Context, company models.Company) ([]json.RawMessage, error) {
	url := company.CareerPage.URL
	content, err := c.scraper.FetchPage(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("workday scrape for %s: %w", company.Name, err)
	}

	record, err := json.Marshal(map[string]string{
		"raw_content": content,
		"source_url":  url,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("company", company.Name).
		Int("content_length", len(content)).
		Msg("Workday page fetched")
	return []json.RawMessage{record}, nil
}
