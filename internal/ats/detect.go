package ats

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
)

// NewClients returns the ATS strategies in fixed detection order:
// Greenhouse, Lever, Ashby, Workday. The first whose pattern matches wins.
func NewClients(httpClient *http.Client, scraper interfaces.PageScraper, logger arbor.ILogger) []interfaces.ATSClient {
	return []interfaces.ATSClient{
		NewGreenhouseClient(httpClient, logger),
		NewLeverClient(httpClient, logger),
		NewAshbyClient(httpClient, logger),
		NewWorkdayClient(scraper, logger),
	}
}

// Detect runs the ordered client patterns against a career URL. A match
// yields the ATS type with the api strategy; no match falls back to the
// crawler strategy with an unknown ATS type.
func Detect(careerURL string, clients []interfaces.ATSClient) (models.ATSType, models.ScrapeStrategy) {
	for _, client := range clients {
		if client.Detect(careerURL) {
			return client.Type(), models.StrategyAPI
		}
	}
	return models.ATSUnknown, models.StrategyCrawler
}

// ClientFor returns the client serving the given ATS type, or nil
func ClientFor(atsType models.ATSType, clients []interfaces.ATSClient) interfaces.ATSClient {
	for _, client := range clients {
		if client.Type() == atsType {
			return client
		}
	}
	return nil
}

// extractSlug pulls the board identifier out of a career URL
func extractSlug(pattern *regexp.Regexp, careerURL string) string {
	match := pattern.FindStringSubmatch(careerURL)
	if len(match) < 2 {
		return ""
	}
	return match[1]
}

// getJSON issues a GET and decodes the JSON body into out.
// Non-2xx responses are returned as errors for the coordinator to record.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s returned %d: %s", url, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
