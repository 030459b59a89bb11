package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/httpclient"
	"github.com/ternarybob/venari/internal/interfaces"
)

const duckduckgoHTMLEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGoService implements web search against the DuckDuckGo HTML
// endpoint. No API key required.
type DuckDuckGoService struct {
	config     *common.SearchConfig
	httpClient *http.Client
	logger     arbor.ILogger
	cache      interfaces.CacheService // optional career URL cache
}

var _ interfaces.SearchService = (*DuckDuckGoService)(nil)

// NewDuckDuckGoService creates the search service. cache may be nil.
func NewDuckDuckGoService(config *common.SearchConfig, cache interfaces.CacheService, logger arbor.ILogger) *DuckDuckGoService {
	return &DuckDuckGoService{
		config:     config,
		httpClient: httpclient.NewDefaultHTTPClient(config.RequestTimeout),
		logger:     logger,
		cache:      cache,
	}
}

// Search performs a web search and returns up to maxResults hits
func (s *DuckDuckGoService) Search(ctx context.Context, query string, maxResults int) ([]interfaces.SearchResult, error) {
	if maxResults <= 0 {
		maxResults = s.config.MaxResults
	}

	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, duckduckgoHTMLEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; JobHunter/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []interfaces.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		results = append(results, interfaces.SearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     cleanResultURL(href),
			Content: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < maxResults
	})

	s.logger.Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("Search completed")
	return results, nil
}

// FindCareerPage searches for a company's official career page URL using a
// multi-query strategy with aggregator filtering and ATS preference scoring.
func (s *DuckDuckGoService) FindCareerPage(ctx context.Context, companyName string) (string, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetCareerURL(ctx, companyName); ok {
			s.logger.Debug().Str("company", companyName).Str("url", cached).Msg("Career URL cache hit")
			return cached, nil
		}
	}

	queries := []string{
		fmt.Sprintf("%q careers hiring apply", companyName),
		fmt.Sprintf("%q jobs greenhouse OR lever OR ashby OR workday", companyName),
		fmt.Sprintf("%s careers jobs official site", companyName),
	}

	var all []interfaces.SearchResult
	seen := make(map[string]bool)

	for _, query := range queries {
		results, err := s.Search(ctx, query, s.config.MaxResults)
		if err != nil {
			s.logger.Warn().Err(err).Str("company", companyName).Msg("Career page search query failed")
			continue
		}
		for _, r := range results {
			if !seen[r.URL] {
				seen[r.URL] = true
				all = append(all, r)
			}
		}

		// Stop early once a strong candidate appears
		if best := PickBestCareerURL(all, companyName, true); best != "" {
			s.storeCareerURL(ctx, companyName, best)
			return best, nil
		}
	}

	best := PickBestCareerURL(all, companyName, false)
	if best == "" {
		s.logger.Warn().Str("company", companyName).Msg("Career page not found")
		return "", nil
	}
	s.storeCareerURL(ctx, companyName, best)
	return best, nil
}

func (s *DuckDuckGoService) storeCareerURL(ctx context.Context, companyName, careerURL string) {
	s.logger.Info().Str("company", companyName).Str("url", careerURL).Msg("Career page found")
	if s.cache != nil {
		if err := s.cache.PutCareerURL(ctx, companyName, careerURL); err != nil {
			s.logger.Warn().Err(err).Str("company", companyName).Msg("Failed to cache career URL")
		}
	}
}

// cleanResultURL unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...)
func cleanResultURL(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.Contains(parsed.Host, "duckduckgo.com") {
		if target := parsed.Query().Get("uddg"); target != "" {
			if decoded, err := url.QueryUnescape(target); err == nil {
				return decoded
			}
		}
	}
	return href
}
