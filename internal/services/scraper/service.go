package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/httpclient"
	"github.com/ternarybob/venari/internal/interfaces"
	"golang.org/x/time/rate"
)

// minRenderedLength is the static-fetch content size below which the
// JavaScript fallback kicks in — SPA career pages serve near-empty HTML.
const minRenderedLength = 500

// Service fetches career pages. Static HTTP first, chromedp rendering as
// fallback for JavaScript-heavy pages, with per-domain rate limiting and an
// optional page cache in front.
type Service struct {
	config     *common.ScraperConfig
	httpClient *http.Client
	logger     arbor.ILogger
	cache      interfaces.CacheService // optional

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

var _ interfaces.PageScraper = (*Service)(nil)

// NewService creates the page scraper. cache may be nil.
func NewService(config *common.ScraperConfig, cache interfaces.CacheService, logger arbor.ILogger) *Service {
	return &Service{
		config:     config,
		httpClient: httpclient.NewDefaultHTTPClient(config.RequestTimeout),
		logger:     logger,
		cache:      cache,
		limiters:   make(map[string]*rate.Limiter),
	}
}

// FetchPage returns the page's text content as markdown. Cached content is
// returned without a network round trip.
func (s *Service) FetchPage(ctx context.Context, pageURL string) (string, error) {
	if s.cache != nil {
		if content, ok := s.cache.GetPage(ctx, pageURL); ok {
			s.logger.Debug().Str("url", pageURL).Msg("Page cache hit")
			return content, nil
		}
	}

	if err := s.waitForDomain(ctx, pageURL); err != nil {
		return "", err
	}

	html, err := s.fetchStatic(ctx, pageURL)
	if err != nil {
		return "", err
	}

	content, err := s.extractContent(html)
	if err != nil {
		return "", err
	}

	// Thin static content usually means a JavaScript-rendered page
	if len(strings.TrimSpace(content)) < minRenderedLength && s.config.EnableJavaScript {
		s.logger.Debug().
			Str("url", pageURL).
			Int("static_length", len(content)).
			Msg("Static content thin, rendering with headless browser")

		rendered, renderErr := s.renderPage(ctx, pageURL)
		if renderErr != nil {
			s.logger.Warn().Err(renderErr).Str("url", pageURL).Msg("JavaScript rendering failed, keeping static content")
		} else if renderedContent, exErr := s.extractContent(rendered); exErr == nil && len(renderedContent) > len(content) {
			content = renderedContent
		}
	}

	if s.cache != nil {
		if err := s.cache.PutPage(ctx, pageURL, content); err != nil {
			s.logger.Warn().Err(err).Str("url", pageURL).Msg("Failed to cache page content")
		}
	}

	return content, nil
}

// fetchStatic performs the plain HTTP fetch
func (s *Service) fetchStatic(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s returned status %d", pageURL, resp.StatusCode)
	}

	limit := int64(s.config.MaxBodySize)
	if limit <= 0 {
		limit = 5 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}
	return string(body), nil
}

// extractContent strips boilerplate from HTML and converts it to markdown
func (s *Service) extractContent(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}

	doc.Find("script, style, noscript, nav, footer, header, iframe, svg").Remove()

	cleaned, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(cleaned) == "" {
		cleaned, _ = doc.Html()
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(cleaned)
	if err != nil {
		// Fall back to the document text when conversion fails
		return strings.TrimSpace(doc.Text()), nil
	}
	return strings.TrimSpace(markdown), nil
}

// waitForDomain blocks on the per-domain politeness limiter
func (s *Service) waitForDomain(ctx context.Context, pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("invalid URL %s: %w", pageURL, err)
	}

	s.limiterMu.Lock()
	limiter, ok := s.limiters[parsed.Host]
	if !ok {
		perMinute := s.config.RequestsPerMinute
		if perMinute <= 0 {
			perMinute = 20
		}
		limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1)
		s.limiters[parsed.Host] = limiter
	}
	s.limiterMu.Unlock()

	return limiter.Wait(ctx)
}
