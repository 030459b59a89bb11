package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// CachedPage is one scraped page stored by URL
type CachedPage struct {
	URL       string `badgerhold:"key"`
	Content   string
	FetchedAt time.Time
}

// CachedCareerURL is a validated career page URL stored by company name
type CachedCareerURL struct {
	CompanyName string `badgerhold:"key"`
	URL         string
	CheckedAt   time.Time
}

// BadgerCache implements the scrape caches on a badgerhold store.
// Expired entries read as misses and are lazily overwritten.
type BadgerCache struct {
	store        *badgerhold.Store
	logger       arbor.ILogger
	pageTTL      time.Duration
	careerURLTTL time.Duration
}

var _ interfaces.CacheService = (*BadgerCache)(nil)

// NewBadgerCache opens the cache store at the configured path
func NewBadgerCache(config *common.CacheConfig, logger arbor.ILogger) (*BadgerCache, error) {
	if err := os.MkdirAll(filepath.Dir(config.Path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Badger cache initialized")

	return &BadgerCache{
		store:        store,
		logger:       logger,
		pageTTL:      time.Duration(config.PageTTLHours) * time.Hour,
		careerURLTTL: time.Duration(config.CareerURLTTLDays) * 24 * time.Hour,
	}, nil
}

// GetPage returns cached page content for a URL, or ok=false on miss/expiry
func (c *BadgerCache) GetPage(_ context.Context, url string) (string, bool) {
	var page CachedPage
	if err := c.store.Get(url, &page); err != nil {
		return "", false
	}
	if c.pageTTL > 0 && time.Since(page.FetchedAt) > c.pageTTL {
		return "", false
	}
	return page.Content, true
}

// PutPage stores page content for a URL
func (c *BadgerCache) PutPage(_ context.Context, url, content string) error {
	return c.store.Upsert(url, &CachedPage{
		URL:       url,
		Content:   content,
		FetchedAt: time.Now().UTC(),
	})
}

// GetCareerURL returns the cached career page URL for a company
func (c *BadgerCache) GetCareerURL(_ context.Context, companyName string) (string, bool) {
	var entry CachedCareerURL
	if err := c.store.Get(companyName, &entry); err != nil {
		return "", false
	}
	if c.careerURLTTL > 0 && time.Since(entry.CheckedAt) > c.careerURLTTL {
		return "", false
	}
	return entry.URL, true
}

// PutCareerURL stores a validated career page URL for a company
func (c *BadgerCache) PutCareerURL(_ context.Context, companyName, url string) error {
	return c.store.Upsert(companyName, &CachedCareerURL{
		CompanyName: companyName,
		URL:         url,
		CheckedAt:   time.Now().UTC(),
	})
}

// Close releases the underlying store
func (c *BadgerCache) Close() error {
	return c.store.Close()
}
