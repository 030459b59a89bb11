package interfaces

import "context"

// CacheService provides the scrape caches: page content keyed by URL and
// career page URLs keyed by company name. Both entries carry TTLs; expired
// entries read as misses.
type CacheService interface {
	// GetPage returns cached page content for a URL, or ok=false on miss
	GetPage(ctx context.Context, url string) (content string, ok bool)

	// PutPage stores page content for a URL
	PutPage(ctx context.Context, url, content string) error

	// GetCareerURL returns the cached career page URL for a company
	GetCareerURL(ctx context.Context, companyName string) (url string, ok bool)

	// PutCareerURL stores a validated career page URL for a company
	PutCareerURL(ctx context.Context, companyName, url string) error

	// Close releases the underlying store
	Close() error
}
