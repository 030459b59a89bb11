package interfaces

import "context"

// PageScraper fetches a career page and returns its text content.
// Implementations handle JavaScript rendering where static fetch falls short.
type PageScraper interface {
	FetchPage(ctx context.Context, url string) (string, error)
}
