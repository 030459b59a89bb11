package interfaces

import "context"

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string
	URL     string
	Content string
}

// SearchService provides web search for career page discovery
type SearchService interface {
	// Search performs a web search and returns up to maxResults hits
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)

	// FindCareerPage returns the best career page URL for a company,
	// or "" when no qualifying URL is found
	FindCareerPage(ctx context.Context, companyName string) (string, error)
}
