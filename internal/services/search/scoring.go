package search

import (
	"sort"
	"strings"

	"github.com/ternarybob/venari/internal/interfaces"
)

// Job aggregator sites to skip — these rarely lead to direct apply URLs
var aggregatorDomains = []string{
	"indeed.com",
	"glassdoor.com",
	"linkedin.com",
	"naukri.com",
	"internshala.com",
	"monster.com",
	"ziprecruiter.com",
	"angel.co",
	"wellfound.com",
	"simplyhired.com",
	"shine.com",
	"foundit.in",
}

// ATS domains — higher signal for direct career pages
var atsDomains = []string{
	"greenhouse.io",
	"lever.co",
	"ashbyhq.com",
	"workday.com",
	"myworkdayjobs.com",
	"smartrecruiters.com",
	"icims.com",
}

var careerKeywords = []string{"career", "jobs", "hiring", "work", "openings"}

// strictMinScore is the minimum signal required in strict mode
const strictMinScore = 2.0

// IsAggregator reports whether a URL belongs to a known job aggregator
func IsAggregator(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range aggregatorDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// IsATSURL reports whether a URL matches a known ATS platform
func IsATSURL(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, domain := range atsDomains {
		if strings.Contains(lower, domain) {
			return true
		}
	}
	return false
}

// matchesCompanyName reports whether a URL contains the company's
// normalized name or its leading word
func matchesCompanyName(rawURL, companyName string) bool {
	normalized := strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(companyName, " ", ""), "-", ""))
	lower := strings.ToLower(rawURL)
	if normalized != "" && strings.Contains(lower, normalized) {
		return true
	}
	fields := strings.Fields(strings.ToLower(companyName))
	if len(fields) == 0 {
		return false
	}
	short := fields[0]
	return len(short) >= 3 && strings.Contains(lower, short)
}

// ScoreCareerURL computes the career-page signal score for one URL:
// +3 career keyword in URL, +4 ATS hostname, +2 company name match.
func ScoreCareerURL(rawURL, companyName string) float64 {
	score := 0.0
	lower := strings.ToLower(rawURL)

	for _, kw := range careerKeywords {
		if strings.Contains(lower, kw) {
			score += 3.0
			break
		}
	}
	if IsATSURL(rawURL) {
		score += 4.0
	}
	if matchesCompanyName(rawURL, companyName) {
		score += 2.0
	}
	return score
}

// PickBestCareerURL scores results and picks the best non-aggregator URL.
// In strict mode only URLs scoring at least strictMinScore qualify; in
// non-strict mode the highest-scoring non-aggregator result wins.
func PickBestCareerURL(results []interfaces.SearchResult, companyName string, strict bool) string {
	type scored struct {
		score float64
		url   string
	}
	var candidates []scored

	for _, result := range results {
		if result.URL == "" || IsAggregator(result.URL) {
			continue
		}
		candidates = append(candidates, scored{
			score: ScoreCareerURL(result.URL, companyName),
			url:   result.URL,
		})
	}

	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	best := candidates[0]
	if strict && best.score < strictMinScore {
		return ""
	}
	return best.url
}
