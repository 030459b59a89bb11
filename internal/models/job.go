package models

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RemoteType is the coarse location classification for a job posting
type RemoteType string

const (
	RemoteOnsite  RemoteType = "onsite"
	RemoteHybrid  RemoteType = "hybrid"
	RemoteRemote  RemoteType = "remote"
	RemoteUnknown RemoteType = "unknown"
)

// remoteTypeAliases collapses the strings LLM extraction produces into the closed set
var remoteTypeAliases = map[string]RemoteType{
	"onsite":         RemoteOnsite,
	"on-site":        RemoteOnsite,
	"on_site":        RemoteOnsite,
	"in-office":      RemoteOnsite,
	"in_office":      RemoteOnsite,
	"office":         RemoteOnsite,
	"hybrid":         RemoteHybrid,
	"remote":         RemoteRemote,
	"fully remote":   RemoteRemote,
	"fully_remote":   RemoteRemote,
	"work from home": RemoteRemote,
	"wfh":            RemoteRemote,
	"unknown":        RemoteUnknown,
}

// NormalizeRemoteType maps a raw remote-type string to a RemoteType
func NormalizeRemoteType(raw string) RemoteType {
	if rt, ok := remoteTypeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return rt
	}
	return RemoteUnknown
}

// RawJob is one scraped artifact. Exactly one of RawJSON or RawHTML is set.
type RawJob struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	CompanyName      string          `json:"company_name"`
	RawJSON          json.RawMessage `json:"raw_json,omitempty"`
	RawHTML          string          `json:"raw_html,omitempty"`
	SourceURL        string          `json:"source_url"`
	ScrapeStrategy   ScrapeStrategy  `json:"scrape_strategy"`
	SourceConfidence float64         `json:"source_confidence"` // [0,1]
	ScrapedAt        time.Time       `json:"scraped_at"`
}

// NormalizedJob is a canonicalized job listing
type NormalizedJob struct {
	ID                      string     `json:"id"`
	RawJobID                string     `json:"raw_job_id"`
	CompanyID               string     `json:"company_id"`
	CompanyName             string     `json:"company_name"`
	Title                   string     `json:"title"`
	Description             string     `json:"description"`
	ApplyURL                string     `json:"apply_url"`
	Location                string     `json:"location,omitempty"`
	RemoteType              RemoteType `json:"remote_type"`
	PostedDate              string     `json:"posted_date,omitempty"` // YYYY-MM-DD
	SalaryMin               int        `json:"salary_min,omitempty"`
	SalaryMax               int        `json:"salary_max,omitempty"`
	Currency                string     `json:"currency,omitempty"`
	RequiredSkills          []string   `json:"required_skills,omitempty"`
	PreferredSkills         []string   `json:"preferred_skills,omitempty"`
	RequiredExperienceYears float64    `json:"required_experience_years,omitempty"`
	SeniorityLevel          string     `json:"seniority_level,omitempty"`
	Department              string     `json:"department,omitempty"`
	ContentHash             string     `json:"content_hash"`
	ProcessedAt             time.Time  `json:"processed_at"`
}

// ComputeContentHash returns the deduplication fingerprint:
// SHA-256 of "company|title|first 500 chars of description".
func ComputeContentHash(companyName, title, description string) string {
	if len(description) > 500 {
		description = description[:500]
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", companyName, title, description)))
	return hex.EncodeToString(sum[:])
}

// Recommendation is the scorer's overall category for a job
type Recommendation string

const (
	RecommendStrongMatch Recommendation = "strong_match"
	RecommendGoodMatch   Recommendation = "good_match"
	RecommendStretch     Recommendation = "stretch"
	RecommendMismatch    Recommendation = "mismatch"
)

// CoerceRecommendation maps unrecognized recommendation values to stretch
func CoerceRecommendation(raw string) Recommendation {
	switch Recommendation(raw) {
	case RecommendStrongMatch, RecommendGoodMatch, RecommendStretch, RecommendMismatch:
		return Recommendation(raw)
	default:
		return RecommendStretch
	}
}

// FitReport is the detailed fit analysis between a candidate and a job
type FitReport struct {
	Score          int            `json:"score"` // [0,100]
	SkillOverlap   []string       `json:"skill_overlap,omitempty"`
	SkillGaps      []string       `json:"skill_gaps,omitempty"`
	SeniorityMatch bool           `json:"seniority_match"`
	LocationMatch  bool           `json:"location_match"`
	OrgTypeMatch   bool           `json:"org_type_match"`
	Summary        string         `json:"summary"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"` // [0,1]
}

// ScoredJob is a normalized job with its fit report and 1-based rank
type ScoredJob struct {
	Job       NormalizedJob `json:"job"`
	FitReport FitReport     `json:"fit_report"`
	Rank      int           `json:"rank"`
	ScoredAt  time.Time     `json:"scored_at"`
}
