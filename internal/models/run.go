package models

import (
	"encoding/json"
	"time"
)

// RunStatus is the terminal status of a pipeline run
type RunStatus string

const (
	RunSuccess RunStatus = "success"
	RunPartial RunStatus = "partial"
	RunFailed  RunStatus = "failed"
)

// RunConfig is the configuration for a single pipeline run
type RunConfig struct {
	RunID           string   `json:"run_id"`
	ResumePath      string   `json:"resume_path"`
	PreferencesText string   `json:"preferences_text"`
	DryRun          bool     `json:"dry_run"`        // Skip email, generate files only
	ForceRescrape   bool     `json:"force_rescrape"` // Bypass page and career URL caches
	CompanyLimit    int      `json:"company_limit,omitempty"`
	OutputFormats   []string `json:"output_formats,omitempty"`
}

// AgentError is a record of a non-fatal (or fatal) failure during a stage
type AgentError struct {
	AgentName    string    `json:"agent_name"`
	ErrorType    string    `json:"error_type"`
	ErrorMessage string    `json:"error_message"`
	CompanyName  string    `json:"company_name,omitempty"`
	JobID        string    `json:"job_id,omitempty"`
	IsFatal      bool      `json:"is_fatal"`
	Timestamp    time.Time `json:"timestamp"`
}

// RunResult is the summary of a completed pipeline run
type RunResult struct {
	RunID              string       `json:"run_id"`
	Status             RunStatus    `json:"status"`
	CompaniesAttempted int          `json:"companies_attempted"`
	CompaniesSucceeded int          `json:"companies_succeeded"`
	JobsScraped        int          `json:"jobs_scraped"`
	JobsScored         int          `json:"jobs_scored"`
	JobsInOutput       int          `json:"jobs_in_output"`
	OutputFiles        []string     `json:"output_files,omitempty"`
	EmailSent          bool         `json:"email_sent"`
	Errors             []AgentError `json:"errors,omitempty"`
	TotalTokensUsed    int          `json:"total_tokens_used"`
	EstimatedCostUSD   float64      `json:"estimated_cost_usd"`
	DurationSeconds    float64      `json:"duration_seconds"`
	CompletedAt        time.Time    `json:"completed_at"`
}

// Checkpoint is a serializable snapshot for crash recovery
type Checkpoint struct {
	RunID         string          `json:"run_id"`
	CompletedStep string          `json:"completed_step"`
	StateSnapshot json.RawMessage `json:"state_snapshot"`
	SavedAt       time.Time       `json:"saved_at"`
}
