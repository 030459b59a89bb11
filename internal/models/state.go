package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Step names for the staged pipeline, in execution order
const (
	StepParseResume   = "parse_resume"
	StepParsePrefs    = "parse_prefs"
	StepFindCompanies = "find_companies"
	StepScrapeJobs    = "scrape_jobs"
	StepProcessJobs   = "process_jobs"
	StepScoreJobs     = "score_jobs"
	StepAggregate     = "aggregate"
	StepNotify        = "notify"
)

// PipelineState is the mutable state threaded through every stage.
// The pipeline task is the sole mutator; fan-out goroutines inside a stage
// return contributions that the stage handler merges serially.
type PipelineState struct {
	Config RunConfig `json:"config"`

	// Step outputs
	Profile        *CandidateProfile  `json:"profile,omitempty"`
	Preferences    *SearchPreferences `json:"preferences,omitempty"`
	Companies      []Company          `json:"companies,omitempty"`
	RawJobs        []RawJob           `json:"raw_jobs,omitempty"`
	NormalizedJobs []NormalizedJob    `json:"normalized_jobs,omitempty"`
	ScoredJobs     []ScoredJob        `json:"scored_jobs,omitempty"`

	// Cross-cutting
	Errors                []AgentError    `json:"errors,omitempty"`
	TotalTokens           int             `json:"total_tokens"`
	TotalCostUSD          float64         `json:"total_cost_usd"`
	AttemptedCompanyNames map[string]bool `json:"attempted_company_names,omitempty"`
	DiscoveryIteration    int             `json:"discovery_iteration"`
	RunResult             *RunResult      `json:"run_result,omitempty"`
}

// NewPipelineState creates a fresh state for a run config
func NewPipelineState(config RunConfig) *PipelineState {
	return &PipelineState{
		Config:                config,
		AttemptedCompanyNames: make(map[string]bool),
	}
}

// CompletedSteps infers which steps have completed from populated fields
func (s *PipelineState) CompletedSteps() []string {
	var steps []string
	if s.Profile != nil {
		steps = append(steps, StepParseResume)
	}
	if s.Preferences != nil {
		steps = append(steps, StepParsePrefs)
	}
	if len(s.Companies) > 0 {
		steps = append(steps, StepFindCompanies)
	}
	if len(s.RawJobs) > 0 {
		steps = append(steps, StepScrapeJobs)
	}
	if len(s.NormalizedJobs) > 0 {
		steps = append(steps, StepProcessJobs)
	}
	if len(s.ScoredJobs) > 0 {
		steps = append(steps, StepScoreJobs)
	}
	if s.RunResult != nil {
		steps = append(steps, StepAggregate)
	}
	if s.RunResult != nil && s.RunResult.EmailSent {
		steps = append(steps, StepNotify)
	}
	return steps
}

// StepCompleted reports whether a named step is already done
func (s *PipelineState) StepCompleted(name string) bool {
	for _, step := range s.CompletedSteps() {
		if step == name {
			return true
		}
	}
	return false
}

// RecordError appends an error record to the state; fatal sets IsFatal
func (s *PipelineState) RecordError(agentName string, err error, companyName, jobID string, fatal bool) {
	s.Errors = append(s.Errors, AgentError{
		AgentName:    agentName,
		ErrorType:    fmt.Sprintf("%T", err),
		ErrorMessage: err.Error(),
		CompanyName:  companyName,
		JobID:        jobID,
		IsFatal:      fatal,
		Timestamp:    time.Now().UTC(),
	})
}

// ToCheckpoint serializes the full state for crash recovery
func (s *PipelineState) ToCheckpoint(stepName string) (*Checkpoint, error) {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return nil, &CheckpointError{Err: fmt.Errorf("failed to serialize state: %w", err)}
	}
	return &Checkpoint{
		RunID:         s.Config.RunID,
		CompletedStep: stepName,
		StateSnapshot: snapshot,
		SavedAt:       time.Now().UTC(),
	}, nil
}

// StateFromCheckpoint restores a state from a checkpoint snapshot
func StateFromCheckpoint(cp *Checkpoint) (*PipelineState, error) {
	var state PipelineState
	if err := json.Unmarshal(cp.StateSnapshot, &state); err != nil {
		return nil, &CheckpointError{Err: fmt.Errorf("failed to parse state snapshot: %w", err)}
	}
	if state.Config.RunID == "" {
		return nil, &CheckpointError{Err: fmt.Errorf("invalid checkpoint: missing run config")}
	}
	if state.AttemptedCompanyNames == nil {
		state.AttemptedCompanyNames = make(map[string]bool)
	}
	return &state, nil
}

// BuildResult constructs a RunResult from the current state
func (s *PipelineState) BuildResult(status RunStatus, duration time.Duration) *RunResult {
	succeeded := make(map[string]bool)
	for _, j := range s.RawJobs {
		succeeded[j.CompanyID] = true
	}
	return &RunResult{
		RunID:              s.Config.RunID,
		Status:             status,
		CompaniesAttempted: len(s.Companies),
		CompaniesSucceeded: len(succeeded),
		JobsScraped:        len(s.RawJobs),
		JobsScored:         len(s.ScoredJobs),
		JobsInOutput:       len(s.ScoredJobs),
		EmailSent:          false,
		Errors:             s.Errors,
		TotalTokensUsed:    s.TotalTokens,
		EstimatedCostUSD:   s.TotalCostUSD,
		DurationSeconds:    duration.Seconds(),
		CompletedAt:        time.Now().UTC(),
	}
}

// ExcludedCompanySet returns the union of preference exclusions and
// companies attempted in earlier discovery iterations.
func (s *PipelineState) ExcludedCompanySet() map[string]bool {
	excluded := make(map[string]bool, len(s.AttemptedCompanyNames))
	for name := range s.AttemptedCompanyNames {
		excluded[name] = true
	}
	if s.Preferences != nil {
		for _, name := range s.Preferences.ExcludedCompanies {
			excluded[name] = true
		}
	}
	return excluded
}
