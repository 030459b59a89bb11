package agents

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/venari/internal/models"
)

// AggregatorAgent writes the scored jobs to output files and builds the
// run result. An empty scored list yields a partial result, not a failure.
type AggregatorAgent struct {
	BaseAgent
}

// NewAggregatorAgent creates the aggregate stage handler
func NewAggregatorAgent(deps Deps) *AggregatorAgent {
	return &AggregatorAgent{BaseAgent: NewBaseAgent(models.StepAggregate, deps)}
}

// Run writes output files and sets the state's run result
func (a *AggregatorAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()

	outputDir := a.deps.Config.Output.Dir
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	formats := state.Config.OutputFormats
	if len(formats) == 0 {
		formats = a.deps.Config.Output.Formats
	}

	var outputFiles []string
	for _, format := range formats {
		switch format {
		case "csv":
			path := filepath.Join(outputDir, fmt.Sprintf("%s_results.csv", state.Config.RunID))
			if err := a.writeCSV(state, path); err != nil {
				a.RecordError(state, err, "", "")
				continue
			}
			outputFiles = append(outputFiles, path)
		case "json":
			path := filepath.Join(outputDir, fmt.Sprintf("%s_summary.json", state.Config.RunID))
			if err := a.writeSummaryJSON(state, path); err != nil {
				a.RecordError(state, err, "", "")
				continue
			}
			outputFiles = append(outputFiles, path)
		default:
			a.deps.Logger.Warn().Str("format", format).Msg("Unknown output format, skipping")
		}
	}

	status := models.RunSuccess
	if len(state.ScoredJobs) == 0 {
		status = models.RunPartial
	}

	result := state.BuildResult(status, time.Since(start))
	result.OutputFiles = outputFiles
	state.RunResult = result

	a.deps.Logger.Info().
		Strs("output_files", outputFiles).
		Str("status", string(status)).
		Msg("Aggregation complete")
	a.LogEnd(start)
	return nil
}

// writeCSV writes the ranked results table
func (a *AggregatorAgent) writeCSV(state *models.PipelineState, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Rank", "Score", "Recommendation", "Company", "Title", "Location",
		"Remote Type", "Posted Date", "Salary Range", "Skill Match",
		"Skill Gaps", "Fit Summary", "Apply URL",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, sj := range state.ScoredJobs {
		job := sj.Job
		report := sj.FitReport

		salary := ""
		if job.SalaryMin > 0 && job.SalaryMax > 0 {
			salary = fmt.Sprintf("%d-%d %s", job.SalaryMin, job.SalaryMax, firstNonEmpty(job.Currency, "USD"))
		} else if job.SalaryMin > 0 {
			salary = fmt.Sprintf("%d+ %s", job.SalaryMin, firstNonEmpty(job.Currency, "USD"))
		}

		row := []string{
			strconv.Itoa(sj.Rank),
			strconv.Itoa(report.Score),
			string(report.Recommendation),
			job.CompanyName,
			job.Title,
			job.Location,
			string(job.RemoteType),
			job.PostedDate,
			salary,
			strings.Join(report.SkillOverlap, ", "),
			strings.Join(report.SkillGaps, ", "),
			report.Summary,
			job.ApplyURL,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	a.deps.Logger.Info().Str("path", path).Int("rows", len(state.ScoredJobs)).Msg("CSV written")
	return nil
}

// runSummary is the JSON summary file shape
type runSummary struct {
	RunID              string  `json:"run_id"`
	CompaniesAttempted int     `json:"companies_attempted"`
	JobsScraped        int     `json:"jobs_scraped"`
	JobsScored         int     `json:"jobs_scored"`
	TotalTokens        int     `json:"total_tokens"`
	EstimatedCostUSD   float64 `json:"estimated_cost_usd"`
	Errors             int     `json:"errors"`
	DiscoveryIteration int     `json:"discovery_iteration"`
}

// writeSummaryJSON writes the run summary record
func (a *AggregatorAgent) writeSummaryJSON(state *models.PipelineState, path string) error {
	summary := runSummary{
		RunID:              state.Config.RunID,
		CompaniesAttempted: len(state.Companies),
		JobsScraped:        len(state.RawJobs),
		JobsScored:         len(state.ScoredJobs),
		TotalTokens:        state.TotalTokens,
		EstimatedCostUSD:   state.TotalCostUSD,
		Errors:             len(state.Errors),
		DiscoveryIteration: state.DiscoveryIteration,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	a.deps.Logger.Info().Str("path", path).Msg("Summary written")
	return nil
}
