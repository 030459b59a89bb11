package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/venari/internal/ats"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
)

// Source confidence by scrape strategy: ATS APIs return structured records,
// the crawler returns page content that still needs LLM extraction.
const (
	apiSourceConfidence     = 0.95
	crawlerSourceConfidence = 0.7
)

// scrapeOutcome is one company's contribution, funneled back to the stage
// handler which performs all state mutation serially.
type scrapeOutcome struct {
	companyName string
	jobs        []models.RawJob
	err         error
}

// JobsScraperAgent fetches raw job artifacts for every company under a
// bounded-concurrency fan-out. Per-company failures are recorded as
// non-fatal errors; the coordinator itself never fails the pipeline.
type JobsScraperAgent struct {
	BaseAgent
}

// NewJobsScraperAgent creates the scrape_jobs stage handler
func NewJobsScraperAgent(deps Deps) *JobsScraperAgent {
	return &JobsScraperAgent{BaseAgent: NewBaseAgent(models.StepScrapeJobs, deps)}
}

// Run scrapes all companies concurrently, bounded by max_concurrent
func (a *JobsScraperAgent) Run(ctx context.Context, state *models.PipelineState) error {
	start := a.LogStart()
	a.deps.Logger.Info().Int("companies_count", len(state.Companies)).Msg("Scraping companies")

	maxConcurrent := a.deps.Config.Scraper.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}

	semaphore := make(chan struct{}, maxConcurrent)
	outcomes := make(chan scrapeOutcome, len(state.Companies))
	var wg sync.WaitGroup

	for _, company := range state.Companies {
		wg.Add(1)
		go func(company models.Company) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			jobs, err := a.scrapeCompany(ctx, company)
			outcomes <- scrapeOutcome{companyName: company.Name, jobs: jobs, err: err}
		}(company)
	}

	wg.Wait()
	close(outcomes)

	// Merge contributions serially; the stage handler is the sole mutator
	for outcome := range outcomes {
		if outcome.err != nil {
			a.RecordError(state, outcome.err, outcome.companyName, "")
			continue
		}
		state.RawJobs = append(state.RawJobs, outcome.jobs...)
	}

	a.deps.Logger.Info().Int("raw_jobs_count", len(state.RawJobs)).Msg("Scraping complete")
	a.LogEnd(start)
	return nil
}

// scrapeCompany dispatches one company to its scraping strategy
func (a *JobsScraperAgent) scrapeCompany(ctx context.Context, company models.Company) ([]models.RawJob, error) {
	if company.CareerPage.ScrapeStrategy == models.StrategyAPI {
		return a.scrapeViaAPI(ctx, company)
	}
	return a.scrapeViaCrawler(ctx, company)
}

// scrapeViaAPI calls the ATS client matching the detected ATS type.
// Falls back to the crawler when no client serves the type.
func (a *JobsScraperAgent) scrapeViaAPI(ctx context.Context, company models.Company) ([]models.RawJob, error) {
	client := ats.ClientFor(company.CareerPage.ATSType, a.deps.ATSClients)
	if client == nil {
		return a.scrapeViaCrawler(ctx, company)
	}

	records, err := client.FetchJobs(ctx, company)
	if err != nil {
		return nil, err
	}

	jobs := make([]models.RawJob, 0, len(records))
	for _, record := range records {
		jobs = append(jobs, models.RawJob{
			ID:               common.NewID(),
			CompanyID:        company.ID,
			CompanyName:      company.Name,
			RawJSON:          record,
			SourceURL:        company.CareerPage.URL,
			ScrapeStrategy:   models.StrategyAPI,
			SourceConfidence: apiSourceConfidence,
			ScrapedAt:        time.Now().UTC(),
		})
	}
	return jobs, nil
}

// scrapeViaCrawler fetches the career page and wraps it as one HTML artifact
func (a *JobsScraperAgent) scrapeViaCrawler(ctx context.Context, company models.Company) ([]models.RawJob, error) {
	content, err := a.deps.Scraper.FetchPage(ctx, company.CareerPage.URL)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", company.CareerPage.URL, err)
	}

	return []models.RawJob{{
		ID:               common.NewID(),
		CompanyID:        company.ID,
		CompanyName:      company.Name,
		RawHTML:          content,
		SourceURL:        company.CareerPage.URL,
		ScrapeStrategy:   models.StrategyCrawler,
		SourceConfidence: crawlerSourceConfidence,
		ScrapedAt:        time.Now().UTC(),
	}}, nil
}
