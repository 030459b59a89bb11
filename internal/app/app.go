// Package app wires the collaborators and runs the pipeline.
package app

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/agents"
	"github.com/ternarybob/venari/internal/ats"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/costs"
	"github.com/ternarybob/venari/internal/httpclient"
	"github.com/ternarybob/venari/internal/interfaces"
	"github.com/ternarybob/venari/internal/models"
	"github.com/ternarybob/venari/internal/observability"
	"github.com/ternarybob/venari/internal/pipeline"
	"github.com/ternarybob/venari/internal/services/cache"
	"github.com/ternarybob/venari/internal/services/dryrun"
	"github.com/ternarybob/venari/internal/services/llm"
	"github.com/ternarybob/venari/internal/services/mailer"
	"github.com/ternarybob/venari/internal/services/pdf"
	"github.com/ternarybob/venari/internal/services/scraper"
	"github.com/ternarybob/venari/internal/services/search"
)

// App holds the wired pipeline and the resources it owns
type App struct {
	config   *common.Config
	logger   arbor.ILogger
	pipeline *pipeline.AdaptivePipeline
	llm      interfaces.LLMService
	cache    interfaces.CacheService
}

// New wires all collaborators for a run. Dry runs substitute offline fakes
// for every external service; forceRescrape skips cache wiring so every
// page and career URL is fetched fresh.
func New(config *common.Config, dryRun, forceRescrape bool, logger arbor.ILogger) (*App, error) {
	app := &App{config: config, logger: logger}

	var (
		llmService   interfaces.LLMService
		searchSvc    interfaces.SearchService
		pageScraper  interfaces.PageScraper
		pdfExtractor interfaces.PDFExtractor
		err          error
	)

	if dryRun {
		logger.Info().Msg("Dry run: using offline fakes for all external collaborators")
		llmService = dryrun.NewFakeLLMService(logger)
		searchSvc = dryrun.NewFakeSearchService()
		pageScraper = dryrun.NewFakePageScraper()
		pdfExtractor = dryrun.NewFakePDFExtractor()
	} else {
		llmService, err = llm.NewLLMService(config, logger)
		if err != nil {
			return nil, err
		}
		app.llm = llmService

		if config.Cache.Enabled && !forceRescrape {
			badgerCache, err := cache.NewBadgerCache(&config.Cache, logger)
			if err != nil {
				logger.Warn().Err(err).Msg("Cache unavailable, continuing without it")
			} else {
				app.cache = badgerCache
			}
		}

		pageScraper = scraper.NewService(&config.Scraper, app.cache, logger)
		searchSvc = search.NewDuckDuckGoService(&config.Search, app.cache, logger)
		pdfExtractor = pdf.NewExtractor(logger)
	}

	// Dry runs carry no ATS clients: every career page detects as crawler
	// and is served by the fake page scraper, keeping the run offline.
	var atsClients []interfaces.ATSClient
	if !dryRun {
		atsClients = ats.NewClients(
			httpclient.NewDefaultHTTPClient(config.Scraper.RequestTimeout),
			pageScraper,
			logger,
		)
	}

	deps := agents.Deps{
		Config:     config,
		LLM:        llmService,
		Search:     searchSvc,
		Scraper:    pageScraper,
		ATSClients: atsClients,
		PDF:        pdfExtractor,
		Mail:       mailer.NewService(&config.SMTP, logger),
		Tracker:    costs.NewTracker(config.Costs.MaxCostPerRunUSD, config.Costs.WarnCostThresholdUSD, logger),
		Tracer:     observability.NewLogTracer(logger),
		Logger:     logger,
	}

	app.pipeline = pipeline.NewAdaptive(config, deps)
	return app, nil
}

// Run executes the adaptive pipeline for one run config
func (a *App) Run(ctx context.Context, runConfig models.RunConfig) (*models.RunResult, error) {
	if runConfig.RunID == "" {
		runConfig.RunID = "run_" + time.Now().UTC().Format("20060102_150405")
	}
	return a.pipeline.Run(ctx, runConfig)
}

// Close releases owned resources
func (a *App) Close() {
	if a.llm != nil {
		if err := a.llm.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}
}
