package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/venari/internal/app"
	"github.com/ternarybob/venari/internal/common"
	"github.com/ternarybob/venari/internal/models"
)

// configPaths is a custom flag type that allows multiple -config flags
type configPaths []string

func (c *configPaths) String() string {
	return fmt.Sprintf("%v", *c)
}

func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles  configPaths
	resumePath   = flag.String("resume", "", "Path to the resume PDF")
	prefsText    = flag.String("prefs", "", "Freeform job preferences text")
	prefsFile    = flag.String("prefs-file", "", "File containing freeform job preferences")
	runID        = flag.String("run-id", "", "Run identifier (reuse to resume from checkpoint)")
	companyLimit = flag.Int("company-limit", 0, "Cap companies per discovery iteration")
	dryRun       = flag.Bool("dry-run", false, "Run offline with fake collaborators, skip email")
	forceScrape  = flag.Bool("force-rescrape", false, "Bypass page and career URL caches")
	showVersion  = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Venari version %s\n", common.GetVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	if len(configFiles) == 0 {
		if _, err := os.Stat("venari.toml"); err == nil {
			configFiles = append(configFiles, "venari.toml")
		}
	}

	config, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	logger := common.SetupLogger(config)
	common.PrintBanner(config, logger)

	preferences, err := resolvePreferences()
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid preferences input")
		os.Exit(1)
	}
	if *resumePath == "" && !*dryRun {
		logger.Fatal().Msg("A resume PDF is required (-resume)")
		os.Exit(1)
	}

	application, err := app.New(config, *dryRun, *forceScrape, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
		os.Exit(1)
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := application.Run(ctx, models.RunConfig{
		RunID:           *runID,
		ResumePath:      *resumePath,
		PreferencesText: preferences,
		DryRun:          *dryRun,
		ForceRescrape:   *forceScrape,
		CompanyLimit:    *companyLimit,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Pipeline failed")
		os.Exit(1)
	}

	printResult(result)
	if result.Status != models.RunSuccess {
		os.Exit(1)
	}
}

// resolvePreferences reads the preferences text from flag or file
func resolvePreferences() (string, error) {
	if *prefsText != "" {
		return *prefsText, nil
	}
	if *prefsFile != "" {
		data, err := os.ReadFile(*prefsFile)
		if err != nil {
			return "", fmt.Errorf("failed to read preferences file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if *dryRun {
		return "Remote ML engineering roles", nil
	}
	return "", fmt.Errorf("preferences are required (-prefs or -prefs-file)")
}

// printResult renders the terminal run summary
func printResult(result *models.RunResult) {
	fmt.Printf("\nRun %s finished: %s\n", result.RunID, result.Status)
	fmt.Printf("  Companies attempted: %d (succeeded: %d)\n", result.CompaniesAttempted, result.CompaniesSucceeded)
	fmt.Printf("  Jobs scraped: %d, scored: %d, in output: %d\n", result.JobsScraped, result.JobsScored, result.JobsInOutput)
	fmt.Printf("  Tokens: %d, estimated cost: $%.4f\n", result.TotalTokensUsed, result.EstimatedCostUSD)
	fmt.Printf("  Duration: %.1fs, errors: %d\n", result.DurationSeconds, len(result.Errors))
	for _, file := range result.OutputFiles {
		fmt.Printf("  Output: %s\n", file)
	}
	if result.EmailSent {
		fmt.Printf("  Email sent\n")
	}
}
