package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Costs       CostConfig       `toml:"costs"`
	Scoring     ScoringConfig    `toml:"scoring"`
	Scraper     ScraperConfig    `toml:"scraper"`
	Search      SearchConfig     `toml:"search"`
	Cache       CacheConfig      `toml:"cache"`
	Output      OutputConfig     `toml:"output"`
	Checkpoint  CheckpointConfig `toml:"checkpoint"`
	Logging     LoggingConfig    `toml:"logging"`
	LLM         LLMConfig        `toml:"llm"`
	Claude      ClaudeConfig     `toml:"claude"`
	Gemini      GeminiConfig     `toml:"gemini"`
	SMTP        SMTPConfig       `toml:"smtp"`
}

// PipelineConfig controls stage execution and the adaptive discovery loop
type PipelineConfig struct {
	AgentTimeoutSeconds    int `toml:"agent_timeout_seconds" validate:"gt=0"`    // Per-stage timeout
	MinRecommendedJobs     int `toml:"min_recommended_jobs" validate:"gt=0"`     // Adaptive loop target
	MaxDiscoveryIterations int `toml:"max_discovery_iterations" validate:"gt=0"` // Adaptive loop budget
}

// CostConfig contains the LLM spend guardrails
type CostConfig struct {
	MaxCostPerRunUSD     float64 `toml:"max_cost_per_run_usd" validate:"gt=0"`
	WarnCostThresholdUSD float64 `toml:"warn_cost_threshold_usd" validate:"gte=0"`
}

// ScoringConfig controls the post-scoring filter
type ScoringConfig struct {
	MinScoreThreshold int `toml:"min_score_threshold" validate:"gte=0,lte=100"`
}

// ScraperConfig contains career-page scraping configuration
type ScraperConfig struct {
	MaxConcurrent      int           `toml:"max_concurrent" validate:"gt=0"` // Scraping fan-out bound
	RequestTimeout     time.Duration `toml:"request_timeout"`
	UserAgent          string        `toml:"user_agent"`
	RequestsPerMinute  int           `toml:"requests_per_minute"`  // Per-domain politeness limit
	EnableJavaScript   bool          `toml:"enable_javascript"`    // chromedp fallback for SPA career pages
	JavaScriptWaitTime time.Duration `toml:"javascript_wait_time"` // Render wait before DOM capture
	MaxBodySize        int           `toml:"max_body_size"`
}

// SearchConfig contains web search configuration for career page discovery
type SearchConfig struct {
	MaxResults     int           `toml:"max_results"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// CacheConfig contains badger cache configuration
type CacheConfig struct {
	Enabled          bool   `toml:"enabled"`
	Path             string `toml:"path"`
	PageTTLHours     int    `toml:"page_ttl_hours"`
	CareerURLTTLDays int    `toml:"career_url_ttl_days"`
}

// OutputConfig controls aggregate stage file generation
type OutputConfig struct {
	Dir     string   `toml:"dir"`
	Formats []string `toml:"formats"` // "csv", "json"
}

// CheckpointConfig gates crash-recovery snapshots
type CheckpointConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// LoggingConfig mirrors the arbor writer setup
type LoggingConfig struct {
	Level      string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output     []string `toml:"output"` // "stdout", "file"
	TimeFormat string   `toml:"time_format"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
)

// LLMConfig selects the provider used for all completion calls
type LLMConfig struct {
	Provider LLMProvider `toml:"provider" validate:"oneof=claude gemini"`
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey     string  `toml:"api_key"`
	FastModel  string  `toml:"fast_model"`  // Cheap model for extraction-style calls
	SmartModel string  `toml:"smart_model"` // High-quality model for discovery and scoring
	MaxTokens  int     `toml:"max_tokens"`
	Timeout    string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey     string  `toml:"api_key"`
	FastModel  string  `toml:"fast_model"`
	SmartModel string  `toml:"smart_model"`
	Timeout    string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// SMTPConfig contains notifier email settings
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	From     string `toml:"from"`
	To       string `toml:"to"`
	UseTLS   bool   `toml:"use_tls"`
}

// DefaultConfig returns a config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Pipeline: PipelineConfig{
			AgentTimeoutSeconds:    300,
			MinRecommendedJobs:     10,
			MaxDiscoveryIterations: 3,
		},
		Costs: CostConfig{
			MaxCostPerRunUSD:     5.0,
			WarnCostThresholdUSD: 2.0,
		},
		Scoring: ScoringConfig{
			MinScoreThreshold: 60,
		},
		Scraper: ScraperConfig{
			MaxConcurrent:      5,
			RequestTimeout:     30 * time.Second,
			UserAgent:          "Mozilla/5.0 (compatible; JobHunter/1.0)",
			RequestsPerMinute:  20,
			EnableJavaScript:   true,
			JavaScriptWaitTime: 3 * time.Second,
			MaxBodySize:        5 * 1024 * 1024,
		},
		Search: SearchConfig{
			MaxResults:     5,
			RequestTimeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:          true,
			Path:             "./data/cache",
			PageTTLHours:     24,
			CareerURLTTLDays: 7,
		},
		Output: OutputConfig{
			Dir:     "./output",
			Formats: []string{"csv", "json"},
		},
		Checkpoint: CheckpointConfig{
			Enabled: true,
			Dir:     "./output/checkpoints",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		LLM: LLMConfig{
			Provider: LLMProviderClaude,
		},
		Claude: ClaudeConfig{
			FastModel:   "claude-haiku-4-5-20251001",
			SmartModel:  "claude-sonnet-4-5-20250514",
			MaxTokens:   8192,
			Timeout:     "5m",
			Temperature: 0.2,
		},
		Gemini: GeminiConfig{
			FastModel:   "gemini-3-flash-preview",
			SmartModel:  "gemini-3-flash-preview",
			Timeout:     "5m",
			Temperature: 0.2,
		},
		SMTP: SMTPConfig{
			Port:   587,
			UseTLS: true,
		},
	}
}

// LoadFromFiles loads configuration: defaults -> file(s) -> environment.
// Later files override earlier ones; environment variables override files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks configuration invariants via struct tags
func Validate(config *Config) error {
	v := validator.New()
	if err := v.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if config.Costs.WarnCostThresholdUSD > config.Costs.MaxCostPerRunUSD {
		return fmt.Errorf("invalid configuration: warn_cost_threshold_usd %.2f exceeds max_cost_per_run_usd %.2f",
			config.Costs.WarnCostThresholdUSD, config.Costs.MaxCostPerRunUSD)
	}
	return nil
}

// applyEnvOverrides overlays VENARI_* environment variables onto the config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("VENARI_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("VENARI_CLAUDE_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("VENARI_GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("VENARI_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = LLMProvider(strings.ToLower(v))
	}
	if v := os.Getenv("VENARI_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("VENARI_CHECKPOINT_DIR"); v != "" {
		config.Checkpoint.Dir = v
	}
	if v := os.Getenv("VENARI_OUTPUT_DIR"); v != "" {
		config.Output.Dir = v
	}
	if v := os.Getenv("VENARI_MAX_COST_PER_RUN_USD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Costs.MaxCostPerRunUSD = f
		}
	}
	if v := os.Getenv("VENARI_MAX_CONCURRENT_SCRAPERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Scraper.MaxConcurrent = n
		}
	}
	if v := os.Getenv("VENARI_SMTP_PASSWORD"); v != "" {
		config.SMTP.Password = v
	}
}
