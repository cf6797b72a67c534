package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	internal "github.com/ZanzyTHEbar/vgc-analyzer/vgca"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Analyzer   AnalyzerConfig   `mapstructure:"analyzer"`
	Fetch      FetchConfig      `mapstructure:"fetch"`
	Completion CompletionConfig `mapstructure:"completion"`
	Prompt     PromptConfig     `mapstructure:"prompt"`
	History    HistoryConfig    `mapstructure:"history"`
}

// AnalyzerConfig stores pipeline-level settings.
type AnalyzerConfig struct {
	// Result cache
	CacheEnabled bool          `mapstructure:"cache_enabled"` // Cache parsed results by source URL
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`     // Entry lifetime before lazy eviction

	// Rate limiting toward the completion service
	RateLimitEnabled    bool          `mapstructure:"rate_limit_enabled"`
	RateLimitCapacity   int           `mapstructure:"rate_limit_capacity"`    // Token bucket capacity
	RateLimitRefillRate time.Duration `mapstructure:"rate_limit_refill_rate"` // One token per interval

	// Article text budget handed to the prompt
	ContentBudgetRunes int `mapstructure:"content_budget_runes"`

	// Telemetry and export checks
	EnableTracing  bool `mapstructure:"enable_tracing"`  // Structured span logging
	ValidateExport bool `mapstructure:"validate_export"` // Schema-check exported results
}

// FetchConfig stores article retrieval settings.
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`         // Per-request HTTP timeout
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes"`  // Cap on downloaded HTML
	MinBlockRunes int           `mapstructure:"min_block_runes"` // Minimum div text block length
	IncludeImages bool          `mapstructure:"include_images"`  // Download image payloads for the prompt
	MaxImages     int           `mapstructure:"max_images"`      // Image payloads attached per analysis
	MaxImageBytes int64         `mapstructure:"max_image_bytes"` // Cap per downloaded image
}

// CompletionConfig stores completion service settings.
type CompletionConfig struct {
	Provider        string        `mapstructure:"provider"` // "gemini"
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	Model           string        `mapstructure:"model"`
	Timeout         time.Duration `mapstructure:"timeout"`          // Per completion call, distinct from fetch timeout
	MaxRetries      int           `mapstructure:"max_retries"`      // Bounded retry on transient failures
	RetryBaseDelay  time.Duration `mapstructure:"retry_base_delay"` // Doubles per attempt
	RetryMaxDelay   time.Duration `mapstructure:"retry_max_delay"`  // Backoff ceiling
	MaxOutputTokens int           `mapstructure:"max_output_tokens"`
	Temperature     float32       `mapstructure:"temperature"`
	TopP            float32       `mapstructure:"top_p"`
}

// PromptConfig stores prompt template settings.
type PromptConfig struct {
	TemplatePath  string   `mapstructure:"template_path"`  // Override for the embedded template
	WatchTemplate bool     `mapstructure:"watch_template"` // Hot-reload the template file on change
	Restricted    []string `mapstructure:"restricted"`     // Restricted Pokémon substituted into the template
}

// HistoryConfig stores the embedded analysis history database settings.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
	Type    string `mapstructure:"type"`
	DataDir string `mapstructure:"data_dir"` // Directory for database files
}

var AppConfig Config

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(configPath string) (*Config, error) {
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join("etc", internal.DefaultAppName))
		viper.AddConfigPath(internal.DefaultConfigPath)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Analyzer defaults
	viper.SetDefault("analyzer.cache_enabled", true)
	viper.SetDefault("analyzer.cache_ttl", "24h")
	viper.SetDefault("analyzer.rate_limit_enabled", true)
	viper.SetDefault("analyzer.rate_limit_capacity", 5)
	viper.SetDefault("analyzer.rate_limit_refill_rate", "2s")
	viper.SetDefault("analyzer.content_budget_runes", 8000)
	viper.SetDefault("analyzer.enable_tracing", true)
	viper.SetDefault("analyzer.validate_export", true)

	// Fetch defaults
	viper.SetDefault("fetch.timeout", "15s")
	viper.SetDefault("fetch.max_body_bytes", 2<<20) // 2MiB of HTML
	viper.SetDefault("fetch.min_block_runes", 50)
	viper.SetDefault("fetch.include_images", false)
	viper.SetDefault("fetch.max_images", 4)
	viper.SetDefault("fetch.max_image_bytes", 4<<20) // 4MiB per image

	// Completion defaults (Gemini). The api_key default registers the key
	// so the COMPLETION_API_KEY env override is visible to Unmarshal.
	viper.SetDefault("completion.provider", "gemini")
	viper.SetDefault("completion.api_key", "")
	viper.SetDefault("completion.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("completion.model", "gemini-2.0-flash")
	viper.SetDefault("completion.timeout", "90s")
	viper.SetDefault("completion.max_retries", 3)
	viper.SetDefault("completion.retry_base_delay", "1s")
	viper.SetDefault("completion.retry_max_delay", "8s")
	viper.SetDefault("completion.max_output_tokens", 4096)
	viper.SetDefault("completion.temperature", 0.3)
	viper.SetDefault("completion.top_p", 0.9)

	// Prompt defaults; empty template_path selects the embedded template
	viper.SetDefault("prompt.template_path", "")
	viper.SetDefault("prompt.watch_template", false)
	viper.SetDefault("prompt.restricted", []string{})

	// History defaults (embedded libsql)
	viper.SetDefault("history.enabled", false)
	viper.SetDefault("history.dsn", internal.DefaultDatabaseDSN)
	viper.SetDefault("history.type", internal.DefaultDatabaseType)
	viper.SetDefault("history.data_dir", internal.DefaultDatabaseDir)

	viper.AutomaticEnv()
	// Replace dots with underscores in env var names e.g. completion.api_key becomes COMPLETION_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; defaults and environment variables apply.
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	return &AppConfig, nil
}
