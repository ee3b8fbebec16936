package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "RSS_DIGEST_CONFIG"
	databasePathEnv = "RSS_DIGEST_DB"
	scorerKeyEnv    = "SCORER_API_KEY"
	scorerModelEnv  = "SCORER_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Feeds      []FeedConfig     `yaml:"feeds"`
	Processing ProcessingConfig `yaml:"processing"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	Scorer     ScorerConfig     `yaml:"scorer"`
	Staging    StagingConfig    `yaml:"staging"`
	Output     OutputConfig     `yaml:"output"`
	Retention  RetentionConfig  `yaml:"retention"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DatabaseConfig locates the SQLite article store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// FeedConfig describes a single syndicated source.
type FeedConfig struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
	MaxItems int    `yaml:"maxItems"`
}

// ProcessingConfig drives the filter pipeline stages.
type ProcessingConfig struct {
	RemoveDuplicates *bool    `yaml:"removeDuplicates"`
	IncludeKeywords  []string `yaml:"includeKeywords"`
	ExcludeKeywords  []string `yaml:"excludeKeywords"`
	MaxAgeHours      int      `yaml:"maxAgeHours"`
	SortBy           string   `yaml:"sortBy"`
}

// Dedup resolves the optional removeDuplicates flag; unset means enabled.
func (p ProcessingConfig) Dedup() bool {
	if p.RemoveDuplicates == nil {
		return true
	}
	return *p.RemoveDuplicates
}

// ScraperConfig bounds the full-text scraper.
type ScraperConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	RetryAttempts int           `yaml:"retryAttempts"`
	RatePerSecond float64       `yaml:"ratePerSecond"`
	UserAgent     string        `yaml:"userAgent"`
}

// ScorerConfig defines how to contact the external relevance scorer.
type ScorerConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	Prompt   string `yaml:"prompt"`
}

// StagingConfig roots the scrape/convert/score working directories.
type StagingConfig struct {
	Dir string `yaml:"dir"`
}

// OutputConfig locates rendered digests.
type OutputConfig struct {
	Dir string `yaml:"dir"`
}

// RetentionConfig bounds how long stored articles are kept.
type RetentionConfig struct {
	Days int `yaml:"days"`
}

// LoggingConfig selects log verbosity and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. A missing or unparsable file degrades to defaults with a
// warning; it never aborts the run.
func Load() Config {
	cfg := defaultConfig()

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = "config.yaml"
	}

	if raw, err := os.ReadFile(path); err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
	} else {
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = mergeConfig(cfg, fileCfg)
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(scorerKeyEnv); v != "" {
		c.Scorer.APIKey = v
	}

	if v := os.Getenv(scorerModelEnv); v != "" {
		c.Scorer.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Processing.RemoveDuplicates != nil {
		base.Processing.RemoveDuplicates = override.Processing.RemoveDuplicates
	}
	if override.Processing.IncludeKeywords != nil {
		base.Processing.IncludeKeywords = override.Processing.IncludeKeywords
	}
	if override.Processing.ExcludeKeywords != nil {
		base.Processing.ExcludeKeywords = override.Processing.ExcludeKeywords
	}
	if override.Processing.MaxAgeHours != 0 {
		base.Processing.MaxAgeHours = override.Processing.MaxAgeHours
	}
	if override.Processing.SortBy != "" {
		base.Processing.SortBy = override.Processing.SortBy
	}

	if override.Scraper.Timeout != 0 {
		base.Scraper.Timeout = override.Scraper.Timeout
	}
	if override.Scraper.RetryAttempts != 0 {
		base.Scraper.RetryAttempts = override.Scraper.RetryAttempts
	}
	if override.Scraper.RatePerSecond != 0 {
		base.Scraper.RatePerSecond = override.Scraper.RatePerSecond
	}
	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}

	if override.Scorer.Endpoint != "" {
		base.Scorer.Endpoint = override.Scorer.Endpoint
	}
	if override.Scorer.Model != "" {
		base.Scorer.Model = override.Scorer.Model
	}
	if override.Scorer.APIKey != "" {
		base.Scorer.APIKey = override.Scorer.APIKey
	}
	if override.Scorer.Prompt != "" {
		base.Scorer.Prompt = override.Scorer.Prompt
	}

	if override.Staging.Dir != "" {
		base.Staging = override.Staging
	}
	if override.Output.Dir != "" {
		base.Output = override.Output
	}
	if override.Retention.Days != 0 {
		base.Retention = override.Retention
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "data/rss_digest.db"},
		Processing: ProcessingConfig{
			MaxAgeHours: 24,
			SortBy:      "time",
		},
		Scraper: ScraperConfig{
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RatePerSecond: 1,
			UserAgent:     "RSSDigest/1.0",
		},
		Scorer: ScorerConfig{
			Endpoint: "https://api.deepseek.com/chat/completions",
			Model:    "deepseek-chat",
			Prompt:   defaultScorerPrompt,
		},
		Staging:   StagingConfig{Dir: "data/pages"},
		Output:    OutputConfig{Dir: "data/output"},
		Retention: RetentionConfig{Days: 30},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

const defaultScorerPrompt = `Rate the following document. Respond with a single JSON object ` +
	`containing "title", "published", "source", "brief", "summary" and a "rating" map of ` +
	`integer sub-scores from 0 to 10. The rating must include "accuracy", "practical_value" ` +
	`and "potential_impact" plus any topical categories you find relevant.`
