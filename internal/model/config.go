package model

import "time"

// Config holds the complete fever configuration
type Config struct {
	Database     DatabaseConfig     `yaml:"database" mapstructure:"database"`
	Reader       ReaderConfig       `yaml:"reader" mapstructure:"reader"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Scorer       ScorerConfig       `yaml:"scorer" mapstructure:"scorer"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig locates the document store
type DatabaseConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite file with the documents table
}

// ReaderConfig controls instance assembly
type ReaderConfig struct {
	Strategy string   `yaml:"strategy" mapstructure:"strategy"` // concatenate, separate
	Seed     uint64   `yaml:"seed" mapstructure:"seed"`         // Seed for sentinel line sampling
	Labels   []string `yaml:"labels" mapstructure:"labels"`     // Label vocabulary in score order
}

// CacheConfig controls the in-memory document line cache
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ConcurrencyConfig controls batch prediction workers
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig throttles scorer requests
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ScorerConfig selects the model backend that produces per-class scores
type ScorerConfig struct {
	Kind       string `yaml:"kind" mapstructure:"kind"`               // file, openai
	ScoresPath string `yaml:"scores_path" mapstructure:"scores_path"` // JSONL scores for the file scorer
	Model      string `yaml:"model" mapstructure:"model"`
	APIKey     string `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL    string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout    int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// LoggingConfig controls the structured logger
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "data/fever/fever.db",
		},
		Reader: ReaderConfig{
			Strategy: "concatenate",
			Seed:     1234,
			Labels:   DefaultLabels(),
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             30 * time.Minute,
			CleanupInterval: 10 * time.Minute,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Scorer: ScorerConfig{
			Kind:    "file",
			Model:   "gpt-4o-mini",
			Timeout: 30,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
