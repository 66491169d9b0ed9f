package model

import "time"

// Config holds the full application configuration
type Config struct {
	Ledger       LedgerConfig      `mapstructure:"ledger" yaml:"ledger"`
	Output       OutputConfig      `mapstructure:"output" yaml:"output"`
	Cache        CacheConfig       `mapstructure:"cache" yaml:"cache"`
	LLM          LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Concurrency  ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimiting RateLimitConfig   `mapstructure:"rate_limiting" yaml:"rate_limiting"`
}

// LedgerConfig locates the shared append-only ledger
type LedgerConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// OutputConfig controls artifact emission
type OutputConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// CacheConfig controls the LLM summary cache
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir     string        `mapstructure:"dir" yaml:"dir"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// LLMConfig configures the optional report summarizer.
// The summarizer never affects scoring or certification.
type LLMConfig struct {
	Provider       string `mapstructure:"provider" yaml:"provider"`
	Model          string `mapstructure:"model" yaml:"model"`
	APIKey         string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout        int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	StrictEvidence bool   `mapstructure:"strict_evidence" yaml:"strict_evidence"`
	MaxTokens      int    `mapstructure:"max_tokens" yaml:"max_tokens"`
}

// ConcurrencyConfig sets batch parallelism
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// RateLimitConfig throttles LLM traffic in batch mode
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Path: "ledger.jsonl",
		},
		Output: OutputConfig{
			Verbose: false,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "", // resolved to $HOME/.hkp/cache by the CLI
			TTL:     24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:       "", // disabled by default
			Timeout:        30,
			StrictEvidence: true,
			MaxTokens:      600,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
	}
}
