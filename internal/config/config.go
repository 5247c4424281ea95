package config

import (
	"time"

	"github.com/mvp-joe/docsync/internal/extract"
	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/rewrite"
)

// Config represents the complete docsync configuration.
// It can be loaded from .docsync.yaml with environment variable overrides.
type Config struct {
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Rewrite    RewriteConfig    `yaml:"rewrite" mapstructure:"rewrite"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
}

// GenerationConfig configures the annotation service and request policy.
type GenerationConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`           // also read from CLAUDE_API_KEY
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`         // messages endpoint root
	Model       string        `yaml:"model" mapstructure:"model"`               // e.g., "claude-3-sonnet-20240229"
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`     // reply token limit per request
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`           // per-request HTTP timeout
	Mode        string        `yaml:"mode" mapstructure:"mode"`                 // "bulk" or "sequential"
	BackoffBase time.Duration `yaml:"backoff_base" mapstructure:"backoff_base"` // first retry delay, doubled per attempt
	MaxRetries  int           `yaml:"max_retries" mapstructure:"max_retries"`   // retries per sequential item
	PacingDelay time.Duration `yaml:"pacing_delay" mapstructure:"pacing_delay"` // pause between sequential items
	CacheSize   int           `yaml:"cache_size" mapstructure:"cache_size"`     // completion cache entries, 0 disables
}

// ExtractionConfig selects how methods are located.
type ExtractionConfig struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"` // "regex" or "treesitter"
}

// RewriteConfig selects how annotations are written back.
type RewriteConfig struct {
	Strategy       string `yaml:"strategy" mapstructure:"strategy"`               // "offset" or "name"
	DocblockPolicy string `yaml:"docblock_policy" mapstructure:"docblock_policy"` // "prepend" or "replace"
}

// PathsConfig defines which files directory runs and watch mode process.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	opts := generate.DefaultOptions()
	return &Config{
		Generation: GenerationConfig{
			BaseURL:     generate.DefaultBaseURL,
			Model:       generate.DefaultModel,
			MaxTokens:   generate.DefaultMaxTokens,
			Timeout:     generate.DefaultTimeout,
			Mode:        string(generate.ModeBulk),
			BackoffBase: opts.BackoffBase,
			MaxRetries:  opts.MaxRetries,
			PacingDelay: opts.PacingDelay,
			CacheSize:   256,
		},
		Extraction: ExtractionConfig{
			Strategy: string(extract.StrategyRegex),
		},
		Rewrite: RewriteConfig{
			Strategy:       string(rewrite.StrategyOffset),
			DocblockPolicy: string(rewrite.PolicyPrepend),
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.php",
			},
			Ignore: []string{
				"vendor/**",
				"node_modules/**",
				".git/**",
				"storage/**",
				"cache/**",
			},
		},
	}
}

// GeneratorOptions converts the request policy into generator options.
func (c *Config) GeneratorOptions() generate.Options {
	return generate.Options{
		BackoffBase: c.Generation.BackoffBase,
		MaxRetries:  c.Generation.MaxRetries,
		PacingDelay: c.Generation.PacingDelay,
		Placeholder: generate.Placeholder,
	}
}

// AnthropicConfig converts the service settings into client configuration.
func (c *Config) AnthropicConfig() generate.AnthropicConfig {
	return generate.AnthropicConfig{
		APIKey:    c.Generation.APIKey,
		BaseURL:   c.Generation.BaseURL,
		Model:     c.Generation.Model,
		MaxTokens: c.Generation.MaxTokens,
		Timeout:   c.Generation.Timeout,
	}
}
