package config

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/mvp-joe/docsync/internal/extract"
	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/rewrite"
)

var (
	// ErrMissingAPIKey indicates no credential for the generation service
	ErrMissingAPIKey = errors.New("missing API key (set " + APIKeyEnv + ")")

	// ErrInvalidMode indicates an unsupported generation mode
	ErrInvalidMode = errors.New("invalid generation mode")

	// ErrEmptyModel indicates missing model name
	ErrEmptyModel = errors.New("empty model")

	// ErrEmptyBaseURL indicates missing service base URL
	ErrEmptyBaseURL = errors.New("empty base URL")

	// ErrInvalidLimit indicates a non-positive token limit or timeout
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidRetryPolicy indicates negative retry, backoff or pacing settings
	ErrInvalidRetryPolicy = errors.New("invalid retry policy")

	// ErrInvalidStrategy indicates an unknown extraction or rewrite strategy
	ErrInvalidStrategy = errors.New("invalid strategy")

	// ErrInvalidPolicy indicates an unknown docblock policy
	ErrInvalidPolicy = errors.New("invalid docblock policy")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateGeneration(&cfg.Generation); err != nil {
		errs = append(errs, err)
	}

	if err := validateExtraction(&cfg.Extraction); err != nil {
		errs = append(errs, err)
	}

	if err := validateRewrite(&cfg.Rewrite); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateGeneration(cfg *GenerationConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.APIKey) == "" {
		errs = append(errs, ErrMissingAPIKey)
	}

	switch generate.Mode(cfg.Mode) {
	case generate.ModeBulk, generate.ModeSequential:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'bulk' or 'sequential', got '%s'", ErrInvalidMode, cfg.Mode))
	}

	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrEmptyModel))
	}

	if strings.TrimSpace(cfg.BaseURL) == "" {
		errs = append(errs, fmt.Errorf("%w: base_url is required", ErrEmptyBaseURL))
	}

	if cfg.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_tokens must be positive, got %d", ErrInvalidLimit, cfg.MaxTokens))
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidLimit, cfg.Timeout))
	}

	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("%w: max_retries cannot be negative, got %d", ErrInvalidRetryPolicy, cfg.MaxRetries))
	}

	if cfg.BackoffBase < 0 || cfg.PacingDelay < 0 {
		errs = append(errs, fmt.Errorf("%w: backoff_base and pacing_delay cannot be negative", ErrInvalidRetryPolicy))
	}

	// Zero disables the cache.
	if cfg.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("%w: cache_size cannot be negative, got %d", ErrInvalidCacheSettings, cfg.CacheSize))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtraction(cfg *ExtractionConfig) error {
	switch extract.Strategy(cfg.Strategy) {
	case extract.StrategyRegex, extract.StrategyTreeSitter:
		return nil
	}
	return fmt.Errorf("%w: extraction must be 'regex' or 'treesitter', got '%s'", ErrInvalidStrategy, cfg.Strategy)
}

func validateRewrite(cfg *RewriteConfig) error {
	var errs []error

	switch rewrite.Strategy(cfg.Strategy) {
	case rewrite.StrategyOffset, rewrite.StrategyName:
	default:
		errs = append(errs, fmt.Errorf("%w: rewrite must be 'offset' or 'name', got '%s'", ErrInvalidStrategy, cfg.Strategy))
	}

	switch rewrite.Policy(cfg.DocblockPolicy) {
	case rewrite.PolicyPrepend, rewrite.PolicyReplace:
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'prepend' or 'replace', got '%s'", ErrInvalidPolicy, cfg.DocblockPolicy))
	}

	if rewrite.Strategy(cfg.Strategy) == rewrite.StrategyName && rewrite.Policy(cfg.DocblockPolicy) == rewrite.PolicyReplace {
		errs = append(errs, fmt.Errorf("%w: 'replace' requires the offset rewriter", ErrInvalidPolicy))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into one that still matches each
// sentinel with errors.Is.
func joinErrors(errs []error) error {
	return multierr.Combine(errs...)
}
