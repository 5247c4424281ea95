package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	// ConfigFileName is looked up in the root directory.
	ConfigFileName = ".docsync"

	// EnvPrefix prefixes environment overrides, e.g. DOCSYNC_GENERATION_MODE.
	EnvPrefix = "DOCSYNC"

	// APIKeyEnv is the conventional credential variable.
	APIKeyEnv = "CLAUDE_API_KEY"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
// A non-empty configFile replaces the .docsync.yaml lookup.
func NewLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCSYNC_*, CLAUDE_API_KEY), including a .env file
// 2. Config file (.docsync.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	if err := loadDotEnv(filepath.Join(l.rootDir, ".env")); err != nil {
		return nil, err
	}

	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	// Replace . with _ in env var names (e.g., DOCSYNC_GENERATION_MODE)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The first variable set wins.
	v.BindEnv("generation.api_key", EnvPrefix+"_GENERATION_API_KEY", APIKeyEnv)
	v.BindEnv("generation.base_url")
	v.BindEnv("generation.model")
	v.BindEnv("generation.max_tokens")
	v.BindEnv("generation.timeout")
	v.BindEnv("generation.mode")
	v.BindEnv("generation.backoff_base")
	v.BindEnv("generation.max_retries")
	v.BindEnv("generation.pacing_delay")
	v.BindEnv("generation.cache_size")
	v.BindEnv("extraction.strategy")
	v.BindEnv("rewrite.strategy")
	v.BindEnv("rewrite.docblock_policy")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv exports variables from path without overriding ones already set.
// A missing file is not an error.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("generation.api_key", defaults.Generation.APIKey)
	v.SetDefault("generation.base_url", defaults.Generation.BaseURL)
	v.SetDefault("generation.model", defaults.Generation.Model)
	v.SetDefault("generation.max_tokens", defaults.Generation.MaxTokens)
	v.SetDefault("generation.timeout", defaults.Generation.Timeout)
	v.SetDefault("generation.mode", defaults.Generation.Mode)
	v.SetDefault("generation.backoff_base", defaults.Generation.BackoffBase)
	v.SetDefault("generation.max_retries", defaults.Generation.MaxRetries)
	v.SetDefault("generation.pacing_delay", defaults.Generation.PacingDelay)
	v.SetDefault("generation.cache_size", defaults.Generation.CacheSize)

	v.SetDefault("extraction.strategy", defaults.Extraction.Strategy)

	v.SetDefault("rewrite.strategy", defaults.Rewrite.Strategy)
	v.SetDefault("rewrite.docblock_policy", defaults.Rewrite.DocblockPolicy)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
}

// LoadConfig is a convenience function that loads config from the current
// working directory.
func LoadConfig(configFile string) (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd, configFile).Load()
}
