package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mvp-joe/docsync/internal/config"
)

var (
	cfgFile string
	verbose bool

	quietFlag    bool
	dryRunFlag   bool
	modeFlag     string
	strategyFlag string
	rewriterFlag string
	policyFlag   string

	logger *zap.Logger
)

// rootCmd processes one PHP file or every matching file under a directory.
var rootCmd = &cobra.Command{
	Use:   "docsync <file|dir>",
	Short: "Generate PHP docblocks for methods using Claude",
	Long: `docsync extracts the methods of a PHP source file, asks Claude for a
docblock per method and writes the annotations back above each method.

The credential is read from CLAUDE_API_KEY (a .env file in the working
directory is honored). Settings come from .docsync.yaml and DOCSYNC_*
environment variables.

Examples:
  # Annotate a single file with one bulk request
  docsync src/UserService.php

  # One request per method with retries and pacing
  docsync --mode sequential src/UserService.php

  # Annotate every PHP file under src/ without writing anything
  docsync --dry-run src/
`,
	Args:          cobra.ExactArgs(1),
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runSync,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.docsync.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	addRunFlags(rootCmd.Flags())
}

// addRunFlags registers the flags shared by the root and watch commands.
func addRunFlags(flags *pflag.FlagSet) {
	flags.StringVar(&modeFlag, "mode", "", "generation mode: bulk or sequential")
	flags.StringVar(&strategyFlag, "strategy", "", "extraction strategy: regex or treesitter")
	flags.StringVar(&rewriterFlag, "rewriter", "", "rewrite strategy: offset or name")
	flags.StringVar(&policyFlag, "policy", "", "existing docblock policy: prepend or replace (replace needs --rewriter offset)")
	flags.BoolVar(&dryRunFlag, "dry-run", false, "compute annotations without writing files")
	flags.BoolVarP(&quietFlag, "quiet", "q", false, "disable progress bars and non-error output")
}

// newLogger builds a production logger. Only warnings and errors are shown
// unless verbose is set.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// loadConfig loads configuration and applies command-line overrides.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(flags, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over cfg and revalidates it.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	if flags.Changed("mode") {
		cfg.Generation.Mode = modeFlag
	}
	if flags.Changed("strategy") {
		cfg.Extraction.Strategy = strategyFlag
	}
	if flags.Changed("rewriter") {
		cfg.Rewrite.Strategy = rewriterFlag
	}
	if flags.Changed("policy") {
		cfg.Rewrite.DocblockPolicy = policyFlag
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}
