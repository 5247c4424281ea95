package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mvp-joe/docsync/internal/config"
	"github.com/mvp-joe/docsync/internal/rewrite"
	"github.com/mvp-joe/docsync/internal/watcher"
)

// watchCmd re-annotates PHP files as they change.
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Annotate PHP files whenever they change",
	Long: `Watch monitors a directory tree and runs the pipeline on every PHP file
that is created or modified, once changes settle. Files docsync itself just
rewrote are skipped, so a rewrite does not trigger another generation.
Watch always uses the offset rewriter with the replace policy: a docblock
written by an earlier run is replaced, never stacked.

Examples:
  # Watch src/ with one request per method
  docsync watch --mode sequential src/
`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addRunFlags(watchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	if err := applyWatchPolicy(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quietFlag {
		out = io.Discard
	}
	a, err := newApp(cfg, nil, logger, newProgressReporter(out, quietFlag), dryRunFlag, out)
	if err != nil {
		return err
	}
	defer a.Close()

	root, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	fw, err := a.newWatcher(root)
	if err != nil {
		return err
	}
	defer fw.Stop()

	if err := fw.Start(ctx, func(files []string) { a.handleChanges(ctx, files) }); err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", root)
	<-ctx.Done()
	return nil
}

// applyWatchPolicy switches watch runs to the replace policy so that each
// save rewrites the docblock left by the previous run instead of adding
// another one above it.
func applyWatchPolicy(cfg *config.Config) error {
	if rewrite.Strategy(cfg.Rewrite.Strategy) != rewrite.StrategyOffset {
		return fmt.Errorf("watch requires the offset rewriter, got %q", cfg.Rewrite.Strategy)
	}
	cfg.Rewrite.DocblockPolicy = string(rewrite.PolicyReplace)
	return nil
}

// newWatcher watches root for files the configured patterns select.
func (a *app) newWatcher(root string) (watcher.FileWatcher, error) {
	fd, err := a.discovery(root)
	if err != nil {
		return nil, fmt.Errorf("invalid path patterns: %w", err)
	}

	return watcher.NewFileWatcher([]string{root}, watcher.Options{
		Logger: a.logger,
		Filter: func(path string) bool {
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return false
			}
			return fd.Matches(filepath.ToSlash(rel))
		},
	})
}

// handleChanges runs the pipeline on each changed file, skipping files that
// vanished and files whose content is the runner's own last write.
func (a *app) handleChanges(ctx context.Context, files []string) {
	for _, file := range files {
		if ctx.Err() != nil {
			return
		}
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if a.runner.IsOwnWrite(file) {
			a.logger.Debug("skipping own write", zap.String("path", file))
			continue
		}
		res, err := a.runner.Run(ctx, file)
		printResult(a.out, res, err)
	}
}
