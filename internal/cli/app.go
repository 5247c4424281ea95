package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mvp-joe/docsync/internal/config"
	"github.com/mvp-joe/docsync/internal/extract"
	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/pipeline"
	"github.com/mvp-joe/docsync/internal/rewrite"
)

// app is the pipeline assembled from configuration.
type app struct {
	cfg    *config.Config
	runner *pipeline.Runner
	logger *zap.Logger
	out    io.Writer
	cache  *generate.CachedClient
}

// newApp wires the Anthropic client, optional completion cache, extractor,
// rewriter and runner.
func newApp(cfg *config.Config, client generate.Client, logger *zap.Logger, progress pipeline.ProgressReporter, dryRun bool, out io.Writer) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		client = generate.NewAnthropicClient(cfg.AnthropicConfig(), logger)
	}

	a := &app{cfg: cfg, logger: logger, out: out}

	if cfg.Generation.CacheSize > 0 {
		cached, err := generate.NewCachedClient(client, cfg.Generation.CacheSize, generate.DefaultCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to create completion cache: %w", err)
		}
		a.cache = cached
		client = cached
	}

	extractor, err := extract.New(extract.Strategy(cfg.Extraction.Strategy))
	if err != nil {
		a.Close()
		return nil, err
	}

	rewriter, err := rewrite.New(rewrite.Strategy(cfg.Rewrite.Strategy), rewrite.Policy(cfg.Rewrite.DocblockPolicy))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.runner, err = pipeline.NewRunner(pipeline.Components{
		Extractor: extractor,
		Generator: generate.NewGenerator(client, cfg.GeneratorOptions(), logger),
		Rewriter:  rewriter,
	}, pipeline.Options{
		Mode:   generate.Mode(cfg.Generation.Mode),
		DryRun: dryRun,
	}, logger, progress)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Close releases the completion cache.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// discovery returns a FileDiscovery over root using the configured patterns.
func (a *app) discovery(root string) (*pipeline.FileDiscovery, error) {
	return pipeline.NewFileDiscovery(root, a.cfg.Paths.Include, a.cfg.Paths.Ignore)
}

// processPath runs the pipeline on a file, or on every discovered file when
// target is a directory. Directory runs continue past failing files and
// report how many failed.
func (a *app) processPath(ctx context.Context, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		res, err := a.runner.Run(ctx, target)
		printResult(a.out, res, err)
		return err
	}

	fd, err := a.discovery(target)
	if err != nil {
		return fmt.Errorf("invalid path patterns: %w", err)
	}
	files, err := fd.Discover()
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}
	a.logger.Info("discovered files", zap.String("root", target), zap.Int("count", len(files)))

	failed := 0
	for _, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		res, err := a.runner.Run(ctx, file)
		printResult(a.out, res, err)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}
