// Package pipeline runs extraction, generation, reconciliation and
// rewriting for one source file at a time.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mvp-joe/docsync/internal/extract"
	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/rewrite"
)

// Components are the collaborators a Runner drives.
type Components struct {
	Extractor extract.Extractor
	Generator *generate.Generator
	Rewriter  rewrite.Rewriter
}

// Options configures a Runner.
type Options struct {
	Mode   generate.Mode
	DryRun bool // compute the rewritten buffer but leave the file untouched
}

// Result summarizes one run.
type Result struct {
	RunID     string
	Path      string
	State     State
	Methods   []extract.Method // with Annotation attached
	Annotated int
	Failures  []*generate.ItemError

	// Bulk mode only.
	Mismatch bool
	Expected int
	Received int

	Output  []byte // rewritten buffer
	Changed bool   // Output differs from the original source
	Written bool
}

// Runner executes the pipeline. Runs are serialized; a Runner is safe to
// share between the CLI and the watcher callback.
type Runner struct {
	comp     Components
	opts     Options
	logger   *zap.Logger
	progress ProgressReporter

	runMu sync.Mutex

	writtenMu sync.Mutex
	written   map[string][sha256.Size]byte
}

// NewRunner creates a Runner. A nil logger or progress reporter disables them.
func NewRunner(comp Components, opts Options, logger *zap.Logger, progress ProgressReporter) (*Runner, error) {
	if comp.Extractor == nil || comp.Generator == nil || comp.Rewriter == nil {
		return nil, fmt.Errorf("extractor, generator and rewriter are required")
	}
	switch opts.Mode {
	case generate.ModeBulk, generate.ModeSequential:
	case "":
		opts.Mode = generate.ModeBulk
	default:
		return nil, fmt.Errorf("unknown generation mode: %s", opts.Mode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	return &Runner{
		comp:     comp,
		opts:     opts,
		logger:   logger,
		progress: progress,
		written:  make(map[string][sha256.Size]byte),
	}, nil
}

// Run processes path: Idle → Extracting → Generating → Reconciling (bulk) →
// Rewriting → Done. Extraction and rewriting errors are fatal, as are
// generation errors in bulk mode. Sequential per-method failures are
// collected in Result.Failures and the run continues.
func (r *Runner) Run(ctx context.Context, path string) (*Result, error) {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	res := &Result{
		RunID: uuid.NewString(),
		Path:  path,
		State: StateIdle,
	}
	logger := r.logger.With(zap.String("run_id", res.RunID), zap.String("path", path))

	fail := func(err error) (*Result, error) {
		res.State = StateFailed
		logger.Error("pipeline failed", zap.Error(err))
		return res, err
	}

	res.State = StateExtracting
	source, methods, err := extract.ExtractFile(r.comp.Extractor, path)
	if err != nil {
		return fail(err)
	}
	logger.Info("extracted methods", zap.Int("count", len(methods)))
	r.progress.OnExtractionComplete(path, len(methods))

	res.State = StateGenerating
	r.progress.OnGenerationStart(r.opts.Mode, len(methods))

	var annotations []string
	switch r.opts.Mode {
	case generate.ModeSequential:
		var failures []*generate.ItemError
		annotations, failures, err = r.comp.Generator.Sequential(ctx, methods, func(i int, err error) {
			r.progress.OnMethodGenerated(i, methods[i].Name, err)
		})
		res.Failures = failures
		if err != nil {
			return fail(fmt.Errorf("generation cancelled: %w", err))
		}

	default:
		reconciliation, err := r.comp.Generator.Bulk(ctx, methods)
		if err != nil {
			return fail(err)
		}
		res.State = StateReconciling
		res.Mismatch = reconciliation.Mismatch()
		res.Expected = reconciliation.Expected
		res.Received = reconciliation.Received
		annotations = reconciliation.Annotations
	}

	for i := range methods {
		if i < len(annotations) && annotations[i] != "" {
			methods[i].Annotation = annotations[i]
			res.Annotated++
		}
	}
	res.Methods = methods
	r.progress.OnGenerationComplete(res.Annotated, len(res.Failures))

	res.State = StateRewriting
	res.Output = r.comp.Rewriter.Apply(source, methods)
	res.Changed = !bytes.Equal(source, res.Output)

	if res.Changed && !r.opts.DryRun {
		if err := rewrite.WriteFile(path, res.Output); err != nil {
			return fail(err)
		}
		res.Written = true
		r.recordWrite(path, res.Output)
	}
	r.progress.OnRewriteComplete(path, res.Written)

	res.State = StateDone
	logger.Info("pipeline complete",
		zap.Int("methods", len(methods)),
		zap.Int("annotated", res.Annotated),
		zap.Int("failed", len(res.Failures)),
		zap.Bool("written", res.Written))
	return res, nil
}

func (r *Runner) recordWrite(path string, content []byte) {
	r.writtenMu.Lock()
	defer r.writtenMu.Unlock()
	r.written[path] = sha256.Sum256(content)
}

// IsOwnWrite reports whether path still holds exactly what the Runner last
// wrote to it. The watcher uses this to ignore events caused by rewrites.
func (r *Runner) IsOwnWrite(path string) bool {
	r.writtenMu.Lock()
	sum, ok := r.written[path]
	r.writtenMu.Unlock()
	if !ok {
		return false
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return sha256.Sum256(content) == sum
}
