package pipeline

import "github.com/mvp-joe/docsync/internal/generate"

// ProgressReporter provides callbacks for reporting pipeline progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnExtractionComplete is called after methods have been extracted from path.
	OnExtractionComplete(path string, methods int)

	// OnGenerationStart is called before annotations are requested.
	OnGenerationStart(mode generate.Mode, methods int)

	// OnMethodGenerated is called after each sequential request; err is nil on success.
	OnMethodGenerated(index int, name string, err error)

	// OnGenerationComplete is called once all annotations are known.
	OnGenerationComplete(annotated, failed int)

	// OnRewriteComplete is called after the buffer is rewritten (and written unless dry-run).
	OnRewriteComplete(path string, written bool)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnExtractionComplete(path string, methods int)       {}
func (n *NoOpProgressReporter) OnGenerationStart(mode generate.Mode, methods int)   {}
func (n *NoOpProgressReporter) OnMethodGenerated(index int, name string, err error) {}
func (n *NoOpProgressReporter) OnGenerationComplete(annotated, failed int)          {}
func (n *NoOpProgressReporter) OnRewriteComplete(path string, written bool)         {}
