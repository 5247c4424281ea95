package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/pipeline"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	out       io.Writer
	methodBar *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a new CLI progress reporter writing to out.
func NewCLIProgressReporter(out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{out: out}
}

// newProgressReporter returns a silent reporter when quiet is set.
func newProgressReporter(out io.Writer, quiet bool) pipeline.ProgressReporter {
	if quiet {
		return &pipeline.NoOpProgressReporter{}
	}
	return NewCLIProgressReporter(out)
}

func (c *CLIProgressReporter) OnExtractionComplete(path string, methods int) {
	fmt.Fprintf(c.out, "%s: found %d methods\n", path, methods)
}

func (c *CLIProgressReporter) OnGenerationStart(mode generate.Mode, methods int) {
	c.startTime = time.Now()
	if methods == 0 {
		return
	}

	if mode != generate.ModeSequential {
		fmt.Fprintf(c.out, "Requesting %d annotations in one request...\n", methods)
		return
	}

	c.methodBar = progressbar.NewOptions(methods,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Annotating methods"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("methods/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnMethodGenerated(index int, name string, err error) {
	if c.methodBar != nil {
		c.methodBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnGenerationComplete(annotated, failed int) {
	if c.methodBar != nil {
		if !c.methodBar.IsFinished() {
			c.methodBar.Finish()
		}
		c.methodBar = nil
	}
	fmt.Fprintf(c.out, "Generated %d annotations in %.1fs\n", annotated, time.Since(c.startTime).Seconds())
}

func (c *CLIProgressReporter) OnRewriteComplete(path string, written bool) {}
