package cli

import (
	"io"

	"github.com/fatih/color"

	"github.com/mvp-joe/docsync/internal/pipeline"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// printResult writes a one-line outcome for a run followed by any warnings.
func printResult(w io.Writer, res *pipeline.Result, err error) {
	if err != nil {
		path := ""
		if res != nil {
			path = res.Path + ": "
		}
		errorColor.Fprintf(w, "✗ %s%v\n", path, err)
		return
	}

	outcome := "written"
	switch {
	case !res.Changed:
		outcome = "unchanged"
	case !res.Written:
		outcome = "dry run, not written"
	}
	successColor.Fprintf(w, "✓ %s: %d/%d methods annotated (%s)\n",
		res.Path, res.Annotated, len(res.Methods), outcome)

	if res.Mismatch {
		warnColor.Fprintf(w, "  ! expected %d annotations but received %d; placeholders fill the gap and extras are dropped\n",
			res.Expected, res.Received)
	}
	for _, f := range res.Failures {
		warnColor.Fprintf(w, "  ! %s: %v\n", f.Name, f.Err)
	}
}
