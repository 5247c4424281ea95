package pipeline

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docsync/internal/extract"
	"github.com/mvp-joe/docsync/internal/generate"
	"github.com/mvp-joe/docsync/internal/rewrite"
)

// Test Plan for Runner:
// - Bulk run annotates every method and rewrites the file once
// - Bulk mismatch pads with the placeholder and still completes
// - Bulk request failure aborts the run without touching the file
// - Sequential run isolates per-method failures and still rewrites
// - Missing file fails in the extracting stage
// - File without methods completes without writing
// - Dry run leaves the file unchanged
// - IsOwnWrite recognizes the runner's own rewrite until the file changes

const fixturePath = "../../testdata/code/php/user_service.php"

func copyFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "user_service.php")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

type progressRecorder struct {
	NoOpProgressReporter
	extracted int
	generated []int
	annotated int
	written   bool
}

func (p *progressRecorder) OnExtractionComplete(path string, methods int) {
	p.extracted = methods
}

func (p *progressRecorder) OnMethodGenerated(index int, name string, err error) {
	p.generated = append(p.generated, index)
}

func (p *progressRecorder) OnGenerationComplete(annotated, failed int) {
	p.annotated = annotated
}

func (p *progressRecorder) OnRewriteComplete(path string, written bool) {
	p.written = written
}

func newRunner(t *testing.T, client generate.Client, opts Options, progress ProgressReporter) *Runner {
	t.Helper()
	gen := generate.NewGenerator(client, generate.Options{MaxRetries: 1}, nil).WithSleep(noSleep)
	runner, err := NewRunner(Components{
		Extractor: extract.NewRegexExtractor(),
		Generator: gen,
		Rewriter:  rewrite.NewOffsetRewriter(rewrite.PolicyPrepend),
	}, opts, nil, progress)
	require.NoError(t, err)
	return runner
}

func TestRunner_Bulk(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	calls := 0
	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "/** one */\n---\n/** two */\n---\n/** three */\n---\n/** four */\n---\n/** five */", nil
	})
	progress := &progressRecorder{}
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk}, progress)

	res, err := runner.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, res.Annotated)
	assert.False(t, res.Mismatch)
	assert.True(t, res.Written)
	assert.Equal(t, 5, progress.extracted)
	assert.Equal(t, 5, progress.annotated)
	assert.True(t, progress.written)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, string(res.Output), content)

	// Annotations appear in method order.
	last := -1
	for _, doc := range []string{"/** one */", "/** two */", "/** three */", "/** four */", "/** five */"} {
		idx := strings.Index(content, "\n"+doc+"\n")
		require.Greater(t, idx, last, doc)
		last = idx
	}
	assert.Less(t, strings.Index(content, "/** five */"), strings.Index(content, "function legacy"))
}

func TestRunner_BulkMismatchPads(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "/** one */---/** two */", nil
	})
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk}, nil)

	res, err := runner.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.True(t, res.Mismatch)
	assert.Equal(t, 5, res.Expected)
	assert.Equal(t, 2, res.Received)
	assert.Equal(t, 5, res.Annotated)
	assert.Equal(t, 3, strings.Count(string(res.Output), generate.Placeholder))
}

func TestRunner_BulkFailureIsFatal(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", &generate.StatusError{StatusCode: http.StatusInternalServerError}
	})
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk}, nil)

	res, err := runner.Run(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunner_SequentialIsolatesFailures(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "Name: find\n"):
			return "", &generate.StatusError{StatusCode: http.StatusBadRequest}
		case strings.Contains(prompt, "Name: audit\n"):
			return "   ", nil
		default:
			name := prompt[strings.Index(prompt, "Name: ")+6:]
			name = name[:strings.Index(name, "\n")]
			return "/** doc for " + name + " */", nil
		}
	})
	progress := &progressRecorder{}
	runner := newRunner(t, client, Options{Mode: generate.ModeSequential}, progress)

	res, err := runner.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.Equal(t, 3, res.Annotated)
	require.Len(t, res.Failures, 2)
	assert.Equal(t, "find", res.Failures[0].Name)
	assert.Equal(t, "audit", res.Failures[1].Name)
	assert.True(t, errors.Is(res.Failures[1], generate.ErrEmptyAnnotation))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, progress.generated)

	content := string(res.Output)
	assert.Contains(t, content, "\n/** doc for __construct */\n")
	assert.Contains(t, content, "\n/** doc for normalize */\n")
	assert.Contains(t, content, "\n/** doc for legacy */\n")
	assert.NotContains(t, content, "doc for find")
	assert.Empty(t, res.Methods[1].Annotation)
}

func TestRunner_MissingFile(t *testing.T) {
	t.Parallel()

	runner := newRunner(t, generate.ClientFunc(nil), Options{}, nil)
	res, err := runner.Run(context.Background(), filepath.Join(t.TempDir(), "nope.php"))
	require.Error(t, err)
	assert.Equal(t, StateFailed, res.State)
}

func TestRunner_NoMethods(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.php")
	require.NoError(t, os.WriteFile(path, []byte("<?php\necho 'hi';\n"), 0644))

	calls := 0
	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		return "", nil
	})
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk}, nil)

	res, err := runner.Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.Zero(t, calls)
	assert.False(t, res.Changed)
	assert.False(t, res.Written)
}

func TestRunner_DryRun(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "/** a */---/** b */---/** c */---/** d */---/** e */", nil
	})
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk, DryRun: true}, nil)

	res, err := runner.Run(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.Written)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunner_IsOwnWrite(t *testing.T) {
	t.Parallel()

	path := copyFixture(t)
	client := generate.ClientFunc(func(ctx context.Context, prompt string) (string, error) {
		return "/** a */---/** b */---/** c */---/** d */---/** e */", nil
	})
	runner := newRunner(t, client, Options{Mode: generate.ModeBulk}, nil)

	assert.False(t, runner.IsOwnWrite(path))

	_, err := runner.Run(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, runner.IsOwnWrite(path))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\n// edited\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.False(t, runner.IsOwnWrite(path))
}

func TestNewRunner_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(Components{}, Options{}, nil, nil)
	assert.Error(t, err)

	gen := generate.NewGenerator(generate.ClientFunc(nil), generate.DefaultOptions(), nil)
	_, err = NewRunner(Components{
		Extractor: extract.NewRegexExtractor(),
		Generator: gen,
		Rewriter:  rewrite.NewNameRewriter(),
	}, Options{Mode: "parallel"}, nil, nil)
	assert.Error(t, err)
}
