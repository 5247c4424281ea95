// Package generate turns extracted methods into docblock annotations using
// an external text-generation service.
//
// Bulk mode sends one request for every method and treats any failure as
// fatal for the whole batch. Sequential mode sends one request per method,
// retries rate limits with exponential backoff, and isolates failures to
// the method they happened on.
package generate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mvp-joe/docsync/internal/extract"
)

// Mode selects how annotations are requested.
type Mode string

const (
	ModeBulk       Mode = "bulk"
	ModeSequential Mode = "sequential"
)

// Options configures the Generator.
type Options struct {
	// BackoffBase is the first retry delay; each later retry doubles it.
	BackoffBase time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// PacingDelay separates consecutive sequential requests.
	PacingDelay time.Duration
	// Placeholder pads short bulk replies. Empty means Placeholder.
	Placeholder string
}

// DefaultOptions returns the default pacing and retry settings.
func DefaultOptions() Options {
	return Options{
		BackoffBase: time.Second,
		MaxRetries:  5,
		PacingDelay: 500 * time.Millisecond,
		Placeholder: Placeholder,
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ItemError is a sequential-mode failure isolated to one method.
type ItemError struct {
	Index int
	Name  string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("method %d (%s): %v", e.Index+1, e.Name, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Generator requests annotations for methods.
type Generator struct {
	client Client
	opts   Options
	logger *zap.Logger
	sleep  SleepFunc
}

// NewGenerator creates a Generator. A nil logger disables logging.
func NewGenerator(client Client, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Generator{
		client: client,
		opts:   opts,
		logger: logger,
		sleep:  sleepContext,
	}
}

// WithSleep replaces the function used for backoff and pacing delays.
func (g *Generator) WithSleep(fn SleepFunc) *Generator {
	g.sleep = fn
	return g
}

// Bulk requests every annotation in a single call and reconciles the reply
// to len(methods) items. Any request failure is returned as-is.
func (g *Generator) Bulk(ctx context.Context, methods []extract.Method) (Reconciliation, error) {
	if len(methods) == 0 {
		return Reconcile(0, nil, "", g.opts.Placeholder), nil
	}

	content, err := g.client.Complete(ctx, BulkPrompt(methods))
	if err != nil {
		return Reconciliation{}, fmt.Errorf("bulk generation failed: %w", err)
	}

	result := Reconcile(len(methods), SplitSegments(content), content, g.opts.Placeholder)
	if result.Mismatch() {
		g.logger.Warn("mismatch between number of methods and generated docblocks",
			zap.Int("methods", result.Expected),
			zap.Int("docblocks", result.Received),
			zap.String("response", content))
	}
	return result, nil
}

// ItemObserver is notified after each sequential item; err is nil on success.
type ItemObserver func(index int, err error)

// Sequential requests one annotation per method. The returned slice has
// len(methods) entries; failed methods get "" and an ItemError. Only context
// cancellation stops the loop early.
func (g *Generator) Sequential(ctx context.Context, methods []extract.Method, observe ItemObserver) ([]string, []*ItemError, error) {
	annotations := make([]string, len(methods))
	var failures []*ItemError

	for i, m := range methods {
		text, err := g.completeWithRetry(ctx, MethodPrompt(m), m.Name)
		if err != nil {
			if ctx.Err() != nil {
				return annotations, failures, ctx.Err()
			}
			itemErr := &ItemError{Index: i, Name: m.Name, Err: err}
			failures = append(failures, itemErr)
			g.logger.Warn("failed to generate docblock",
				zap.Int("index", i),
				zap.String("method", m.Name),
				zap.Error(err))
		} else {
			annotations[i] = text
		}

		if observe != nil {
			observe(i, err)
		}

		if i < len(methods)-1 {
			if err := g.sleep(ctx, g.opts.PacingDelay); err != nil {
				return annotations, failures, err
			}
		}
	}

	return annotations, failures, nil
}

// completeWithRetry retries retryable failures with delays base, base*2,
// base*4, ... for at most MaxRetries retries.
func (g *Generator) completeWithRetry(ctx context.Context, prompt, name string) (string, error) {
	for attempt := 0; ; attempt++ {
		text, err := g.client.Complete(ctx, prompt)
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				return "", ErrEmptyAnnotation
			}
			return text, nil
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !IsRetryable(err) {
			return "", err
		}
		if attempt >= g.opts.MaxRetries {
			return "", fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, attempt, err)
		}

		delay := g.opts.BackoffBase * time.Duration(1<<uint(attempt))
		g.logger.Debug("retrying after retryable failure",
			zap.String("method", name),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		if err := g.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
