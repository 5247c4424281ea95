// Package rewrite applies generated annotations to a source buffer.
package rewrite

import (
	"fmt"
	"os"

	"github.com/mvp-joe/docsync/internal/extract"
)

// Strategy names a Rewriter implementation.
type Strategy string

const (
	StrategyOffset Strategy = "offset"
	StrategyName   Strategy = "name"
)

// Policy decides what happens to a docblock that already precedes a method.
type Policy string

const (
	// PolicyPrepend inserts the new annotation and leaves any existing docblock in place.
	PolicyPrepend Policy = "prepend"
	// PolicyReplace removes the existing docblock and writes the new annotation in its place.
	PolicyReplace Policy = "replace"
)

// Rewriter applies each method's Annotation to src and returns the new buffer.
// Methods with an empty Annotation are left untouched.
type Rewriter interface {
	Apply(src []byte, methods []extract.Method) []byte
}

// New returns the rewriter for strategy. The name rewriter only prepends, so
// it cannot be combined with PolicyReplace.
func New(strategy Strategy, policy Policy) (Rewriter, error) {
	switch policy {
	case PolicyPrepend, PolicyReplace, "":
	default:
		return nil, fmt.Errorf("unknown docblock policy: %s", policy)
	}

	if strategy == StrategyName && policy == PolicyReplace {
		return nil, fmt.Errorf("docblock policy %s is not supported by the %s rewriter", policy, strategy)
	}

	switch strategy {
	case StrategyOffset, "":
		return NewOffsetRewriter(policy), nil
	case StrategyName:
		return NewNameRewriter(), nil
	default:
		return nil, fmt.Errorf("unknown rewrite strategy: %s", strategy)
	}
}

// WriteFile replaces path's content with buf in a single write. This is not
// an atomic rename: a crash mid-write can leave the file truncated.
func WriteFile(path string, buf []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
