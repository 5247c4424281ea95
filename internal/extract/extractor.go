// Package extract finds method definitions in PHP source text.
//
// Extraction is best-effort. The default extractor is a single regular
// expression whose body terminator is the first closing brace that sits
// alone on its own line, not a brace-depth-balanced match:
//
//   - a method whose body contains a lone "}" line before its real end
//     (an if/foreach block, for example) is truncated at that line;
//   - code that never puts a closing brace alone on a line is not matched;
//   - a file or class docblock followed by a method without its own
//     docblock is matched lazily up to the next method docblock, so that
//     earlier method is swallowed and the match's StartPosition (where a
//     prepended annotation goes) lands above the class declaration.
//     Docblock itself is narrowed to the last block in the match.
//
// Callers that need a complete parse can use NewTreeSitterExtractor, which
// produces the same Method records from a real PHP syntax tree.
package extract

import (
	"fmt"
	"os"
)

// Strategy names an Extractor implementation.
type Strategy string

const (
	StrategyRegex      Strategy = "regex"
	StrategyTreeSitter Strategy = "treesitter"
)

// Extractor produces methods in ascending StartPosition order.
// Content it cannot match is skipped; it never fails on content.
type Extractor interface {
	Extract(source []byte) []Method
}

// New returns the extractor for the given strategy.
func New(strategy Strategy) (Extractor, error) {
	switch strategy {
	case StrategyRegex, "":
		return NewRegexExtractor(), nil
	case StrategyTreeSitter:
		return NewTreeSitterExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown extraction strategy: %s", strategy)
	}
}

// ExtractFile reads path and extracts its methods. Only reading the file can fail.
func ExtractFile(e Extractor, path string) ([]byte, []Method, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return source, e.Extract(source), nil
}
