package extract

import (
	"regexp"
	"strings"
)

// methodPattern captures: 1 docblock, 2 visibility, 3 name, 4 parameters, 5 body.
// The body ends at the first "\n<whitespace>}" after the opening brace.
var methodPattern = regexp.MustCompile(
	`(?ms)(?:(/\*\*.*?\*/)\s*)?\s*(public|protected|private)?\s*function\s+(\w+)\s*\((.*?)\)\s*\{(.*?)\n\s*\}`,
)

type regexExtractor struct {
	pattern *regexp.Regexp
}

// NewRegexExtractor returns the pattern-matching extractor.
func NewRegexExtractor() Extractor {
	return &regexExtractor{pattern: methodPattern}
}

func (e *regexExtractor) Extract(source []byte) []Method {
	matches := e.pattern.FindAllSubmatchIndex(source, -1)
	methods := make([]Method, 0, len(matches))

	for _, loc := range matches {
		name := group(source, loc, 3)
		if name == "" {
			continue
		}

		m := Method{
			Visibility:    parseVisibility(group(source, loc, 2)),
			Name:          name,
			Parameters:    group(source, loc, 4),
			Body:          strings.TrimSpace(group(source, loc, 5)),
			DocblockStart: -1,
			DocblockEnd:   -1,
			StartPosition: loc[0],
			EndPosition:   loc[1],
		}

		if loc[2] >= 0 {
			m.DocblockStart, m.DocblockEnd = narrowDocblock(source, loc[2], loc[3])
			m.Docblock = string(source[m.DocblockStart:m.DocblockEnd])
		}

		methods = append(methods, m)
	}

	return methods
}

// group returns capture group n, or "" when it did not participate.
func group(source []byte, loc []int, n int) string {
	start, end := loc[2*n], loc[2*n+1]
	if start < 0 {
		return ""
	}
	return string(source[start:end])
}

// narrowDocblock trims a lazily-matched docblock that swallowed earlier
// comments (a file or class docblock) down to the last /** block.
func narrowDocblock(source []byte, start, end int) (int, int) {
	text := string(source[start:end])
	if i := strings.LastIndex(text, "/**"); i > 0 {
		return start + i, end
	}
	return start, end
}
