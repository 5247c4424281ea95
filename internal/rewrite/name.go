package rewrite

import (
	"regexp"
	"strings"

	"github.com/mvp-joe/docsync/internal/extract"
)

// NameRewriter re-locates each method in the current buffer by name and
// parameter text instead of trusting recorded offsets. The first matching
// signature wins, so files with duplicate method names can get an
// annotation on the wrong occurrence.
type NameRewriter struct{}

// NewNameRewriter creates the name-based rewriter.
func NewNameRewriter() *NameRewriter {
	return &NameRewriter{}
}

func (r *NameRewriter) Apply(src []byte, methods []extract.Method) []byte {
	buf := make([]byte, len(src))
	copy(buf, src)

	for _, m := range methods {
		if m.Annotation == "" {
			continue
		}
		buf, _ = r.ApplyOne(buf, m)
	}
	return buf
}

// ApplyOne writes m's annotation above the first signature in buf matching
// m's name and parameters. It reports false when no signature matched.
func (r *NameRewriter) ApplyOne(buf []byte, m extract.Method) ([]byte, bool) {
	if m.Annotation == "" || m.Name == "" {
		return buf, false
	}

	loc := signaturePattern(m).FindSubmatchIndex(buf)
	if loc == nil {
		return buf, false
	}

	lineStart, indentEnd := loc[2], loc[3]
	indent := string(buf[lineStart:indentEnd])

	var sb strings.Builder
	for _, line := range strings.Split(m.Annotation, "\n") {
		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return splice(buf, lineStart, lineStart, sb.String()), true
}

// signaturePattern matches a line holding m's signature. Group 1 is the indentation.
func signaturePattern(m extract.Method) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^([ \t]*)(?:(?:public|protected|private|static|final|abstract)\s+)*function\s+` +
		regexp.QuoteMeta(m.Name) + `\s*\(` + regexp.QuoteMeta(m.Parameters) + `\)`)
}
