package rewrite

import "github.com/mvp-joe/docsync/internal/extract"

// separatorLen is the number of newline bytes wrapped around an inserted annotation.
const separatorLen = 2

// OffsetRewriter inserts annotations at each method's recorded StartPosition,
// compensating for the bytes inserted before it. Methods must be in the
// ascending order the extractor produced them in.
type OffsetRewriter struct {
	policy Policy
}

// NewOffsetRewriter creates the offset-tracked rewriter.
func NewOffsetRewriter(policy Policy) *OffsetRewriter {
	if policy == "" {
		policy = PolicyPrepend
	}
	return &OffsetRewriter{policy: policy}
}

func (r *OffsetRewriter) Apply(src []byte, methods []extract.Method) []byte {
	buf := make([]byte, len(src))
	copy(buf, src)

	adjustment := 0
	for _, m := range methods {
		if m.Annotation == "" {
			continue
		}

		if r.policy == PolicyReplace && m.HasDocblock() {
			start := m.DocblockStart + adjustment
			end := m.DocblockEnd + adjustment
			if start < 0 || end > len(buf) || start > end {
				continue
			}
			buf = splice(buf, start, end, m.Annotation)
			adjustment += len(m.Annotation) - (end - start)
			continue
		}

		pos := m.StartPosition + adjustment
		if pos < 0 || pos > len(buf) {
			continue
		}
		buf = splice(buf, pos, pos, "\n"+m.Annotation+"\n")
		adjustment += len(m.Annotation) + separatorLen
	}

	return buf
}

// splice replaces buf[start:end] with text.
func splice(buf []byte, start, end int, text string) []byte {
	out := make([]byte, 0, len(buf)-(end-start)+len(text))
	out = append(out, buf[:start]...)
	out = append(out, text...)
	out = append(out, buf[end:]...)
	return out
}
