package extract

import "strings"

// Visibility is the access modifier of an extracted method.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// parseVisibility maps a captured keyword to a Visibility. A missing
// modifier means public.
func parseVisibility(s string) Visibility {
	switch strings.ToLower(s) {
	case "protected":
		return VisibilityProtected
	case "private":
		return VisibilityPrivate
	default:
		return VisibilityPublic
	}
}

// Method is one extracted method definition.
//
// StartPosition and EndPosition are byte offsets into the buffer the method
// was extracted from. They stop being valid as soon as anything is inserted
// before them.
type Method struct {
	Visibility Visibility
	Name       string
	Parameters string // raw text between the parentheses
	Body       string // trimmed text between the outer braces

	// Docblock is the existing /** */ comment captured with the method, if any.
	Docblock      string
	DocblockStart int // -1 when there is no docblock
	DocblockEnd   int // -1 when there is no docblock

	StartPosition int
	EndPosition   int

	// Annotation is the generated docblock to write. Empty means there is
	// nothing to insert for this method.
	Annotation string
}

// HasDocblock reports whether the method was captured with an existing docblock.
func (m Method) HasDocblock() bool {
	return m.DocblockStart >= 0 && m.Docblock != ""
}

// Text returns the exact matched construct from the source it was extracted from.
func (m Method) Text(source []byte) string {
	if m.StartPosition < 0 || m.EndPosition > len(source) || m.StartPosition > m.EndPosition {
		return ""
	}
	return string(source[m.StartPosition:m.EndPosition])
}

// ParameterList splits Parameters on top-level commas and trims each fragment.
// Commas nested in (), [] or {} (default values, attributes) do not split.
func (m Method) ParameterList() []string {
	raw := strings.TrimSpace(m.Parameters)
	if raw == "" {
		return []string{}
	}

	var params []string
	depth := 0
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				if p := strings.TrimSpace(raw[start:i]); p != "" {
					params = append(params, p)
				}
				start = i + 1
			}
		}
	}
	if p := strings.TrimSpace(raw[start:]); p != "" {
		params = append(params, p)
	}
	return params
}

// Signature renders "visibility function name(parameters)".
func (m Method) Signature() string {
	return string(m.Visibility) + " function " + m.Name + "(" + m.Parameters + ")"
}
