package generate

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/docsync/internal/extract"
)

// Delimiter separates per-method docblocks in a bulk reply.
const Delimiter = "---"

// BulkPrompt asks for one docblock per method, separated by Delimiter.
func BulkPrompt(methods []extract.Method) string {
	sections := make([]string, len(methods))
	for i, m := range methods {
		sections[i] = describeMethod(fmt.Sprintf("Method %d:\n", i+1), m)
	}

	return fmt.Sprintf("Generate PHP docblocks for the following %d methods. "+
		"For each method, provide a concise description, @param tags for each parameter, "+
		"and @return tag if applicable. If there's an existing docblock, improve it if it's "+
		"vague or incomplete. Separate each docblock with '%s'.\n\n%s",
		len(methods), Delimiter, strings.Join(sections, "\n"+Delimiter+"\n"))
}

// MethodPrompt asks for the docblock of a single method.
func MethodPrompt(m extract.Method) string {
	return "Generate a PHP docblock for the following method. " +
		"Provide a concise description, @param tags for each parameter, " +
		"and @return tag if applicable. If there's an existing docblock, improve it if it's " +
		"vague or incomplete. Respond with the docblock only.\n\n" +
		describeMethod("", m)
}

func describeMethod(header string, m extract.Method) string {
	docblock := m.Docblock
	if docblock == "" {
		docblock = "None"
	}

	var sb strings.Builder
	sb.WriteString(header)
	fmt.Fprintf(&sb, "Visibility: %s\n", m.Visibility)
	fmt.Fprintf(&sb, "Name: %s\n", m.Name)
	fmt.Fprintf(&sb, "Parameters: %s\n", m.Parameters)
	fmt.Fprintf(&sb, "Body:\n%s\n", m.Body)
	fmt.Fprintf(&sb, "Existing docblock (if any):\n%s\n", docblock)
	return sb.String()
}

// SplitSegments splits a bulk reply on Delimiter, trimming and dropping empty segments.
func SplitSegments(content string) []string {
	segments := []string{}
	for _, part := range strings.Split(content, Delimiter) {
		if s := strings.TrimSpace(part); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}
