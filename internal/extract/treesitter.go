package extract

import (
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

// treeSitterExtractor walks a PHP syntax tree instead of pattern matching,
// so bodies are brace-balanced.
type treeSitterExtractor struct {
	language *sitter.Language
}

// NewTreeSitterExtractor returns an extractor backed by tree-sitter's PHP grammar.
func NewTreeSitterExtractor() Extractor {
	return &treeSitterExtractor{
		language: sitter.NewLanguage(php.LanguagePHP()),
	}
}

func (e *treeSitterExtractor) Extract(source []byte) []Method {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(e.language); err != nil {
		return []Method{}
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return []Method{}
	}
	defer tree.Close()

	methods := []Method{}
	walkTree(tree.RootNode(), func(n *sitter.Node) bool {
		switch n.Kind() {
		case "method_declaration", "function_definition":
			if m, ok := e.extractMethod(n, source); ok {
				methods = append(methods, m)
			}
		}
		return true
	})

	sort.SliceStable(methods, func(i, j int) bool {
		return methods[i].StartPosition < methods[j].StartPosition
	})
	return methods
}

// extractMethod converts a method_declaration or function_definition node.
// Declarations without a body are skipped.
func (e *treeSitterExtractor) extractMethod(node *sitter.Node, source []byte) (Method, bool) {
	nameNode := node.ChildByFieldName("name")
	bodyNode := node.ChildByFieldName("body")
	if nameNode == nil || bodyNode == nil {
		return Method{}, false
	}

	m := Method{
		Visibility:    VisibilityPublic,
		Name:          nodeText(nameNode, source),
		DocblockStart: -1,
		DocblockEnd:   -1,
		StartPosition: int(node.StartByte()),
		EndPosition:   int(node.EndByte()),
	}

	if params := node.ChildByFieldName("parameters"); params != nil {
		text := nodeText(params, source)
		text = strings.TrimPrefix(text, "(")
		text = strings.TrimSuffix(text, ")")
		m.Parameters = text
	}

	body := nodeText(bodyNode, source)
	body = strings.TrimPrefix(body, "{")
	body = strings.TrimSuffix(body, "}")
	m.Body = strings.TrimSpace(body)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "visibility_modifier" {
			m.Visibility = parseVisibility(nodeText(child, source))
			break
		}
	}

	if prev := node.PrevSibling(); prev != nil && prev.Kind() == "comment" {
		text := nodeText(prev, source)
		if strings.HasPrefix(text, "/**") {
			m.Docblock = text
			m.DocblockStart = int(prev.StartByte())
			m.DocblockEnd = int(prev.EndByte())
			m.StartPosition = m.DocblockStart
		}
	}

	return m, true
}

// nodeText extracts the source text covered by a node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// walkTree visits node and its descendants depth-first. Returning false
// from visitor skips the node's children.
func walkTree(node *sitter.Node, visitor func(*sitter.Node) bool) {
	if node == nil {
		return
	}

	if !visitor(node) {
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visitor)
	}
}
