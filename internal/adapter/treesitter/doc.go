package treesitter

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// precedingDoc returns the topmost comment of the doc block attached to node,
// or nil. Comments must be contiguous, each on its own line, and end on the
// line directly above the next element.
func precedingDoc(rule Rule, node *sitter.Node, content []byte) *sitter.Node {
	var run []*sitter.Node
	next := node
	for prev := node.PrevSibling(); prev != nil; prev = prev.PrevSibling() {
		kind := prev.Type()
		if contains(rule.SkipKinds, kind) {
			next = prev
			continue
		}
		if !contains(rule.CommentKinds, kind) {
			break
		}
		if prev.EndPoint().Row+1 < next.StartPoint().Row {
			break
		}
		if !startsLine(content, int(prev.StartByte())) {
			break
		}
		run = append(run, prev)
		next = prev
	}

	var top *sitter.Node
	for _, comment := range run {
		if !isDocComment(comment.Content(content), rule.DocPrefixes) {
			break
		}
		top = comment
	}
	return top
}

func hasBodyDocstring(rule Rule, fn *sitter.Node) bool {
	body := fn.ChildByFieldName("body")
	if body == nil {
		return false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if contains(rule.CommentKinds, stmt.Type()) {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			return false
		}
		return stmt.NamedChild(0).Type() == "string"
	}
	return false
}

// startsLine reports whether only whitespace precedes offset on its line.
func startsLine(content []byte, offset int) bool {
	for i := offset - 1; i >= 0; i-- {
		switch content[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

func isDocComment(text string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	text = strings.TrimSpace(text)
	for _, prefix := range prefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}
