package llm

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdown = goldmark.New()

// ExtractCodeBlock returns the content of the first fenced code block in a
// markdown response, trimmed. Without a fence the whole response is
// returned trimmed.
func ExtractCodeBlock(response string) string {
	src := []byte(response)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var code *ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if block, ok := n.(*ast.FencedCodeBlock); ok {
			code = block
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	if code == nil {
		return strings.TrimSpace(response)
	}

	var buf bytes.Buffer
	lines := code.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimSpace(buf.String())
}
