package loader

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StripMarkdown reduces markdown content to plain text so that chunking
// and embedding operate on prose rather than markup. Block boundaries
// become blank lines; inline formatting is dropped, code blocks keep
// their literal text.
func StripMarkdown(content string) string {
	src := []byte(content)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var sb strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				sb.Write(node.Segment.Value(src))
				if node.SoftLineBreak() || node.HardLineBreak() {
					sb.WriteByte('\n')
				}
			}
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					sb.Write(seg.Value(src))
				}
			}
		case *ast.AutoLink:
			if entering {
				sb.Write(node.URL(src))
			}
		}

		// Separate block-level elements with a blank line on exit.
		if !entering && n.Type() == ast.TypeBlock {
			sb.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(collapseBlankLines(sb.String()))
}

// collapseBlankLines reduces runs of three or more newlines to a single
// blank line.
func collapseBlankLines(s string) string {
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}
