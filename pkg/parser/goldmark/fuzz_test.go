package goldmark

import (
	"testing"

	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/raw"
)

// FuzzParse runs the whole pipeline on random input.
func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"Hello, world!",
		"# Heading {#id}",
		"- list item $x$",
		"1. ordered #cmd",
		"> quote #f(a, b=2){body}",
		"```python\nx = 1\n```",
		"``\n#| key: v\ny\n``|lbl",
		"$$\\frac{a}{b}$$",
		"#!py{print(#{*g*})}",
		"\\{verbatim\\} \\# \\$",
		"<div>\n#c\n</div>",
		"<elem-0> literal",
		"#outer{#inner{#deep}}",
		"[$m$](url) ![#i](src)",
		"---\ntitle: x\n---\nbody",
	}

	for _, seed := range seeds {
		f.Add(seed)
	}

	p := New(FlavorGFM, WithHeadingAttributes())

	f.Fuzz(func(t *testing.T, input string) {
		doc, err := raw.Parse(input)
		if err != nil {
			return
		}

		// Build should never panic on grammar-valid input.
		blocks := p.Parse(doc.Elements)

		ast.Inspect(blocks, func(n ast.Node) bool {
			var start, end int
			switch v := n.(type) {
			case *ast.Math:
				start, end = v.Span.Start, v.Span.End
			case *ast.Command:
				start, end = v.Span.Start, v.Span.End
			case *ast.CodeBlock:
				start, end = v.Span.Start, v.Span.End
			default:
				return true
			}
			if start < 0 || end > len(input) || start > end {
				t.Errorf("span [%d, %d) outside input of length %d", start, end, len(input))
			}
			return true
		})
	})
}
