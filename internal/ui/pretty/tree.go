package pretty

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// maxValueWidth truncates quoted text in tree labels.
const maxValueWidth = 48

// TreeOptions controls FormatTree.
type TreeOptions struct {
	// Spans appends each special element's byte span to its label.
	Spans bool

	// Solutions shows exercise solutions instead of placeholders.
	Solutions bool
}

// FormatTree renders blocks as an indented tree.
func (s *Styles) FormatTree(root string, blocks []ast.Block, opts TreeOptions) string {
	t := tree.Root(s.Bold.Render(root)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(s.Branch)
	for _, b := range blocks {
		t.Child(s.blockNode(b, opts))
	}
	return t.String() + "\n"
}

func (s *Styles) blockNode(b ast.Block, opts TreeOptions) any {
	label := s.Block.Render(b.Kind().String())

	switch n := b.(type) {
	case *ast.Heading:
		label += " " + s.Value.Render("h"+strconv.Itoa(n.Level))
		if n.ID != "" {
			label += " " + s.Label.Render("#"+n.ID)
		}
		for _, c := range n.Classes {
			label += " " + s.Label.Render("."+c)
		}
	case *ast.List:
		if n.Start != nil {
			label += " " + s.Value.Render("start="+strconv.FormatUint(*n.Start, 10))
		}
	}

	var children []any
	switch n := b.(type) {
	case ast.InlineContainer:
		for _, in := range *n.Inlines() {
			children = append(children, s.inlineNode(in, opts))
		}
	case ast.BlockContainer:
		for _, child := range *n.Blocks() {
			children = append(children, s.blockNode(child, opts))
		}
	}
	return branch(label, children)
}

func (s *Styles) inlineNode(in ast.Inline, opts TreeOptions) any {
	kind := in.Kind().String()

	switch n := in.(type) {
	case *ast.Text:
		return s.Inline.Render(kind) + " " + s.Value.Render(quote(n.Value))
	case *ast.Code:
		return s.Inline.Render(kind) + " " + s.Value.Render(quote(n.Source))
	case *ast.HTML:
		return s.Inline.Render(kind) + " " + s.Value.Render(quote(n.Value))
	case *ast.Styled:
		return branch(s.Inline.Render(string(n.Style)), s.inlines(n.Inner, opts))
	case *ast.Link:
		return branch(s.Inline.Render(kind)+" "+s.Value.Render(n.URL), s.inlines(n.Inner, opts))
	case *ast.Image:
		return branch(s.Inline.Render(kind)+" "+s.Value.Render(n.URL), s.inlines(n.Inner, opts))

	case *ast.Math:
		label := s.Special.Render(kind)
		if n.DisplayBlock {
			label += " " + s.Dim.Render("display")
		}
		return label + " " + s.Value.Render(quote(n.Source)) + s.suffix(n.Label, n.Span, opts)

	case *ast.CodeBlock:
		return s.codeBlockNode(n, opts)

	case *ast.Command:
		label := s.Special.Render(kind) + " " + s.Value.Render("#"+n.Function) +
			s.Dim.Render(fmt.Sprintf(" [%d]", n.Index)) + s.suffix(n.Label, n.Span, opts)
		var children []any
		for _, p := range n.Parameters {
			children = append(children, s.parameterNode(p, opts))
		}
		if n.Body != nil {
			children = append(children, branch(s.Dim.Render("body"), s.blocks(n.Body, opts)))
		}
		return branch(label, children)

	case *ast.Script:
		label := s.Special.Render(kind) + " " + s.Value.Render("#!"+n.ID) + " " +
			s.Value.Render(quote(n.Source)) + s.suffix("", n.Span, opts)
		var children []any
		for i, g := range n.Groups {
			children = append(children, branch(s.Dim.Render(fmt.Sprintf("group %d", i)), s.blocks(g, opts)))
		}
		return branch(label, children)
	}

	return s.Inline.Render(kind)
}

func (s *Styles) codeBlockNode(n *ast.CodeBlock, opts TreeOptions) any {
	label := s.Special.Render(n.Kind().String())
	if n.Language != "" {
		label += " " + s.Value.Render(n.Language)
	}
	if n.DisplayCell {
		label += " " + s.Dim.Render("cell")
	}
	label += s.Dim.Render(fmt.Sprintf(" [%d]", n.Index)) + s.suffix(n.Label, n.Span, opts)

	var children []any
	for _, tag := range n.Tags {
		if tag.Key != "" {
			children = append(children, s.Dim.Render("tag ")+tag.Key+"="+s.Value.Render(tag.Value))
		}
	}
	if n.Source != nil {
		n.Source.Meta.Each(func(key, value string) {
			children = append(children, s.Dim.Render("meta ")+key+"="+s.Value.Render(value))
		})
		if count := len(n.Source.Solutions()); count > 0 {
			children = append(children, s.Dim.Render(fmt.Sprintf("exercises %d", count)))
		}
		children = append(children, s.Dim.Render("source ")+s.Value.Render(quote(n.Source.String(opts.Solutions))))
	}
	return branch(label, children)
}

func (s *Styles) parameterNode(p ast.Parameter, opts TreeOptions) any {
	label := s.Dim.Render("param")
	if p.Key != "" {
		label += " " + s.Label.Render(p.Key)
	}

	switch v := p.Value.(type) {
	case ast.ContentValue:
		return branch(label+" "+s.Dim.Render("content"), s.blocks(v, opts))
	case ast.FlagValue:
		return label + " " + s.Value.Render(":"+string(v))
	case ast.StringValue:
		return label + " " + s.Value.Render(strconv.Quote(string(v)))
	case ast.IntValue:
		return label + " " + s.Value.Render(strconv.FormatInt(int64(v), 10))
	case ast.FloatValue:
		return label + " " + s.Value.Render(strconv.FormatFloat(float64(v), 'g', -1, 64))
	}
	return label
}

func (s *Styles) inlines(in []ast.Inline, opts TreeOptions) []any {
	out := make([]any, 0, len(in))
	for _, n := range in {
		out = append(out, s.inlineNode(n, opts))
	}
	return out
}

func (s *Styles) blocks(bs []ast.Block, opts TreeOptions) []any {
	out := make([]any, 0, len(bs))
	for _, b := range bs {
		out = append(out, s.blockNode(b, opts))
	}
	return out
}

func (s *Styles) suffix(label string, span source.Span, opts TreeOptions) string {
	var out string
	if label != "" {
		out += " " + s.Label.Render("|"+label)
	}
	if opts.Spans {
		out += " " + s.Span.Render(span.String())
	}
	return out
}

// branch returns label alone when there are no children.
func branch(label string, children []any) any {
	if len(children) == 0 {
		return label
	}
	return tree.Root(label).Child(children...)
}

func quote(text string) string {
	runes := []rune(text)
	if len(runes) > maxValueWidth {
		text = string(runes[:maxValueWidth]) + "…"
	}
	return strconv.Quote(text)
}
