package goldmark

import (
	"fmt"
	"strings"

	gast "github.com/yuin/goldmark/ast"

	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/compose"
)

type frameKind int

const (
	frameBlocks frameKind = iota
	frameInlines
)

func (k frameKind) String() string {
	if k == frameBlocks {
		return "blocks"
	}
	return "inlines"
}

// frame accumulates the children of one open container.
type frame struct {
	kind    frameKind
	tag     Tag
	node    gast.Node
	blocks  []ast.Block
	inlines []ast.Inline
}

func frameKindOf(tag Tag) frameKind {
	switch tag {
	case TagList, TagItem:
		return frameBlocks
	default:
		return frameInlines
	}
}

// builder folds an event stream into blocks, resolving placeholders
// against the composed children.
type builder struct {
	parser   *Parser
	composed *compose.Composed
	src      []byte
	stack    []*frame
}

func (b *builder) build(events []Event) []ast.Block {
	b.stack = []*frame{{kind: frameBlocks}}

	for _, ev := range events {
		switch ev.Kind {
		case EventStart:
			b.stack = append(b.stack, &frame{kind: frameKindOf(ev.Tag), tag: ev.Tag, node: ev.Node})
		case EventEnd:
			b.end(ev)
		case EventText:
			b.pushInline(&ast.Text{Value: ev.Text})
		case EventCode:
			b.pushInline(&ast.Code{Source: ev.Text})
		case EventHTML:
			b.html(ev)
		case EventSoftBreak:
			b.pushInline(&ast.SoftBreak{})
		case EventHardBreak:
			b.pushInline(&ast.HardBreak{})
		case EventRule:
			b.pushInline(&ast.Rule{})
		}
	}

	if len(b.stack) != 1 {
		panic(fmt.Sprintf("goldmark: %s left open at end of document", b.top().tag))
	}
	return b.stack[0].blocks
}

func (b *builder) top() *frame {
	return b.stack[len(b.stack)-1]
}

// end closes the top frame and appends the resulting node to its parent.
func (b *builder) end(ev Event) {
	if len(b.stack) < 2 {
		panic(fmt.Sprintf("goldmark: end of %s without start", ev.Tag))
	}
	f := b.top()
	b.stack = b.stack[:len(b.stack)-1]
	if f.tag != ev.Tag {
		panic(fmt.Sprintf("goldmark: end of %s closes %s", ev.Tag, f.tag))
	}

	switch f.tag {
	case TagParagraph:
		b.pushBlock(&ast.Paragraph{Inner: f.inlines})
	case TagPlain:
		b.pushBlock(&ast.Plain{Inner: f.inlines})
	case TagHeading:
		h, _ := f.node.(*gast.Heading)
		id, classes := headingAttributes(h)
		b.pushBlock(&ast.Heading{Level: h.Level, ID: id, Classes: classes, Inner: f.inlines})
	case TagBlockQuote:
		b.pushBlock(&ast.BlockQuote{Inner: f.inlines})
	case TagCodeBlock:
		b.pushBlock(&ast.Plain{Inner: []ast.Inline{&ast.Code{Source: inlineText(f.inlines)}}})
	case TagList:
		l, _ := f.node.(*gast.List)
		var start *uint64
		if l.IsOrdered() {
			n := uint64(max(l.Start, 0))
			start = &n
		}
		b.pushBlock(&ast.List{Start: start, Items: f.blocks})
	case TagItem:
		b.pushBlock(&ast.ListItem{Inner: f.blocks})
	case TagEmphasis:
		b.pushInline(&ast.Styled{Inner: f.inlines, Style: ast.StyleEmphasis})
	case TagStrong:
		b.pushInline(&ast.Styled{Inner: f.inlines, Style: ast.StyleStrong})
	case TagStrikethrough:
		b.pushInline(&ast.Styled{Inner: f.inlines, Style: ast.StyleStrikethrough})
	case TagLink:
		b.pushInline(b.link(f))
	case TagImage:
		img, _ := f.node.(*gast.Image)
		b.pushInline(&ast.Image{
			LinkType: ast.LinkInline,
			URL:      string(img.Destination),
			Title:    string(img.Title),
			Inner:    f.inlines,
		})
	}
}

func (b *builder) link(f *frame) ast.Inline {
	switch n := f.node.(type) {
	case *gast.AutoLink:
		tp := ast.LinkAutolink
		if n.AutoLinkType == gast.AutoLinkEmail {
			tp = ast.LinkEmail
		}
		return &ast.Link{LinkType: tp, URL: string(n.URL(b.src)), Inner: f.inlines}
	case *gast.Link:
		return &ast.Link{
			LinkType: ast.LinkInline,
			URL:      string(n.Destination),
			Title:    string(n.Title),
			Inner:    f.inlines,
		}
	}
	panic(fmt.Sprintf("goldmark: unexpected link node %T", f.node))
}

// pushInline appends an inline to the top frame. In a block frame the
// inline is wrapped in a Plain block. Adjacent text is merged.
func (b *builder) pushInline(in ast.Inline) {
	f := b.top()
	if f.kind == frameBlocks {
		f.blocks = append(f.blocks, &ast.Plain{Inner: []ast.Inline{in}})
		return
	}

	if text, ok := in.(*ast.Text); ok && len(f.inlines) > 0 {
		if prev, ok := f.inlines[len(f.inlines)-1].(*ast.Text); ok {
			prev.Value += text.Value
			return
		}
	}
	f.inlines = append(f.inlines, in)
}

// pushBlock appends a block to the top frame. In an inline frame the block
// is flattened to its inline content, separated from what precedes it by a
// hard break.
func (b *builder) pushBlock(bl ast.Block) {
	f := b.top()
	if f.kind == frameBlocks {
		f.blocks = append(f.blocks, bl)
		return
	}

	inlines := flatten(bl)
	if len(inlines) == 0 {
		return
	}
	if len(f.inlines) > 0 {
		f.inlines = append(f.inlines, &ast.HardBreak{})
	}
	f.inlines = append(f.inlines, inlines...)
}

// html resolves the placeholders in an HTML event. Whitespace between
// placeholders is dropped. Other text next to a placeholder is kept: inline
// fragments as HTML, HTML block residue parsed again as markdown.
func (b *builder) html(ev Event) {
	matches := compose.Find(ev.Text)
	if len(matches) == 0 {
		b.pushInline(&ast.HTML{Value: ev.Text})
		return
	}

	last := 0
	for _, m := range matches {
		b.residue(ev.Text[last:m.Start], ev.Block)
		b.pushInline(b.child(m.Index))
		last = m.End
	}
	b.residue(ev.Text[last:], ev.Block)
}

func (b *builder) residue(text string, block bool) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if !block {
		b.pushInline(&ast.HTML{Value: text})
		return
	}
	for _, bl := range b.parser.build(b.composed, text) {
		b.pushBlock(bl)
	}
}

func (b *builder) child(k int) ast.Inline {
	c, ok := b.composed.Child(k)
	if !ok {
		panic(fmt.Sprintf("goldmark: placeholder %d out of range (%d children)", k, len(b.composed.Children)))
	}
	return b.parser.convert(c)
}

func headingAttributes(h *gast.Heading) (string, []string) {
	var id string
	var classes []string
	if v, ok := h.AttributeString("id"); ok {
		if s, ok := v.([]byte); ok {
			id = string(s)
		}
	}
	if v, ok := h.AttributeString("class"); ok {
		if s, ok := v.([]byte); ok {
			classes = strings.Fields(string(s))
		}
	}
	return id, classes
}

// flatten returns the inline content of a block, joining nested blocks with
// hard breaks.
func flatten(bl ast.Block) []ast.Inline {
	switch n := bl.(type) {
	case ast.InlineContainer:
		return *n.Inlines()
	case ast.BlockContainer:
		var out []ast.Inline
		for _, child := range *n.Blocks() {
			inner := flatten(child)
			if len(inner) == 0 {
				continue
			}
			if len(out) > 0 {
				out = append(out, &ast.HardBreak{})
			}
			out = append(out, inner...)
		}
		return out
	}
	return nil
}

func inlineText(inlines []ast.Inline) string {
	var sb strings.Builder
	for _, in := range inlines {
		if t, ok := in.(*ast.Text); ok {
			sb.WriteString(t.Value)
		}
	}
	return sb.String()
}
