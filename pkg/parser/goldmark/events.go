package goldmark

import (
	"bytes"

	gast "github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/util"
)

// EventKind classifies an Event.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventText
	EventCode
	EventHTML
	EventSoftBreak
	EventHardBreak
	EventRule
)

// Tag names the container opened by EventStart and closed by EventEnd.
type Tag int

const (
	TagParagraph Tag = iota
	TagPlain
	TagHeading
	TagBlockQuote
	TagCodeBlock
	TagList
	TagItem
	TagEmphasis
	TagStrong
	TagStrikethrough
	TagLink
	TagImage
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagParagraph:
		return "paragraph"
	case TagPlain:
		return "plain"
	case TagHeading:
		return "heading"
	case TagBlockQuote:
		return "blockquote"
	case TagCodeBlock:
		return "code_block"
	case TagList:
		return "list"
	case TagItem:
		return "item"
	case TagEmphasis:
		return "emphasis"
	case TagStrong:
		return "strong"
	case TagStrikethrough:
		return "strikethrough"
	case TagLink:
		return "link"
	case TagImage:
		return "image"
	default:
		return "unknown"
	}
}

// Event is one step of the flattened markdown tree.
type Event struct {
	Kind EventKind
	Tag  Tag

	// Node is the goldmark node of Start and End events.
	Node gast.Node

	// Text holds the payload of Text, Code and HTML events.
	Text string

	// Block marks HTML events that come from an HTML block.
	Block bool
}

// Events flattens a goldmark document into a sequence of start/end and leaf
// events. Containers the builder does not model (tables, footnotes and other
// extension nodes) are skipped together with their content; the returned
// slice reports their kinds.
func Events(src []byte, doc gast.Node) ([]Event, []gast.NodeKind) {
	var events []Event
	var dropped []gast.NodeKind

	open := func(n gast.Node, tag Tag, entering bool) {
		kind := EventEnd
		if entering {
			kind = EventStart
		}
		events = append(events, Event{Kind: kind, Tag: tag, Node: n})
	}

	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		switch node := n.(type) {
		case *gast.Document:

		case *gast.Paragraph:
			open(n, TagParagraph, entering)
		case *gast.TextBlock:
			open(n, TagPlain, entering)
		case *gast.Heading:
			open(n, TagHeading, entering)
		case *gast.Blockquote:
			open(n, TagBlockQuote, entering)
		case *gast.List:
			open(n, TagList, entering)
		case *gast.ListItem:
			open(n, TagItem, entering)
		case *gast.Emphasis:
			tag := TagEmphasis
			if node.Level >= 2 {
				tag = TagStrong
			}
			open(n, tag, entering)
		case *east.Strikethrough:
			open(n, TagStrikethrough, entering)
		case *gast.Link:
			open(n, TagLink, entering)
		case *gast.Image:
			open(n, TagImage, entering)

		case *gast.CodeBlock, *gast.FencedCodeBlock:
			if entering {
				open(n, TagCodeBlock, true)
				events = append(events, Event{Kind: EventText, Text: string(linesValue(n, src))})
				open(n, TagCodeBlock, false)
			}
			return gast.WalkSkipChildren, nil

		case *gast.AutoLink:
			if entering {
				open(n, TagLink, true)
				events = append(events, Event{Kind: EventText, Text: string(node.Label(src))})
				open(n, TagLink, false)
			}
			return gast.WalkSkipChildren, nil

		case *gast.Text:
			if !entering {
				break
			}
			if v := unescape(node.Segment.Value(src)); v != "" {
				events = append(events, Event{Kind: EventText, Text: v})
			}
			switch {
			case node.HardLineBreak():
				events = append(events, Event{Kind: EventHardBreak})
			case node.SoftLineBreak():
				events = append(events, Event{Kind: EventSoftBreak})
			}

		case *gast.String:
			if entering {
				text := string(node.Value)
				if !node.IsRaw() {
					text = unescape(node.Value)
				}
				events = append(events, Event{Kind: EventText, Text: text})
			}

		case *gast.CodeSpan:
			if entering {
				events = append(events, Event{Kind: EventCode, Text: string(codeSpanValue(node, src))})
			}
			return gast.WalkSkipChildren, nil

		case *gast.RawHTML:
			if entering {
				var buf bytes.Buffer
				for i := range node.Segments.Len() {
					seg := node.Segments.At(i)
					buf.Write(seg.Value(src))
				}
				events = append(events, Event{Kind: EventHTML, Text: buf.String()})
			}
			return gast.WalkSkipChildren, nil

		case *gast.HTMLBlock:
			if entering {
				value := linesValue(n, src)
				if node.HasClosure() {
					value = append(value, node.ClosureLine.Value(src)...)
				}
				events = append(events, Event{Kind: EventHTML, Text: string(value), Block: true})
			}
			return gast.WalkSkipChildren, nil

		case *gast.ThematicBreak:
			if entering {
				events = append(events, Event{Kind: EventRule})
			}

		default:
			if entering {
				dropped = append(dropped, n.Kind())
			}
			return gast.WalkSkipChildren, nil
		}
		return gast.WalkContinue, nil
	})

	return events, dropped
}

// linesValue concatenates the raw lines of a block node.
func linesValue(n gast.Node, src []byte) []byte {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := range lines.Len() {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return buf.Bytes()
}

func codeSpanValue(n *gast.CodeSpan, src []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *gast.Text:
			buf.Write(t.Segment.Value(src))
		case *gast.String:
			buf.Write(t.Value)
		}
	}
	return buf.Bytes()
}

// unescape resolves backslash escapes and character references the way the
// goldmark HTML writer does.
func unescape(b []byte) string {
	b = util.UnescapePunctuations(b)
	b = util.ResolveNumericReferences(b)
	b = util.ResolveEntityNames(b)
	return string(b)
}
