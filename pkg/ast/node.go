// Package ast defines the document tree produced by the parser: blocks that
// mirror the markdown structure and inlines that carry text, formatting and
// the extended elements (math, code cells, commands and scripts).
package ast

import (
	"strconv"

	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// Kind is the discoverable type tag of a node, used by renderers for
// dispatch and written as "type" in JSON output.
type Kind string

// Block kinds.
const (
	KindHeading    Kind = "heading"
	KindPlain      Kind = "plain"
	KindParagraph  Kind = "paragraph"
	KindBlockQuote Kind = "blockquote"
	KindList       Kind = "list"
	KindListItem   Kind = "list_item"
)

// Inline kinds.
const (
	KindText      Kind = "text"
	KindStyled    Kind = "styled"
	KindCode      Kind = "code"
	KindCodeBlock Kind = "code_block"
	KindSoftBreak Kind = "soft_break"
	KindHardBreak Kind = "hard_break"
	KindRule      Kind = "rule"
	KindImage     Kind = "image"
	KindLink      Kind = "link"
	KindHTML      Kind = "html"
	KindMath      Kind = "math"
	KindCommand   Kind = "command"
	KindScript    Kind = "script"
)

// String returns the tag.
func (k Kind) String() string {
	return string(k)
}

// Attribute is one named property of a node. Attributes are ordered.
type Attribute struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// Node is implemented by every Block and Inline.
type Node interface {
	Kind() Kind

	// Attributes returns the node's properties in a stable order,
	// excluding child content.
	Attributes() []Attribute
}

// Block is a block-level node.
type Block interface {
	Node
	block()
}

// Inline is an inline-level node.
type Inline interface {
	Node
	inline()
}

// InlineContainer is implemented by nodes holding inline children.
type InlineContainer interface {
	Node
	Inlines() *[]Inline
}

// BlockContainer is implemented by nodes holding block children.
type BlockContainer interface {
	Node
	Blocks() *[]Block
}

// Heading is an ATX or setext heading.
type Heading struct {
	Level   int      `json:"level"`
	ID      string   `json:"id,omitempty"`
	Classes []string `json:"classes,omitempty"`
	Inner   []Inline `json:"inner"`
}

// Plain is inline content without paragraph semantics, as found in tight
// list items or wrapping an element placed directly in a block context.
type Plain struct {
	Inner []Inline `json:"inner"`
}

// Paragraph is a markdown paragraph.
type Paragraph struct {
	Inner []Inline `json:"inner"`
}

// BlockQuote is a quoted region. Nested paragraphs are flattened into its
// inlines, separated by hard breaks.
type BlockQuote struct {
	Inner []Inline `json:"inner"`
}

// List is an ordered (Start set) or bullet list.
type List struct {
	Start *uint64 `json:"start,omitempty"`
	Items []Block `json:"items"`
}

// ListItem is one list entry.
type ListItem struct {
	Inner []Block `json:"inner"`
}

func (*Heading) block()    {}
func (*Plain) block()      {}
func (*Paragraph) block()  {}
func (*BlockQuote) block() {}
func (*List) block()       {}
func (*ListItem) block()   {}

func (*Heading) Kind() Kind    { return KindHeading }
func (*Plain) Kind() Kind      { return KindPlain }
func (*Paragraph) Kind() Kind  { return KindParagraph }
func (*BlockQuote) Kind() Kind { return KindBlockQuote }
func (*List) Kind() Kind       { return KindList }
func (*ListItem) Kind() Kind   { return KindListItem }

func (h *Heading) Inlines() *[]Inline    { return &h.Inner }
func (p *Plain) Inlines() *[]Inline      { return &p.Inner }
func (p *Paragraph) Inlines() *[]Inline  { return &p.Inner }
func (q *BlockQuote) Inlines() *[]Inline { return &q.Inner }
func (l *List) Blocks() *[]Block         { return &l.Items }
func (i *ListItem) Blocks() *[]Block     { return &i.Inner }

func (h *Heading) Attributes() []Attribute {
	return []Attribute{
		{Key: "level", Value: h.Level},
		{Key: "id", Value: h.ID},
		{Key: "classes", Value: h.Classes},
	}
}

func (*Plain) Attributes() []Attribute      { return nil }
func (*Paragraph) Attributes() []Attribute  { return nil }
func (*BlockQuote) Attributes() []Attribute { return nil }
func (*ListItem) Attributes() []Attribute   { return nil }

func (l *List) Attributes() []Attribute {
	if l.Start == nil {
		return []Attribute{{Key: "ordered", Value: false}}
	}
	return []Attribute{{Key: "ordered", Value: true}, {Key: "start", Value: *l.Start}}
}

// Style is the formatting applied by Styled.
type Style string

const (
	StyleEmphasis      Style = "emphasis"
	StyleStrong        Style = "strong"
	StyleStrikethrough Style = "strikethrough"
	StyleUnderline     Style = "underline"
)

// LinkType records how a link or image was written.
type LinkType string

const (
	LinkInline   LinkType = "inline"
	LinkAutolink LinkType = "autolink"
	LinkEmail    LinkType = "email"
)

// Text is literal text with markdown escapes resolved.
type Text struct {
	Value string `json:"value"`
}

// Styled is formatted inline content.
type Styled struct {
	Inner []Inline `json:"inner"`
	Style Style    `json:"style"`
}

// Code is inline code.
type Code struct {
	Source string `json:"source"`
}

// CodeAttr is one entry of a code block attribute list.
type CodeAttr struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value"`
}

// CodeBlock is a code cell or listing.
type CodeBlock struct {
	Label  string               `json:"label,omitempty"`
	Source *codeast.CodeContent `json:"source"`

	// Tags is the attribute list of the opening fence.
	Tags []CodeAttr `json:"tags,omitempty"`

	// Language is the first positional attribute or a detected language.
	Language string `json:"language,omitempty"`

	// DisplayCell is set for two-backtick fences.
	DisplayCell bool `json:"display_cell"`

	// Index numbers code blocks in document order.
	Index int         `json:"index"`
	Span  source.Span `json:"span"`
}

// SoftBreak is a line ending inside a paragraph.
type SoftBreak struct{}

// HardBreak is a forced line break.
type HardBreak struct{}

// Rule is a thematic break.
type Rule struct{}

// Image is an image reference with alt text in Inner.
type Image struct {
	LinkType LinkType `json:"link_type"`
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Inner    []Inline `json:"inner"`
}

// Link is a hyperlink.
type Link struct {
	LinkType LinkType `json:"link_type"`
	URL      string   `json:"url"`
	Title    string   `json:"title,omitempty"`
	Inner    []Inline `json:"inner"`
}

// HTML is raw HTML passed through unchanged.
type HTML struct {
	Value string `json:"value"`
}

// Math is an inline or display math expression.
type Math struct {
	Source       string      `json:"source"`
	Label        string      `json:"label,omitempty"`
	DisplayBlock bool        `json:"display_block"`
	Span         source.Span `json:"span"`
}

// Command is a "#name(params){body}" element. Body is nil when the command
// has no body.
type Command struct {
	Function   string      `json:"function"`
	Label      string      `json:"label,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`
	Body       []Block     `json:"body,omitempty"`

	// Index numbers commands in document order.
	Index int         `json:"index"`
	Span  source.Span `json:"span"`
}

// Script is an embedded script. Source refers to Groups by "#{N}".
type Script struct {
	ID     string      `json:"id,omitempty"`
	Source string      `json:"source"`
	Groups [][]Block   `json:"groups,omitempty"`
	Span   source.Span `json:"span"`
}

func (*Text) inline()      {}
func (*Styled) inline()    {}
func (*Code) inline()      {}
func (*CodeBlock) inline() {}
func (*SoftBreak) inline() {}
func (*HardBreak) inline() {}
func (*Rule) inline()      {}
func (*Image) inline()     {}
func (*Link) inline()      {}
func (*HTML) inline()      {}
func (*Math) inline()      {}
func (*Command) inline()   {}
func (*Script) inline()    {}

func (*Text) Kind() Kind      { return KindText }
func (*Styled) Kind() Kind    { return KindStyled }
func (*Code) Kind() Kind      { return KindCode }
func (*CodeBlock) Kind() Kind { return KindCodeBlock }
func (*SoftBreak) Kind() Kind { return KindSoftBreak }
func (*HardBreak) Kind() Kind { return KindHardBreak }
func (*Rule) Kind() Kind      { return KindRule }
func (*Image) Kind() Kind     { return KindImage }
func (*Link) Kind() Kind      { return KindLink }
func (*HTML) Kind() Kind      { return KindHTML }
func (*Math) Kind() Kind      { return KindMath }
func (*Command) Kind() Kind   { return KindCommand }
func (*Script) Kind() Kind    { return KindScript }

func (s *Styled) Inlines() *[]Inline { return &s.Inner }
func (i *Image) Inlines() *[]Inline  { return &i.Inner }
func (l *Link) Inlines() *[]Inline   { return &l.Inner }

func (t *Text) Attributes() []Attribute    { return []Attribute{{Key: "value", Value: t.Value}} }
func (c *Code) Attributes() []Attribute    { return []Attribute{{Key: "source", Value: c.Source}} }
func (h *HTML) Attributes() []Attribute    { return []Attribute{{Key: "value", Value: h.Value}} }
func (*SoftBreak) Attributes() []Attribute { return nil }
func (*HardBreak) Attributes() []Attribute { return nil }
func (*Rule) Attributes() []Attribute      { return nil }

func (s *Styled) Attributes() []Attribute {
	return []Attribute{{Key: "style", Value: s.Style}}
}

func (i *Image) Attributes() []Attribute {
	return linkAttributes(i.LinkType, i.URL, i.Title)
}

func (l *Link) Attributes() []Attribute {
	return linkAttributes(l.LinkType, l.URL, l.Title)
}

func linkAttributes(tp LinkType, url, title string) []Attribute {
	return []Attribute{
		{Key: "link_type", Value: tp},
		{Key: "url", Value: url},
		{Key: "title", Value: title},
	}
}

func (b *CodeBlock) Attributes() []Attribute {
	attrs := []Attribute{
		{Key: "language", Value: b.Language},
		{Key: "label", Value: b.Label},
		{Key: "display_cell", Value: b.DisplayCell},
	}
	for i, a := range b.Tags {
		key := a.Key
		if key == "" {
			if i == 0 {
				continue
			}
			key = positionalKey(i)
		}
		attrs = append(attrs, Attribute{Key: key, Value: a.Value})
	}
	return attrs
}

func (m *Math) Attributes() []Attribute {
	return []Attribute{
		{Key: "source", Value: m.Source},
		{Key: "label", Value: m.Label},
		{Key: "display_block", Value: m.DisplayBlock},
	}
}

// Attributes lists the parameters in order. Positional parameters are keyed
// by their index.
func (c *Command) Attributes() []Attribute {
	attrs := make([]Attribute, 0, len(c.Parameters)+1)
	attrs = append(attrs, Attribute{Key: "label", Value: c.Label})
	for i, p := range c.Parameters {
		key := p.Key
		if key == "" {
			key = positionalKey(i)
		}
		attrs = append(attrs, Attribute{Key: key, Value: p.Value})
	}
	return attrs
}

func (s *Script) Attributes() []Attribute {
	return []Attribute{
		{Key: "id", Value: s.ID},
		{Key: "source", Value: s.Source},
	}
}

// Parameter is a command parameter.
type Parameter struct {
	Key   string      `json:"key,omitempty"`
	Value Value       `json:"value"`
	Span  source.Span `json:"span"`
}

// Value is one of FlagValue, ContentValue, StringValue, IntValue or FloatValue.
type Value interface {
	value()
}

type (
	// FlagValue is a ":name" flag.
	FlagValue string

	// ContentValue is parsed markdown content.
	ContentValue []Block

	// StringValue is a string.
	StringValue string

	// IntValue is an integer.
	IntValue int64

	// FloatValue is a floating point number.
	FloatValue float64
)

func (FlagValue) value()    {}
func (ContentValue) value() {}
func (StringValue) value()  {}
func (IntValue) value()     {}
func (FloatValue) value()   {}

func positionalKey(i int) string {
	return strconv.Itoa(i)
}
