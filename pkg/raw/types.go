// Package raw implements the grammar front-end: it splits an extended
// markdown source into runs of plain markdown and special elements (math,
// code, commands, verbatim text and scripts), each tagged with the byte span
// it was parsed from.
package raw

import (
	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// RawDocument is the result of the grammar front-end.
type RawDocument struct {
	// Elements is the flat, ordered element list of the document body.
	Elements []ElementInfo

	// Meta is the leading metadata block, nil if the document has none.
	Meta *Meta

	// References maps labels to the element that defined them.
	References map[string]Reference
}

// Meta is the raw text of the leading metadata block.
type Meta struct {
	Source string
	Span   source.Span
}

// ElementInfo is one parsed element and the span it covers.
type ElementInfo struct {
	Element Element
	Span    source.Span
}

// Element is either Markdown or *Special.
type Element interface {
	element()
}

// Markdown is a run of plain markdown text.
type Markdown string

func (Markdown) element() {}

// Special is a non-markdown construct, optionally labeled.
type Special struct {
	// Label is the "|label" marker, empty if absent.
	Label string

	// Kind holds the element specific payload.
	Kind SpecialKind
}

func (*Special) element() {}

// SpecialKind is implemented by Math, CodeInline, CodeBlock, Command,
// Verbatim and Script.
type SpecialKind interface {
	specialKind()
}

// Math is a math expression delimited by $ (inline) or $$ (display).
type Math struct {
	Source  string
	IsBlock bool
}

// CodeInline is a single backtick code span.
type CodeInline struct {
	Source string
}

// CodeBlock is a fenced region of two (cell) or more (listing) backticks.
type CodeBlock struct {
	// Level is the fence length.
	Level int

	// Content is the parsed fence body.
	Content *codeast.CodeContent

	// Attributes is the attribute list of the opening fence line.
	Attributes []CodeAttr
}

// CodeAttr is one entry of a code fence attribute list.
type CodeAttr struct {
	// Key is empty for positional attributes.
	Key   string
	Value string
}

// Command is a "#name(params){body}" construct.
type Command struct {
	Function   string
	Parameters []Parameter

	// Body is nil when the command has no body.
	Body []ElementInfo
}

// Verbatim is text protected by "\{ ... \}".
type Verbatim struct {
	Source string
}

// Script is a "#!id{ ... }" directive. Embedded "#{ ... }" markdown groups
// are parsed into Groups and replaced by "#{N}" in Source.
type Script struct {
	ID     string
	Source string
	Groups [][]ElementInfo
}

func (*Math) specialKind()       {}
func (*CodeInline) specialKind() {}
func (*CodeBlock) specialKind()  {}
func (*Command) specialKind()    {}
func (*Verbatim) specialKind()   {}
func (*Script) specialKind()     {}

// Parameter is one command parameter.
type Parameter struct {
	// Key is empty for positional parameters.
	Key   string
	Value Value
	Span  source.Span
}

// Value is one of FlagValue, ContentValue, StringValue, IntValue or FloatValue.
type Value interface {
	value()
}

type (
	// FlagValue is a ":name" flag.
	FlagValue string

	// ContentValue is brace-delimited markdown.
	ContentValue []ElementInfo

	// StringValue is a quoted string or a bare token.
	StringValue string

	// IntValue is an integer literal.
	IntValue int64

	// FloatValue is a floating point literal.
	FloatValue float64
)

func (FlagValue) value()    {}
func (ContentValue) value() {}
func (StringValue) value()  {}
func (IntValue) value()     {}
func (FloatValue) value()   {}

// RefKind classifies the element a label points at.
type RefKind string

const (
	RefMath    RefKind = "math"
	RefCode    RefKind = "code"
	RefCommand RefKind = "command"
)

// Reference is an entry of the label table.
type Reference struct {
	Kind RefKind `json:"kind"`

	// Summary is the math source, code source or command name.
	Summary string `json:"summary"`

	// Parameters holds the command parameters for RefCommand.
	Parameters []Parameter `json:"-"`

	Span source.Span `json:"span"`
}
