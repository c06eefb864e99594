// Package goldmark builds the document tree from composed markdown using
// the goldmark CommonMark parser.
package goldmark

import (
	"github.com/charmbracelet/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/cdocparse/internal/logging"
	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/compose"
	"github.com/yaklabco/cdocparse/pkg/raw"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Parser builds document trees. It is safe for concurrent use.
type Parser struct {
	flavor            string
	headingAttributes bool
	detectLanguage    bool
	logger            *log.Logger
	md                goldmark.Markdown
}

// Option configures a Parser.
type Option func(*Parser)

// WithHeadingAttributes enables "{#id .class}" attribute blocks on headings.
func WithHeadingAttributes() Option {
	return func(p *Parser) {
		p.headingAttributes = true
	}
}

// WithLanguageDetection guesses the language of code blocks that do not
// name one.
func WithLanguageDetection() Option {
	return func(p *Parser) {
		p.detectLanguage = true
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string, opts ...Option) *Parser {
	p := &Parser{
		flavor: flavorOrDefault(flavor),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.md = newGoldmarkInstance(p.flavor, p.headingAttributes)
	return p
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Parse composes elems and builds their document tree.
func (p *Parser) Parse(elems []raw.ElementInfo) []ast.Block {
	return p.Build(compose.Compose(elems))
}

// Build parses the composed markdown and replaces each placeholder with the
// node of its child. It panics if the composed input is inconsistent.
func (p *Parser) Build(c *compose.Composed) []ast.Block {
	blocks := p.build(c, c.Source)
	p.logger.Debug("built document tree", logging.FieldChildren, len(c.Children), logging.FieldBlocks, len(blocks))
	return blocks
}

// build parses markdown, which may be c.Source or a fragment of it.
func (p *Parser) build(c *compose.Composed, markdown string) []ast.Block {
	src := []byte(markdown)
	doc := p.md.Parser().Parse(text.NewReader(src), parser.WithContext(parser.NewContext()))

	events, dropped := Events(src, doc)
	for _, kind := range dropped {
		p.logger.Debug("dropping unsupported markdown node", logging.FieldKind, kind.String())
	}

	b := &builder{parser: p, composed: c, src: src}
	return b.build(events)
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string, headingAttributes bool) goldmark.Markdown {
	var opts []goldmark.Option

	// Configure extensions based on flavor.
	switch flavor {
	case FlavorGFM:
		opts = append(opts,
			goldmark.WithExtensions(
				extension.GFM,
			),
		)
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	if headingAttributes {
		opts = append(opts, goldmark.WithParserOptions(parser.WithHeadingAttribute()))
	}

	return goldmark.New(opts...)
}
