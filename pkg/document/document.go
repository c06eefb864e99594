// Package document parses a complete source file into its metadata, block
// tree, label table and code output slots.
package document

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/cdocparse/internal/logging"
	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/config"
	"github.com/yaklabco/cdocparse/pkg/parser/goldmark"
	"github.com/yaklabco/cdocparse/pkg/raw"
)

// Document is a parsed source file.
type Document struct {
	Meta    Metadata    `json:"meta"`
	Content []ast.Block `json:"content"`

	// References maps labels to the elements that define them.
	References map[string]raw.Reference `json:"references"`

	// CodeOutputs is keyed by code block content hash.
	CodeOutputs map[uint64]*CodeOutput `json:"code_outputs"`
}

// Option configures a Parser.
type Option func(*Parser)

// WithConfig sets the parser configuration. A nil config keeps the defaults.
func WithConfig(cfg *config.Config) Option {
	return func(p *Parser) {
		if cfg != nil {
			p.cfg = cfg.Clone()
		}
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

// Parser turns source text into Documents. It is safe for concurrent use.
type Parser struct {
	cfg      *config.Config
	logger   *log.Logger
	markdown *goldmark.Parser
}

// NewParser creates a Parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		cfg:    config.NewConfig(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}

	mdOpts := []goldmark.Option{goldmark.WithLogger(p.logger)}
	if p.cfg.HeadingAttributes {
		mdOpts = append(mdOpts, goldmark.WithHeadingAttributes())
	}
	if p.cfg.DetectLanguage {
		mdOpts = append(mdOpts, goldmark.WithLanguageDetection())
	}
	p.markdown = goldmark.New(string(p.cfg.Flavor), mdOpts...)

	return p
}

// Parse parses src with a default Parser configured by opts.
func Parse(src string, opts ...Option) (*Document, error) {
	return NewParser(opts...).Parse(src)
}

// Parse parses src. Grammar errors are returned as *raw.GrammarError and
// invalid front matter as *MetadataError.
func (p *Parser) Parse(src string) (*Document, error) {
	rawDoc, err := raw.Parse(src, raw.WithMaxDepth(p.cfg.Depth()))
	if err != nil {
		return nil, fmt.Errorf("parse source: %w", err)
	}
	p.logger.Debug("scanned source",
		logging.FieldElements, len(rawDoc.Elements),
		logging.FieldReferences, len(rawDoc.References))

	meta := DefaultMetadata()
	if rawDoc.Meta != nil {
		meta, err = ParseMetadata(rawDoc.Meta.Source)
		if err != nil {
			return nil, &MetadataError{Span: rawDoc.Meta.Span, Err: errors.Unwrap(err)}
		}
	}

	content := p.markdown.Parse(rawDoc.Elements)
	outputs := collectOutputs(content)
	p.logger.Debug("built document",
		logging.FieldBlocks, len(content),
		logging.FieldCodeBlocks, len(outputs))

	return &Document{
		Meta:        meta,
		Content:     content,
		References:  rawDoc.References,
		CodeOutputs: outputs,
	}, nil
}
