package goldmark

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/compose"
	"github.com/yaklabco/cdocparse/pkg/langdetect"
	"github.com/yaklabco/cdocparse/pkg/raw"
)

// convert turns a composed child into its inline node. Bodies, content
// parameters and script groups go through the whole pipeline again.
func (p *Parser) convert(c compose.Child) ast.Inline {
	s := c.Special

	switch k := s.Kind.(type) {
	case *raw.Math:
		return &ast.Math{Source: k.Source, Label: s.Label, DisplayBlock: k.IsBlock, Span: c.Span}

	case *raw.CodeInline:
		return &ast.Code{Source: k.Source}

	case *raw.CodeBlock:
		return p.codeBlock(c, k)

	case *raw.Verbatim:
		return &ast.Text{Value: k.Source}

	case *raw.Command:
		var body []ast.Block
		if k.Body != nil {
			body = p.nested(k.Body)
		}
		return &ast.Command{
			Function:   k.Function,
			Label:      s.Label,
			Parameters: mapNonEmpty(k.Parameters, p.parameter),
			Body:       body,
			Index:      c.Identifier,
			Span:       c.Span,
		}

	case *raw.Script:
		return &ast.Script{
			ID:     k.ID,
			Source: k.Source,
			Groups: mapNonEmpty(k.Groups, func(g []raw.ElementInfo, _ int) []ast.Block {
				return p.nested(g)
			}),
			Span: c.Span,
		}
	}

	panic(fmt.Sprintf("goldmark: unknown element kind %T", s.Kind))
}

func (p *Parser) codeBlock(c compose.Child, k *raw.CodeBlock) *ast.CodeBlock {
	tags := mapNonEmpty(k.Attributes, func(a raw.CodeAttr, _ int) ast.CodeAttr {
		return ast.CodeAttr{Key: a.Key, Value: a.Value}
	})

	lang, found := lo.Find(k.Attributes, func(a raw.CodeAttr) bool {
		return a.Key == ""
	})
	language := lang.Value
	if !found && p.detectLanguage {
		language = langdetect.DetectContent(k.Content)
	}

	return &ast.CodeBlock{
		Label:       c.Special.Label,
		Source:      k.Content,
		Tags:        tags,
		Language:    language,
		DisplayCell: k.Level == 2,
		Index:       c.Identifier,
		Span:        c.Span,
	}
}

func (p *Parser) parameter(param raw.Parameter, _ int) ast.Parameter {
	var value ast.Value
	switch v := param.Value.(type) {
	case raw.FlagValue:
		value = ast.FlagValue(v)
	case raw.StringValue:
		value = ast.StringValue(v)
	case raw.IntValue:
		value = ast.IntValue(v)
	case raw.FloatValue:
		value = ast.FloatValue(v)
	case raw.ContentValue:
		value = ast.ContentValue(p.nested(v))
	default:
		panic(fmt.Sprintf("goldmark: unknown parameter value %T", param.Value))
	}
	return ast.Parameter{Key: param.Key, Value: value, Span: param.Span}
}

// nested parses a nested element list. The result is never nil so that an
// empty body stays distinguishable from a missing one.
func (p *Parser) nested(elems []raw.ElementInfo) []ast.Block {
	blocks := p.Parse(elems)
	if blocks == nil {
		return []ast.Block{}
	}
	return blocks
}

// mapNonEmpty is lo.Map that keeps empty input nil.
func mapNonEmpty[T, R any](in []T, fn func(T, int) R) []R {
	if len(in) == 0 {
		return nil
	}
	return lo.Map(in, fn)
}
