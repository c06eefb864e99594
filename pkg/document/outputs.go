package document

import (
	"slices"

	"github.com/samber/lo"

	"github.com/yaklabco/cdocparse/pkg/ast"
)

// OutputKind is the MIME-like type of one execution output value.
type OutputKind string

const (
	OutputText       OutputKind = "text/plain"
	OutputPNG        OutputKind = "image/png"
	OutputSVG        OutputKind = "image/svg+xml"
	OutputJSON       OutputKind = "application/json"
	OutputHTML       OutputKind = "text/html"
	OutputJavaScript OutputKind = "application/javascript"
	OutputError      OutputKind = "error"
)

// OutputValue is one value produced by running a code block.
type OutputValue struct {
	Kind OutputKind `json:"kind"`

	// Data is the text payload; images are base64 encoded.
	Data string `json:"data,omitempty"`

	// JSON is the decoded payload of OutputJSON values.
	JSON any `json:"json,omitempty"`
}

// CodeOutput collects the outputs of one code block.
type CodeOutput struct {
	Values []OutputValue `json:"values"`
}

// collectOutputs returns an empty output entry for every code block in
// blocks, keyed by content hash. Blocks nested in command bodies, content
// parameters and script groups are included.
func collectOutputs(blocks []ast.Block) map[uint64]*CodeOutput {
	outputs := make(map[uint64]*CodeOutput)
	c := &outputCollector{outputs: outputs}
	// The collector never fails.
	_ = ast.Walk(c, &blocks)
	return outputs
}

type outputCollector struct {
	ast.Base
	outputs map[uint64]*CodeOutput
}

func (c *outputCollector) VisitCodeBlock(b *ast.CodeBlock) error {
	if b.Source == nil {
		return nil
	}
	if _, ok := c.outputs[b.Source.Hash]; !ok {
		c.outputs[b.Source.Hash] = &CodeOutput{}
	}
	return nil
}

// AttachOutputs stores execution results on the document. Results for
// hashes that match no code block are not stored; their hashes are
// returned in ascending order.
func (d *Document) AttachOutputs(results map[uint64]CodeOutput) []uint64 {
	if d.CodeOutputs == nil {
		d.CodeOutputs = make(map[uint64]*CodeOutput)
	}

	unknown := lo.Filter(lo.Keys(results), func(hash uint64, _ int) bool {
		_, ok := d.CodeOutputs[hash]
		return !ok
	})
	slices.Sort(unknown)

	for hash, out := range results {
		if _, ok := d.CodeOutputs[hash]; ok {
			stored := out
			d.CodeOutputs[hash] = &stored
		}
	}

	return unknown
}

// Output returns the outputs attached to a code block.
func (d *Document) Output(b *ast.CodeBlock) (*CodeOutput, bool) {
	if b == nil || b.Source == nil {
		return nil, false
	}
	out, ok := d.CodeOutputs[b.Source.Hash]
	return out, ok
}
