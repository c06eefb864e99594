// Package codeast parses the body of a fenced code block into plain source
// segments, exercise solution blocks and "#|key: value" meta directives.
package codeast

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Elem is one segment of a code block. It is either Src or *Solution.
type Elem interface {
	codeElem()
}

// Src is a run of plain source lines, reproduced byte for byte.
type Src string

func (Src) codeElem() {}

// Solution is an exercise region with the full solution and an optional
// placeholder shown to students instead.
type Solution struct {
	// Placeholder is reconstructed from the tagged comment lines, if any.
	Placeholder *string `json:"placeholder,omitempty"`

	// Solution is the solution text, newline terminated.
	Solution string `json:"solution"`
}

func (*Solution) codeElem() {}

// Meta is an insertion-ordered string map holding "#|key: value" directives.
// Setting an existing key replaces its value and keeps its original position.
type Meta struct {
	keys   []string
	values map[string]string
}

// Set stores value under key.
func (m *Meta) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Meta) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *Meta) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of entries.
func (m *Meta) Len() int {
	return len(m.keys)
}

// Each calls fn for every entry in insertion order.
func (m *Meta) Each(fn func(key, value string)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// MarshalJSON writes the map as a JSON object preserving key order.
func (m Meta) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CodeContent is the parsed body of a fenced code block.
type CodeContent struct {
	// Blocks are the segments in source order.
	Blocks []Elem `json:"blocks"`

	// Meta holds the "#|key: value" directives.
	Meta Meta `json:"meta"`

	// Hash is a stable hash of the raw text, used to join execution outputs.
	Hash uint64 `json:"hash"`
}

// String concatenates every segment, choosing the solution or the
// placeholder text for each Solution block.
func (c *CodeContent) String(withSolution bool) string {
	var sb strings.Builder
	for _, block := range c.Blocks {
		switch b := block.(type) {
		case Src:
			sb.WriteString(string(b))
		case *Solution:
			if withSolution {
				sb.WriteString(b.Solution)
			} else if b.Placeholder != nil {
				sb.WriteString(*b.Placeholder)
			}
		}
	}
	return sb.String()
}

// Solutions returns the solution blocks in order.
func (c *CodeContent) Solutions() []*Solution {
	var out []*Solution
	for _, block := range c.Blocks {
		if s, ok := block.(*Solution); ok {
			out = append(out, s)
		}
	}
	return out
}

// HasSolutions reports whether the block contains any exercise region.
func (c *CodeContent) HasSolutions() bool {
	return len(c.Solutions()) > 0
}
