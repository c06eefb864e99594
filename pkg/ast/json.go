package ast

import (
	"encoding/json"
)

// tagged marshals v as a JSON object and prepends a "type" member.
func tagged(kind string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, len(body)+len(tag)+len(`{"type":,}`))
	buf = append(buf, `{"type":`...)
	buf = append(buf, tag...)
	if len(body) > len("{}") {
		buf = append(buf, ',')
	}
	buf = append(buf, body[1:]...)
	return buf, nil
}

func (h *Heading) MarshalJSON() ([]byte, error) {
	type plain Heading
	return tagged(string(h.Kind()), (*plain)(h))
}

func (p *Plain) MarshalJSON() ([]byte, error) {
	type plain Plain
	return tagged(string(p.Kind()), (*plain)(p))
}

func (p *Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	return tagged(string(p.Kind()), (*plain)(p))
}

func (q *BlockQuote) MarshalJSON() ([]byte, error) {
	type plain BlockQuote
	return tagged(string(q.Kind()), (*plain)(q))
}

func (l *List) MarshalJSON() ([]byte, error) {
	type plain List
	return tagged(string(l.Kind()), (*plain)(l))
}

func (i *ListItem) MarshalJSON() ([]byte, error) {
	type plain ListItem
	return tagged(string(i.Kind()), (*plain)(i))
}

func (t *Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return tagged(string(t.Kind()), (*plain)(t))
}

func (s *Styled) MarshalJSON() ([]byte, error) {
	type plain Styled
	return tagged(string(s.Kind()), (*plain)(s))
}

func (c *Code) MarshalJSON() ([]byte, error) {
	type plain Code
	return tagged(string(c.Kind()), (*plain)(c))
}

func (b *CodeBlock) MarshalJSON() ([]byte, error) {
	type plain CodeBlock
	return tagged(string(b.Kind()), (*plain)(b))
}

func (b *SoftBreak) MarshalJSON() ([]byte, error) {
	return tagged(string(b.Kind()), struct{}{})
}

func (b *HardBreak) MarshalJSON() ([]byte, error) {
	return tagged(string(b.Kind()), struct{}{})
}

func (r *Rule) MarshalJSON() ([]byte, error) {
	return tagged(string(r.Kind()), struct{}{})
}

func (i *Image) MarshalJSON() ([]byte, error) {
	type plain Image
	return tagged(string(i.Kind()), (*plain)(i))
}

func (l *Link) MarshalJSON() ([]byte, error) {
	type plain Link
	return tagged(string(l.Kind()), (*plain)(l))
}

func (h *HTML) MarshalJSON() ([]byte, error) {
	type plain HTML
	return tagged(string(h.Kind()), (*plain)(h))
}

func (m *Math) MarshalJSON() ([]byte, error) {
	type plain Math
	return tagged(string(m.Kind()), (*plain)(m))
}

func (c *Command) MarshalJSON() ([]byte, error) {
	type plain Command
	return tagged(string(c.Kind()), (*plain)(c))
}

func (s *Script) MarshalJSON() ([]byte, error) {
	type plain Script
	return tagged(string(s.Kind()), (*plain)(s))
}

type valueJSON[T any] struct {
	Value T `json:"value"`
}

func (v FlagValue) MarshalJSON() ([]byte, error) {
	return tagged("flag", valueJSON[string]{Value: string(v)})
}

func (v ContentValue) MarshalJSON() ([]byte, error) {
	blocks := []Block(v)
	if blocks == nil {
		blocks = []Block{}
	}
	return tagged("content", valueJSON[[]Block]{Value: blocks})
}

func (v StringValue) MarshalJSON() ([]byte, error) {
	return tagged("string", valueJSON[string]{Value: string(v)})
}

func (v IntValue) MarshalJSON() ([]byte, error) {
	return tagged("int", valueJSON[int64]{Value: int64(v)})
}

func (v FloatValue) MarshalJSON() ([]byte, error) {
	return tagged("float", valueJSON[float64]{Value: float64(v)})
}
