package raw

import (
	"errors"
	"strconv"
	"strings"

	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// DefaultMaxDepth bounds the nesting of bodies, content parameters and script
// groups.
const DefaultMaxDepth = 64

const metaFence = "---"

type options struct {
	maxDepth int
}

// Option configures Parse.
type Option func(*options)

// WithMaxDepth sets the maximum nesting depth. Values below 1 select
// DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// parser is a single-pass scanner over the document source. All spans it
// produces index the original input.
type parser struct {
	src      string
	pos      int
	depth    int
	maxDepth int
	refs     map[string]Reference
	index    *source.Index
}

// Parse splits src into markdown runs and special elements.
func Parse(src string, opts ...Option) (*RawDocument, error) {
	o := options{maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxDepth < 1 {
		o.maxDepth = DefaultMaxDepth
	}

	p := &parser{
		src:      src,
		maxDepth: o.maxDepth,
		refs:     make(map[string]Reference),
	}

	doc := &RawDocument{References: p.refs}
	doc.Meta = p.meta()

	elems, err := p.elements(false, 0)
	if err != nil {
		return nil, err
	}
	doc.Elements = elems

	return doc, nil
}

// meta consumes a leading "---" fenced block. Without a closing fence line
// nothing is consumed.
func (p *parser) meta() *Meta {
	first, _, ok := strings.Cut(p.src, "\n")
	if !ok || strings.TrimSuffix(first, "\r") != metaFence {
		return nil
	}

	bodyStart := len(first) + 1
	for offset := bodyStart; offset < len(p.src); {
		line := p.src[offset:]
		next := len(line)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			next = i + 1
			line = line[:i]
		}
		if strings.TrimSuffix(line, "\r") == metaFence {
			p.pos = offset + next
			return &Meta{
				Source: p.src[bodyStart:offset],
				Span:   source.NewSpan(0, p.pos),
			}
		}
		offset += next
	}

	return nil
}

// elements scans a sequence of elements. When nested is set the sequence
// ends at the first unbalanced '}', which is left unconsumed; open is the
// offset of the enclosing '{' for error reporting.
func (p *parser) elements(nested bool, open int) ([]ElementInfo, error) {
	var out []ElementInfo
	mdStart := p.pos
	braces := 0

	flush := func(end int) {
		if end > mdStart {
			out = append(out, ElementInfo{
				Element: Markdown(p.src[mdStart:end]),
				Span:    source.NewSpan(mdStart, end),
			})
		}
	}
	emit := func(start int, el ElementInfo) {
		flush(start)
		out = append(out, el)
		mdStart = p.pos
	}

	for p.pos < len(p.src) {
		start := p.pos
		switch p.src[p.pos] {
		case '}':
			if nested {
				if braces == 0 {
					flush(p.pos)
					return out, nil
				}
				braces--
			}
			p.pos++

		case '{':
			if nested {
				braces++
			}
			p.pos++

		case '\\':
			if p.peekAt(1) == '{' {
				el, err := p.verbatim()
				if err != nil {
					return nil, err
				}
				emit(start, el)
				continue
			}
			if isEscapable(p.peekAt(1)) {
				p.pos += 2
				continue
			}
			p.pos++

		case '`':
			el, ok, err := p.code()
			if err != nil {
				return nil, err
			}
			if ok {
				emit(start, el)
			}

		case '$':
			el, ok, err := p.math()
			if err != nil {
				return nil, err
			}
			if ok {
				emit(start, el)
			}

		case '#':
			if !p.commandAllowed(mdStart) {
				p.pos++
				continue
			}
			var el ElementInfo
			var err error
			if p.peekAt(1) == '!' {
				el, err = p.script()
			} else {
				el, err = p.command()
			}
			if err != nil {
				return nil, err
			}
			emit(start, el)

		default:
			p.pos++
		}
	}

	if nested {
		return nil, p.errorf(source.NewSpan(open, len(p.src)), "}", "unterminated block")
	}
	flush(p.pos)

	return out, nil
}

// verbatim consumes "\{ ... \}".
func (p *parser) verbatim() (ElementInfo, error) {
	start := p.pos
	end := strings.Index(p.src[start+2:], `\}`)
	if end < 0 {
		return ElementInfo{}, p.errorf(source.NewSpan(start, len(p.src)), `\}`, "unterminated verbatim block")
	}
	end += start + 2
	p.pos = end + 2

	return ElementInfo{
		Element: &Special{Kind: &Verbatim{Source: p.src[start+2 : end]}},
		Span:    source.NewSpan(start, p.pos),
	}, nil
}

// code consumes an inline code span or a fenced code block. A lone backtick
// without a closing partner is left as markdown and reported as not ok.
func (p *parser) code() (ElementInfo, bool, error) {
	start := p.pos
	level := runLength(p.src, start, '`')
	bodyStart := start + level

	closeAt := findRun(p.src, bodyStart, '`', level)
	if closeAt < 0 {
		if level == 1 {
			p.pos = bodyStart
			return ElementInfo{}, false, nil
		}
		return ElementInfo{}, false, p.errorf(source.NewSpan(start, len(p.src)),
			strings.Repeat("`", level), "unterminated code block")
	}
	p.pos = closeAt + level

	if level == 1 {
		text := p.src[bodyStart:closeAt]
		el := p.labeled(start, &CodeInline{Source: text})
		p.register(el, RefCode, text, nil)
		return el, true, nil
	}

	var attrs []CodeAttr
	body := p.src[bodyStart:closeAt]
	bodyOffset := bodyStart
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		attrs = parseCodeAttrs(body[:nl])
		body = body[nl+1:]
		bodyOffset += nl + 1
	}

	content, err := codeast.Parse(body)
	if err != nil {
		span := source.NewSpan(start, p.pos)
		gerr := p.errorf(span, "", "invalid code block")
		gerr.Cause = err
		var cerr *codeast.Error
		if errors.As(err, &cerr) {
			gerr.Expected = cerr.Expected
			gerr.Position = p.lineIndex().PositionAt(bodyOffset + cerr.Offset)
		}
		return ElementInfo{}, false, gerr
	}

	el := p.labeled(start, &CodeBlock{Level: level, Content: content, Attributes: attrs})
	p.register(el, RefCode, content.String(true), nil)

	return el, true, nil
}

// math consumes "$...$" or "$$...$$". Braces inside must balance and the
// closing sigil only counts at depth zero. Inline math must not start with
// whitespace, and its closing sigil must not follow whitespace or precede a
// digit, so that prices stay text. Without a closing sigil the opening sigil
// is left as markdown.
func (p *parser) math() (ElementInfo, bool, error) {
	start := p.pos
	sigil := 1
	if p.peekAt(1) == '$' {
		sigil = 2
	}
	bodyStart := start + sigil
	p.pos = bodyStart

	if sigil == 1 && (bodyStart >= len(p.src) || isSpace(p.src[bodyStart])) {
		return ElementInfo{}, false, nil
	}

	depth := 0
	for i := bodyStart; i < len(p.src); i++ {
		switch p.src[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth == 0 {
				return ElementInfo{}, false, nil
			}
			depth--
		case '$':
			if depth != 0 || !p.closesMath(i, sigil) {
				continue
			}
			if i == bodyStart {
				return ElementInfo{}, false, nil
			}
			text := p.src[bodyStart:i]
			p.pos = i + sigil
			el := p.labeled(start, &Math{Source: text, IsBlock: sigil == 2})
			p.register(el, RefMath, text, nil)
			return el, true, nil
		}
	}

	return ElementInfo{}, false, nil
}

func (p *parser) closesMath(i, sigil int) bool {
	if sigil == 2 {
		return i+1 < len(p.src) && p.src[i+1] == '$'
	}
	if isSpace(p.src[i-1]) {
		return false
	}
	return i+1 >= len(p.src) || p.src[i+1] < '0' || p.src[i+1] > '9'
}

// command consumes "#name(params){body}|label".
func (p *parser) command() (ElementInfo, error) {
	start := p.pos
	p.pos++
	name := p.ident()

	var params []Parameter
	if p.peek() == '(' {
		var err error
		if params, err = p.parameters(); err != nil {
			return ElementInfo{}, err
		}
	}

	var body []ElementInfo
	if p.peek() == '{' {
		var err error
		if body, err = p.braced(); err != nil {
			return ElementInfo{}, err
		}
	}

	el := p.labeled(start, &Command{Function: name, Parameters: params, Body: body})
	p.register(el, RefCommand, name, params)

	return el, nil
}

// parameters consumes a parenthesized parameter list.
func (p *parser) parameters() ([]Parameter, error) {
	open := p.pos
	p.pos++

	var out []Parameter
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return out, nil
	}

	for {
		p.skipSpace()
		if p.pos >= len(p.src) {
			return nil, p.errorf(source.NewSpan(open, len(p.src)), ")", "unterminated parameter list")
		}

		param, err := p.parameter()
		if err != nil {
			return nil, err
		}
		out = append(out, param)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return out, nil
		case 0:
			return nil, p.errorf(source.NewSpan(open, len(p.src)), ")", "unterminated parameter list")
		default:
			return nil, p.errorf(source.NewSpan(p.pos, p.pos+1), `"," or ")"`, "unexpected character in parameter list")
		}
	}
}

// parameter consumes "key=value" or "value".
func (p *parser) parameter() (Parameter, error) {
	start := p.pos

	var key string
	if isIdentStart(p.peek()) {
		save := p.pos
		id := p.ident()
		p.skipSpace()
		if p.peek() == '=' {
			p.pos++
			p.skipSpace()
			key = id
		} else {
			p.pos = save
		}
	}

	value, err := p.value()
	if err != nil {
		return Parameter{}, err
	}

	return Parameter{Key: key, Value: value, Span: source.NewSpan(start, p.pos)}, nil
}

func (p *parser) value() (Value, error) {
	switch c := p.peek(); {
	case c == '"':
		s, err := p.quoted()
		if err != nil {
			return nil, err
		}
		return StringValue(s), nil

	case c == '{':
		elems, err := p.braced()
		if err != nil {
			return nil, err
		}
		return ContentValue(elems), nil

	case c == ':':
		start := p.pos
		p.pos++
		name := p.ident()
		if name == "" {
			return nil, p.errorf(source.NewSpan(start, p.pos+1), "flag name", "empty flag")
		}
		return FlagValue(name), nil
	}

	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune(",(){}\"\n", rune(p.src[p.pos])) {
		p.pos++
	}
	token := strings.TrimRight(p.src[start:p.pos], " \t\r")
	p.pos = start + len(token)
	span := source.NewSpan(start, p.pos)

	if token == "" {
		return nil, p.errorf(source.NewSpan(start, start+1), "parameter value", "missing parameter value")
	}
	if !isNumericStart(token) {
		return StringValue(token), nil
	}
	// Integers never widen to floats; an out of range literal is an error.
	if !strings.ContainsAny(token, ".eE") {
		if n, err := strconv.ParseInt(token, 10, 64); err == nil {
			return IntValue(n), nil
		}
	} else if f, err := strconv.ParseFloat(token, 64); err == nil && !strings.ContainsAny(token, "xXpP_") {
		return FloatValue(f), nil
	}

	return nil, p.errorf(span, "number", "invalid numeric literal "+strconv.Quote(token))
}

// quoted consumes a double quoted string, resolving \" and \\.
func (p *parser) quoted() (string, error) {
	open := p.pos
	p.pos++

	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '"':
			p.pos++
			return sb.String(), nil
		case c == '\\' && (p.peekAt(1) == '"' || p.peekAt(1) == '\\'):
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}

	return "", p.errorf(source.NewSpan(open, len(p.src)), `"`, "unterminated string")
}

// braced consumes "{ elements }". The result is never nil.
func (p *parser) braced() ([]ElementInfo, error) {
	open := p.pos
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()

	p.pos++
	elems, err := p.elements(true, open)
	if err != nil {
		return nil, err
	}
	p.pos++

	if elems == nil {
		elems = []ElementInfo{}
	}
	return elems, nil
}

// script consumes "#!id{ ... }". Embedded "#{ ... }" groups are parsed as
// markdown and replaced by "#{N}" in the script source.
func (p *parser) script() (ElementInfo, error) {
	start := p.pos
	p.pos += 2
	id := p.ident()

	open := p.pos
	if err := p.enter(open); err != nil {
		return ElementInfo{}, err
	}
	defer p.leave()
	p.pos++

	var sb strings.Builder
	var groups [][]ElementInfo
	depth := 0

	for {
		if p.pos >= len(p.src) {
			return ElementInfo{}, p.errorf(source.NewSpan(open, len(p.src)), "}", "unterminated script")
		}

		c := p.src[p.pos]
		switch {
		case c == '#' && p.peekAt(1) == '{':
			p.pos++
			group, err := p.braced()
			if err != nil {
				return ElementInfo{}, err
			}
			sb.WriteString("#{" + strconv.Itoa(len(groups)) + "}")
			groups = append(groups, group)

		case c == '\\' && p.pos+1 < len(p.src):
			sb.WriteString(p.src[p.pos : p.pos+2])
			p.pos += 2

		case c == '{':
			depth++
			sb.WriteByte(c)
			p.pos++

		case c == '}':
			p.pos++
			if depth == 0 {
				return ElementInfo{
					Element: &Special{Kind: &Script{ID: id, Source: sb.String(), Groups: groups}},
					Span:    source.NewSpan(start, p.pos),
				}, nil
			}
			depth--
			sb.WriteByte(c)

		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
}

// commandAllowed reports whether the '#' at the cursor starts a command or
// script rather than plain text such as a heading, a URL fragment, a link
// anchor or a "{#id}" heading attribute. mdStart is the start of the current
// markdown run; a '{' before it opened a body.
func (p *parser) commandAllowed(mdStart int) bool {
	if p.pos > 0 {
		prev := p.src[p.pos-1]
		if isAlnum(prev) || prev == '/' || prev == '&' {
			return false
		}
		if prev == '(' && p.pos > 1 && p.src[p.pos-2] == ']' {
			return false
		}
		if prev == '{' && p.pos-1 >= mdStart {
			return false
		}
	}

	next := p.peekAt(1)
	if next != '!' {
		return isIdentStart(next)
	}

	i := p.pos + 2
	for i < len(p.src) && isIdentChar(p.src[i]) {
		i++
	}
	return i < len(p.src) && p.src[i] == '{'
}

// labeled wraps kind into a Special, consuming a trailing "|label".
func (p *parser) labeled(start int, kind SpecialKind) ElementInfo {
	special := &Special{Kind: kind}
	if p.peek() == '|' && isLabelChar(p.peekAt(1)) {
		p.pos++
		begin := p.pos
		for p.pos < len(p.src) && isLabelChar(p.src[p.pos]) {
			p.pos++
		}
		special.Label = p.src[begin:p.pos]
	}

	return ElementInfo{Element: special, Span: source.NewSpan(start, p.pos)}
}

// register records a labeled element. A later definition of the same label
// replaces the earlier one.
func (p *parser) register(el ElementInfo, kind RefKind, summary string, params []Parameter) {
	special, ok := el.Element.(*Special)
	if !ok || special.Label == "" {
		return
	}
	p.refs[special.Label] = Reference{
		Kind:       kind,
		Summary:    summary,
		Parameters: params,
		Span:       el.Span,
	}
}

func (p *parser) enter(open int) error {
	p.depth++
	if p.depth > p.maxDepth {
		gerr := p.errorf(source.NewSpan(open, open+1), "", "maximum nesting depth "+strconv.Itoa(p.maxDepth)+" exceeded")
		gerr.Cause = ErrTooDeep
		return gerr
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) ident() string {
	start := p.pos
	if !isIdentStart(p.peek()) {
		return ""
	}
	for p.pos < len(p.src) && isIdentChar(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	return p.peekAt(0)
}

func (p *parser) peekAt(n int) byte {
	if p.pos+n < len(p.src) {
		return p.src[p.pos+n]
	}
	return 0
}

func (p *parser) lineIndex() *source.Index {
	if p.index == nil {
		p.index = source.NewIndex(p.src)
	}
	return p.index
}

func (p *parser) errorf(span source.Span, expected, message string) *GrammarError {
	return &GrammarError{
		Span:     span,
		Position: p.lineIndex().PositionAt(span.Start),
		Expected: expected,
		Message:  message,
	}
}

// parseCodeAttrs splits an opening fence line such as "python, key=val".
func parseCodeAttrs(line string) []CodeAttr {
	var attrs []CodeAttr
	for _, field := range strings.Split(line, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if key, val, ok := strings.Cut(field, "="); ok {
			attrs = append(attrs, CodeAttr{Key: strings.TrimSpace(key), Value: strings.TrimSpace(val)})
			continue
		}
		attrs = append(attrs, CodeAttr{Value: field})
	}
	return attrs
}

// runLength counts consecutive c bytes starting at pos.
func runLength(s string, pos int, c byte) int {
	n := 0
	for pos+n < len(s) && s[pos+n] == c {
		n++
	}
	return n
}

// findRun returns the offset of the next run of exactly n c bytes at or
// after pos, or -1.
func findRun(s string, pos int, c byte, n int) int {
	for pos < len(s) {
		i := strings.IndexByte(s[pos:], c)
		if i < 0 {
			return -1
		}
		pos += i
		run := runLength(s, pos, c)
		if run == n {
			return pos
		}
		pos += run
	}
	return -1
}

func isEscapable(c byte) bool {
	return c != 0 && strings.IndexByte("#$`|\\}", c) >= 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isLabelChar(c byte) bool {
	return isIdentChar(c) || c == ':'
}

func isNumericStart(token string) bool {
	if token[0] == '-' || token[0] == '+' {
		token = token[1:]
	}
	return token != "" && token[0] >= '0' && token[0] <= '9'
}
