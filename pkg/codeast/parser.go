package codeast

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Exercise markers, written after a directive prefix ("#|" or "//|").
const (
	MarkerBeginSolution    = "begin_solution"
	MarkerBeginPlaceholder = "begin_placeholder"
	MarkerEndSolution      = "end_solution"
)

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	directivePrefixes = []string{"#|", "//|"}
	commentPrefixes   = []string{"//", "#", "--", "%"}
	metaPattern       = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_\-]*)\s*:\s*(.*)$`)
)

// Error describes malformed exercise markup inside one code block.
type Error struct {
	// Line is the 1-based line number within the code block text.
	Line int

	// Offset is the byte offset of the offending line within the code block text.
	Offset int

	// Expected names what the grammar expected at this point.
	Expected string

	// Message describes what was found.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s (expected %s)", e.Line, e.Message, e.Expected)
}

type state int

const (
	stateSource state = iota
	stateSolution
	statePlaceholder
)

type directiveKind int

const (
	directiveNone directiveKind = iota
	directiveMarker
	directiveMeta
)

type directive struct {
	kind   directiveKind
	marker string
	key    string
	value  string
}

type parser struct {
	content *CodeContent
	state   state

	src         strings.Builder
	solution    strings.Builder
	placeholder strings.Builder
	hasHolder   bool
	openLine    int
	openOffset  int
}

// Parse splits the text of a fenced code block into segments.
// The hash is computed over text exactly as given, so it joins with outputs
// recorded for the same fence body. Surrounding blank lines and trailing
// whitespace are then removed and the segments are newline terminated.
func Parse(text string) (*CodeContent, error) {
	trimmed, lead := trimBlock(text)

	p := &parser{content: &CodeContent{Hash: xxhash.Sum64String(text)}}
	if trimmed == "" {
		return p.content, nil
	}

	padded := trimmed + "\n"
	lineNo := 0
	for offset := 0; offset < len(padded); {
		end := strings.IndexByte(padded[offset:], '\n')
		line := padded[offset : offset+end+1]
		lineNo++

		if err := p.line(line, lineNo, lead+offset); err != nil {
			return nil, err
		}
		offset += len(line)
	}

	if p.state != stateSource {
		return nil, &Error{
			Line:     p.openLine,
			Offset:   p.openOffset,
			Expected: MarkerEndSolution,
			Message:  "unterminated solution block",
		}
	}
	p.flushSource()

	return p.content, nil
}

func (p *parser) line(line string, lineNo, offset int) error {
	d := parseDirective(strings.TrimRight(line, "\r\n"))

	switch d.kind {
	case directiveMeta:
		p.content.Meta.Set(d.key, d.value)
		return nil
	case directiveMarker:
		return p.marker(d.marker, lineNo, offset)
	case directiveNone:
	}

	switch p.state {
	case stateSource:
		p.src.WriteString(line)
	case stateSolution:
		p.solution.WriteString(line)
	case statePlaceholder:
		text, ok := uncomment(line)
		if !ok {
			return &Error{
				Line:     lineNo,
				Offset:   offset,
				Expected: "code comment",
				Message:  fmt.Sprintf("placeholder line %q is not a comment", strings.TrimSpace(line)),
			}
		}
		p.placeholder.WriteString(text)
	}

	return nil
}

func (p *parser) marker(marker string, lineNo, offset int) error {
	switch marker {
	case MarkerBeginSolution:
		if p.state != stateSource {
			return &Error{Line: lineNo, Offset: offset, Expected: MarkerEndSolution, Message: "nested " + marker}
		}
		p.flushSource()
		p.state = stateSolution
		p.openLine, p.openOffset = lineNo, offset

	case MarkerBeginPlaceholder:
		if p.state != stateSolution {
			return &Error{Line: lineNo, Offset: offset, Expected: MarkerBeginSolution, Message: marker + " outside a solution"}
		}
		p.state = statePlaceholder
		p.hasHolder = true

	case MarkerEndSolution:
		if p.state == stateSource {
			return &Error{Line: lineNo, Offset: offset, Expected: MarkerBeginSolution, Message: marker + " without " + MarkerBeginSolution}
		}
		p.flushSolution()
		p.state = stateSource
	}

	return nil
}

func (p *parser) flushSource() {
	if p.src.Len() == 0 {
		return
	}
	p.content.Blocks = append(p.content.Blocks, Src(p.src.String()))
	p.src.Reset()
}

func (p *parser) flushSolution() {
	sol := &Solution{Solution: p.solution.String()}
	if p.hasHolder {
		holder := p.placeholder.String()
		sol.Placeholder = &holder
	}
	p.content.Blocks = append(p.content.Blocks, sol)

	p.solution.Reset()
	p.placeholder.Reset()
	p.hasHolder = false
}

func parseDirective(line string) directive {
	trimmed := strings.TrimLeft(line, " \t")
	for _, prefix := range directivePrefixes {
		rest, ok := strings.CutPrefix(trimmed, prefix)
		if !ok {
			continue
		}
		rest = strings.TrimSpace(rest)

		switch rest {
		case MarkerBeginSolution, MarkerBeginPlaceholder, MarkerEndSolution:
			return directive{kind: directiveMarker, marker: rest}
		}

		if m := metaPattern.FindStringSubmatch(rest); m != nil {
			return directive{kind: directiveMeta, key: m[1], value: strings.TrimSpace(m[2])}
		}
	}
	return directive{kind: directiveNone}
}

// uncomment strips the comment prefix and one following space from a
// placeholder line, keeping its leading whitespace.
func uncomment(line string) (string, bool) {
	body := strings.TrimRight(line, "\r\n")
	ending := line[len(body):]

	rest := strings.TrimLeft(body, " \t")
	if rest == "" {
		return line, true
	}
	indent := body[:len(body)-len(rest)]

	for _, prefix := range commentPrefixes {
		if after, ok := strings.CutPrefix(rest, prefix); ok {
			after = strings.TrimPrefix(after, " ")
			return indent + after + ending, true
		}
	}
	return "", false
}

// trimBlock removes leading blank lines and trailing whitespace. It returns
// the trimmed text and the number of bytes dropped from the front.
func trimBlock(text string) (string, int) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	start := 0
	for {
		nl := strings.IndexByte(trimmed[start:], '\n')
		if nl < 0 || strings.TrimSpace(trimmed[start:start+nl]) != "" {
			break
		}
		start += nl + 1
	}
	return trimmed[start:], start
}
