// Package compose flattens a raw element list into a single markdown string
// in which every special element is replaced by an inline HTML placeholder
// tag, so that a CommonMark engine can parse the surrounding structure.
package compose

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yaklabco/cdocparse/pkg/raw"
	"github.com/yaklabco/cdocparse/pkg/source"
)

const (
	placeholderPrefix = "<elem-"
	placeholderSuffix = ">"
)

//nolint:gochecknoglobals // Compiled once.
var placeholderPattern = regexp.MustCompile(`<elem-([0-9]+)>`)

// Counters numbers special elements per kind. Code counts fenced blocks
// (level two and above); Other counts inline code, verbatim text and scripts.
type Counters struct {
	Math    int
	Code    int
	Command int
	Other   int
}

// next returns the identifier for kind and advances its counter.
func (c *Counters) next(kind raw.SpecialKind) int {
	var counter *int
	switch k := kind.(type) {
	case *raw.Math:
		counter = &c.Math
	case *raw.CodeBlock:
		counter = &c.Other
		if k.Level > 1 {
			counter = &c.Code
		}
	case *raw.Command:
		counter = &c.Command
	default:
		counter = &c.Other
	}
	id := *counter
	*counter++
	return id
}

// Child is a special element removed from the composed markdown.
type Child struct {
	Special *raw.Special
	Span    source.Span

	// Identifier is the element's index among elements of the same kind.
	Identifier int
}

// Label returns the element label, or "".
func (c Child) Label() string {
	return c.Special.Label
}

// Composed is the placeholder markdown and the elements it stands for.
// Placeholder k refers to Children[k].
type Composed struct {
	Source   string
	Children []Child
	Counters Counters
}

// Compose concatenates the markdown runs of elems, substituting a
// placeholder for each special element. Nested bodies are not composed
// here; the builder composes them when it converts a child.
func Compose(elems []raw.ElementInfo) *Composed {
	out := &Composed{}

	var sb strings.Builder
	for _, el := range elems {
		switch e := el.Element.(type) {
		case raw.Markdown:
			sb.WriteString(escape(string(e)))
		case *raw.Special:
			sb.WriteString(Placeholder(len(out.Children)))
			out.Children = append(out.Children, Child{
				Special:    e,
				Span:       el.Span,
				Identifier: out.Counters.next(e.Kind),
			})
		}
	}
	out.Source = sb.String()

	return out
}

// Child returns the child for placeholder index k.
func (c *Composed) Child(k int) (Child, bool) {
	if k < 0 || k >= len(c.Children) {
		return Child{}, false
	}
	return c.Children[k], true
}

// Placeholder returns the tag standing for child k.
func Placeholder(k int) string {
	return placeholderPrefix + strconv.Itoa(k) + placeholderSuffix
}

// ParsePlaceholder reports whether s is exactly one placeholder tag and
// returns its index.
func ParsePlaceholder(s string) (int, bool) {
	digits, ok := strings.CutPrefix(s, placeholderPrefix)
	if !ok {
		return 0, false
	}
	digits, ok = strings.CutSuffix(digits, placeholderSuffix)
	if !ok || digits == "" {
		return 0, false
	}
	k, err := strconv.Atoi(digits)
	if err != nil || k < 0 {
		return 0, false
	}
	return k, true
}

// Match is one placeholder occurrence inside an HTML fragment.
type Match struct {
	Index int
	Start int
	End   int
}

// Find returns the placeholder tags occurring in s, in order.
func Find(s string) []Match {
	locs := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	out := make([]Match, 0, len(locs))
	for _, loc := range locs {
		k, err := strconv.Atoi(s[loc[2]:loc[3]])
		if err != nil {
			continue
		}
		out = append(out, Match{Index: k, Start: loc[0], End: loc[1]})
	}
	return out
}

// escape rewrites literal placeholder-shaped text so that only tags written
// by Compose are recognised later.
func escape(text string) string {
	if !strings.Contains(text, placeholderPrefix) {
		return text
	}
	return placeholderPattern.ReplaceAllString(text, "&lt;elem-$1>")
}
