// Package source provides byte spans into the original document text and
// the line index used to report them as line:column positions.
package source

import "fmt"

// Span is a half-open byte range [Start, End) into the original source string.
type Span struct {
	// Start is the byte index where the range begins (inclusive).
	Start int `json:"start"`

	// End is the byte index where the range ends (exclusive).
	End int `json:"end"`
}

// NewSpan creates a span covering [start, end).
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return s.End - s.Start
}

// IsEmpty returns true if the span has zero length.
func (s Span) IsEmpty() bool {
	return s.Start == s.End
}

// IsValid reports whether the span is well formed.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Contains returns true if the given offset is within this span.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	return Span{Start: min(s.Start, other.Start), End: max(s.End, other.End)}
}

// Text returns the slice of input covered by the span.
// Out of range spans are clamped to the input.
func (s Span) Text(input string) string {
	start := min(max(s.Start, 0), len(input))
	end := min(max(s.End, start), len(input))
	return input[start:end]
}

// WithMargin returns the covered text widened by margin bytes on each side.
func (s Span) WithMargin(input string, margin int) string {
	return Span{Start: s.Start - margin, End: s.End + margin}.Text(input)
}

// String implements fmt.Stringer.
func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}
