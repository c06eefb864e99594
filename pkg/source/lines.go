package source

import "sort"

// LineInfo holds metadata for a single line of the source.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of input).
	EndOffset int
}

// Position represents a 1-based line and column.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// Index maps byte offsets of one source string to line/column positions.
type Index struct {
	content string
	lines   []LineInfo
}

// NewIndex builds the line index for content.
func NewIndex(content string) *Index {
	return &Index{content: content, lines: BuildLines(content)}
}

// BuildLines constructs line metadata from content.
// It handles both LF (\n) and CRLF (\r\n) line endings.
func BuildLines(content string) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	var lines []LineInfo
	lineStart := 0

	for idx := range len(content) {
		if content[idx] != '\n' {
			continue
		}

		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}

		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	// Last line may not have a trailing newline.
	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineCount returns the number of lines in the source.
func (x *Index) LineCount() int {
	return len(x.lines)
}

// Lines returns the line table.
func (x *Index) Lines() []LineInfo {
	return x.lines
}

// PositionAt converts a byte offset to a 1-based line and column.
// Column counts bytes, not runes.
// Returns the zero Position if the offset is out of range.
func (x *Index) PositionAt(offset int) Position {
	if offset < 0 || len(x.lines) == 0 {
		return Position{}
	}

	if offset >= len(x.content) {
		last := x.lines[len(x.lines)-1]
		return Position{Line: len(x.lines), Column: offset - last.StartOffset + 1}
	}

	lineIdx := sort.Search(len(x.lines), func(i int) bool {
		return x.lines[i].EndOffset > offset
	})
	if lineIdx >= len(x.lines) {
		lineIdx = len(x.lines) - 1
	}

	line := x.lines[lineIdx]
	if offset < line.StartOffset {
		return Position{}
	}

	return Position{Line: lineIdx + 1, Column: offset - line.StartOffset + 1}
}

// Offset converts a 1-based line and column to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (x *Index) Offset(pos Position) (int, bool) {
	if pos.Line < 1 || pos.Line > len(x.lines) || pos.Column < 1 {
		return 0, false
	}

	line := x.lines[pos.Line-1]
	offset := line.StartOffset + pos.Column - 1

	if offset > line.EndOffset {
		return 0, false
	}

	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the newline.
func (x *Index) LineContent(line int) string {
	if line < 1 || line > len(x.lines) {
		return ""
	}

	info := x.lines[line-1]
	return x.content[info.StartOffset:info.NewlineStart]
}
