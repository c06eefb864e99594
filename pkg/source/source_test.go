package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/cdocparse/pkg/source"
)

func TestSpan(t *testing.T) {
	t.Parallel()

	span := source.NewSpan(2, 5)
	assert.Equal(t, 3, span.Len())
	assert.False(t, span.IsEmpty())
	assert.True(t, span.IsValid())
	assert.True(t, span.Contains(2))
	assert.False(t, span.Contains(5))
	assert.Equal(t, "llo", span.Text("hello world"))
	assert.Equal(t, "2..5", span.String())
	assert.Equal(t, source.NewSpan(1, 9), span.Cover(source.NewSpan(1, 9)))
}

func TestSpan_TextClamps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "lo", source.NewSpan(3, 50).Text("hello"))
	assert.Empty(t, source.NewSpan(9, 12).Text("hello"))
	assert.Equal(t, "hello", source.NewSpan(2, 3).WithMargin("hello", 10))
}

func TestBuildLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected []source.LineInfo
	}{
		{
			name:     "empty content",
			content:  "",
			expected: []source.LineInfo{},
		},
		{
			name:    "single line no newline",
			content: "hello",
			expected: []source.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 5},
			},
		},
		{
			name:    "single line with CRLF",
			content: "hello\r\n",
			expected: []source.LineInfo{
				{StartOffset: 0, NewlineStart: 5, EndOffset: 7},
				{StartOffset: 7, NewlineStart: 7, EndOffset: 7},
			},
		},
		{
			name:    "multiple lines LF",
			content: "a\nbc\n",
			expected: []source.LineInfo{
				{StartOffset: 0, NewlineStart: 1, EndOffset: 2},
				{StartOffset: 2, NewlineStart: 4, EndOffset: 5},
				{StartOffset: 5, NewlineStart: 5, EndOffset: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, source.BuildLines(tt.content))
		})
	}
}

func TestIndex_PositionAt(t *testing.T) {
	t.Parallel()

	idx := source.NewIndex("line1\nline2\nline3")

	tests := []struct {
		offset int
		want   source.Position
	}{
		{0, source.Position{Line: 1, Column: 1}},
		{5, source.Position{Line: 1, Column: 6}},
		{6, source.Position{Line: 2, Column: 1}},
		{14, source.Position{Line: 3, Column: 3}},
		{17, source.Position{Line: 3, Column: 6}},
		{-1, source.Position{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, idx.PositionAt(tt.offset), "offset %d", tt.offset)
	}

	assert.Equal(t, 3, idx.LineCount())
	assert.Equal(t, "line2", idx.LineContent(2))
	assert.Empty(t, idx.LineContent(9))
}

func TestIndex_Offset(t *testing.T) {
	t.Parallel()

	idx := source.NewIndex("ab\ncd")

	off, ok := idx.Offset(source.Position{Line: 2, Column: 2})
	assert.True(t, ok)
	assert.Equal(t, 4, off)

	_, ok = idx.Offset(source.Position{Line: 3, Column: 1})
	assert.False(t, ok)

	_, ok = idx.Offset(source.Position{Line: 1, Column: 0})
	assert.False(t, ok)
}
