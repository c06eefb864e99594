package pretty

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/document"
	"github.com/yaklabco/cdocparse/pkg/raw"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// FormatError formats a parse failure for terminal output. Grammar and
// metadata errors are shown with the offending source line; other errors
// fall back to their message.
func (s *Styles) FormatError(path, src string, err error, showContext bool) string {
	var (
		grammarErr *raw.GrammarError
		metaErr    *document.MetadataError
	)

	switch {
	case errors.As(err, &grammarErr):
		msg := grammarErr.Message
		if errors.Is(grammarErr, raw.ErrTooDeep) {
			msg = raw.ErrTooDeep.Error()
		}
		var codeErr *codeast.Error
		if errors.As(grammarErr.Cause, &codeErr) {
			msg = fmt.Sprintf("%s: %s", msg, codeErr.Message)
		}
		return s.formatAt(path, src, grammarErr.Span, msg, grammarErr.Expected, showContext)

	case errors.As(err, &metaErr):
		return s.formatAt(path, src, metaErr.Span, fmt.Sprintf("invalid metadata: %v", metaErr.Err), "", showContext)
	}

	return fmt.Sprintf("  %s  %s  %s\n", s.FilePath.Render(path), s.Error.Render("error"), s.Message.Render(err.Error()))
}

func (s *Styles) formatAt(path, src string, span source.Span, msg, expected string, showContext bool) string {
	var builder strings.Builder

	idx := source.NewIndex(src)
	pos := idx.PositionAt(span.Start)

	location := s.FilePath.Render(path)
	if pos.IsValid() {
		location += s.Location.Render(fmt.Sprintf(":%d:%d", pos.Line, pos.Column))
	}

	builder.WriteString(fmt.Sprintf("  %s  %s  %s\n",
		location,
		s.Error.Render("error"),
		s.Message.Render(msg),
	))

	if expected != "" {
		builder.WriteString("    " + s.Dim.Render("expected") + " " + s.Expected.Render(expected) + "\n")
	}

	if showContext && pos.IsValid() {
		builder.WriteString(s.FormatSourceContext(idx.LineContent(pos.Line), pos.Column))
	}

	return builder.String()
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	const indent = "        "

	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// FormatFileHeader formats a file header for grouped output.
func (s *Styles) FormatFileHeader(path string, count int, noun string) string {
	header := s.FilePath.Render(path)
	if count > 0 {
		header += s.Dim.Render(fmt.Sprintf(" (%d %s)", count, noun))
	}
	return header
}
