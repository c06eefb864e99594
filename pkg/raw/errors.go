package raw

import (
	"errors"
	"fmt"

	"github.com/yaklabco/cdocparse/pkg/source"
)

// ErrTooDeep is wrapped by the GrammarError returned when nesting exceeds the
// configured maximum depth.
var ErrTooDeep = errors.New("nesting too deep")

// GrammarError reports malformed syntax. It always aborts the parse.
type GrammarError struct {
	// Span covers the offending construct in the original source.
	Span source.Span

	// Position is the 1-based line/column of Span.Start.
	Position source.Position

	// Expected describes the token the grammar was looking for.
	Expected string

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error (e.g. a *codeast.Error), if any.
	Cause error
}

// Error implements the error interface.
func (e *GrammarError) Error() string {
	msg := e.Message
	if e.Expected != "" {
		msg = fmt.Sprintf("%s (expected %s)", msg, e.Expected)
	}
	if e.Cause != nil && !errors.Is(e.Cause, ErrTooDeep) {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Position.IsValid() {
		return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *GrammarError) Unwrap() error {
	return e.Cause
}
