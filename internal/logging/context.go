package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

type contextKey int

const (
	loggerKey contextKey = iota
	inputKey
)

// FromContext returns the logger attached to ctx, or the default logger.
func FromContext(ctx context.Context) *log.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// WithInput records the document being parsed. The logger of the returned
// context tags every entry with FieldInput.
func WithInput(ctx context.Context, path string) context.Context {
	logger := FromContext(ctx).With(FieldInput, path)
	return context.WithValue(WithLogger(ctx, logger), inputKey, path)
}

// InputFromContext returns the path recorded by WithInput, if any.
func InputFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	path, ok := ctx.Value(inputKey).(string)
	return path, ok
}
