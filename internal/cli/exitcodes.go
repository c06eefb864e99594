package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/cdocparse/internal/configloader"
	"github.com/yaklabco/cdocparse/pkg/document"
	"github.com/yaklabco/cdocparse/pkg/fsutil"
	"github.com/yaklabco/cdocparse/pkg/raw"
)

// Exit codes for cdocparse.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitParseError indicates the document failed to parse.
	ExitParseError = 1

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// ErrParseFailed is returned after a parse error has been reported.
var ErrParseFailed = errors.New("parse failed")

// ErrInvalidUsage wraps flag and argument errors.
var ErrInvalidUsage = errors.New("invalid usage")

// ExitCodeFromError maps a command error to a process exit code.
func ExitCodeFromError(err error) int {
	var (
		validationErr *configloader.ValidationError
		grammarErr    *raw.GrammarError
		metaErr       *document.MetadataError
	)

	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrParseFailed), errors.As(err, &grammarErr), errors.As(err, &metaErr):
		return ExitParseError
	case errors.Is(err, ErrInvalidUsage):
		return ExitInvalidUsage
	case errors.As(err, &validationErr):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission),
		errors.Is(err, fsutil.ErrIsDirectory), errors.Is(err, fsutil.ErrNotText):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
