// Package main is the entry point for the cdocparse CLI.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/yaklabco/cdocparse/internal/cli"
	"github.com/yaklabco/cdocparse/internal/logging"
)

// Build-time variables set via ldflags by the stave build target.
//
//nolint:gochecknoglobals // Version variables must be package-level for ldflags injection
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	info := cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	rootCmd := cli.NewRootCommand(info)

	ctx := logging.WithLogger(context.Background(), logging.Default())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Parse errors were already rendered with their source context.
		if !errors.Is(err, cli.ErrParseFailed) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		return cli.ExitCodeFromError(err)
	}

	return cli.ExitSuccess
}
