// Package cli provides the Cobra command structure for cdocparse.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/cdocparse/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root cdocparse command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "cdocparse",
		Short: "Parse extended Markdown course documents",
		Long: `cdocparse parses extended Markdown documents into a typed tree.

On top of CommonMark (or GitHub Flavored Markdown) it understands inline and
display math, code cells with exercise regions, "#name(params){body}"
commands, embedded scripts and labels that cross-reference them. Documents
can be dumped as JSON for other tools or inspected as a styled tree.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newParseCommand())
	rootCmd.AddCommand(newRefsCommand())
	rootCmd.AddCommand(newCodeCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
