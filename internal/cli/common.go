package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yaklabco/cdocparse/internal/configloader"
	"github.com/yaklabco/cdocparse/internal/logging"
	"github.com/yaklabco/cdocparse/internal/ui/pretty"
	"github.com/yaklabco/cdocparse/pkg/config"
	"github.com/yaklabco/cdocparse/pkg/document"
	"github.com/yaklabco/cdocparse/pkg/fsutil"
)

const (
	stdinPath        = "-"
	defaultTermWidth = 100
)

// parseFlags are shared by the commands that parse a document.
type parseFlags struct {
	flavor            string
	format            string
	maxDepth          int
	headingAttributes bool
	detectLanguage    bool
	solutions         bool
}

func addParseFlags(cmd *cobra.Command, flags *parseFlags) {
	cmd.Flags().StringVar(&flags.flavor, "flavor", "commonmark", "Markdown flavor: commonmark, gfm")
	cmd.Flags().StringVar(&flags.format, "format", "tree", "output format: tree, json")
	cmd.Flags().IntVar(&flags.maxDepth, "max-depth", config.DefaultMaxDepth, "maximum nesting depth of commands and groups")
	cmd.Flags().BoolVar(&flags.headingAttributes, "heading-attributes", false, `parse "{#id .class}" heading attributes`)
	cmd.Flags().BoolVar(&flags.detectLanguage, "detect-language", false, "guess the language of untagged code blocks")
	cmd.Flags().BoolVar(&flags.solutions, "solutions", false, "include exercise solutions in output")
}

// cliConfig builds a config holding only the flags the user set, so that
// unset flags do not override file and environment layers.
func cliConfig(cmd *cobra.Command, flags *parseFlags) *config.Config {
	cfg := &config.Config{}
	changed := cmd.Flags().Changed

	if changed("flavor") {
		cfg.Flavor = config.Flavor(flags.flavor)
	}
	if changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	if changed("max-depth") {
		cfg.MaxDepth = flags.maxDepth
	}
	cfg.HeadingAttributes = flags.headingAttributes
	cfg.DetectLanguage = flags.detectLanguage
	cfg.Solutions = flags.solutions

	return cfg
}

// loadConfig resolves the configuration for cmd, layering cliCfg on top.
func loadConfig(cmd *cobra.Command, cliCfg *config.Config) (*config.Config, error) {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	loadResult, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliCfg,
		Logger:       logger,
	})
	if err != nil {
		return nil, errors.Join(errors.New("failed to load configuration"), err)
	}

	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}
	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	cfg := loadResult.Config

	logger.Debug("configuration loaded",
		logging.FieldWorkingDir, workDir,
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldMaxDepth, cfg.MaxDepth,
		"heading_attributes", cfg.HeadingAttributes,
		"detect_language", cfg.DetectLanguage,
	)

	return cfg, nil
}

// readInput reads the named file, or stdin for "" and "-".
func readInput(cmd *cobra.Command, args []string) (string, string, error) {
	if len(args) == 0 || args[0] == stdinPath {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", string(data), nil
	}

	path := args[0]
	src, err := fsutil.ReadSource(commandContext(cmd), path)
	if err != nil {
		return "", "", fmt.Errorf("read input: %w", err)
	}
	return path, src, nil
}

// parsedInput is a parsed document together with where it came from.
type parsedInput struct {
	doc  *document.Document
	cfg  *config.Config
	path string
	src  string
}

// parseInput loads the configuration, reads the input and parses it.
// Parse errors are rendered to stderr and reported as ErrParseFailed.
func parseInput(cmd *cobra.Command, args []string, flags *parseFlags) (*parsedInput, error) {
	cfg, err := loadConfig(cmd, cliConfig(cmd, flags))
	if err != nil {
		return nil, err
	}

	path, src, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}

	cmd.SetContext(logging.WithInput(commandContext(cmd), path))
	logger := commandLogger(cmd)
	logger.Debug("parsing document", logging.FieldFlavor, cfg.Flavor)

	doc, err := document.Parse(src, document.WithConfig(cfg), document.WithLogger(logger))
	if err != nil {
		styles := pretty.NewStyles(colorEnabled(cmd, cmd.ErrOrStderr()))
		fmt.Fprint(cmd.ErrOrStderr(), styles.FormatError(path, src, err, true))
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	return &parsedInput{doc: doc, cfg: cfg, path: path, src: src}, nil
}

// commandContext returns the context of cmd, which is nil before Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// commandLogger returns the logger attached to the command context.
func commandLogger(cmd *cobra.Command) *log.Logger {
	return logging.FromContext(commandContext(cmd))
}

func colorEnabled(cmd *cobra.Command, writer io.Writer) bool {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		mode = "auto"
	}
	return pretty.IsColorEnabled(mode, writer)
}

// terminalWidth attempts to get the terminal width from the writer.
func terminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return defaultTermWidth
}

func writeJSON(writer io.Writer, v any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
