package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/cdocparse/internal/logging"
	"github.com/yaklabco/cdocparse/internal/ui/pretty"
	"github.com/yaklabco/cdocparse/pkg/config"
	"github.com/yaklabco/cdocparse/pkg/document"
)

type parseCmdFlags struct {
	parseFlags

	spans   bool
	summary bool
	outputs string
}

func newParseCommand() *cobra.Command {
	flags := &parseCmdFlags{}

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a document and print its tree",
		Long:  parseLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, flags)
		},
	}

	addParseFlags(cmd, &flags.parseFlags)
	cmd.Flags().BoolVar(&flags.spans, "spans", false, "show source spans in tree output")
	cmd.Flags().BoolVar(&flags.summary, "summary", false, "print a detailed count table after the tree")
	cmd.Flags().StringVar(&flags.outputs, "outputs", "", "JSON file of code outputs keyed by content hash")

	return cmd
}

const parseLongDescription = `Parse a document and print the resulting tree.

Reads from stdin when no file is given or the file is "-". Grammar and
front matter errors are reported with the offending source line.

Examples:
  cdocparse parse lesson.md                  # Styled tree
  cdocparse parse lesson.md --spans          # Tree with byte spans
  cdocparse parse --format json < lesson.md  # JSON for other tools
  cdocparse parse lesson.md --outputs out.json --format json`

func runParse(cmd *cobra.Command, args []string, flags *parseCmdFlags) error {
	in, err := parseInput(cmd, args, &flags.parseFlags)
	if err != nil {
		return err
	}
	doc := in.doc

	if flags.outputs != "" {
		if err := attachOutputs(commandLogger(cmd), doc, flags.outputs); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if in.cfg.Format == config.FormatJSON {
		return writeJSON(out, doc)
	}

	styles := pretty.NewStyles(colorEnabled(cmd, out))
	fmt.Fprint(out, styles.FormatTree(in.path, doc.Content, pretty.TreeOptions{
		Spans:     flags.spans,
		Solutions: in.cfg.Solutions,
	}))
	if flags.summary {
		fmt.Fprint(out, styles.FormatSummary(in.path, doc.Stats()))
	} else {
		fmt.Fprint(out, styles.FormatSummaryOneLine(doc.Stats()))
	}

	return nil
}

// attachOutputs loads execution results from path into doc. Results for
// code blocks the document does not contain are logged and dropped.
func attachOutputs(logger *log.Logger, doc *document.Document, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read outputs: %w", err)
	}

	var results map[uint64]document.CodeOutput
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("decode outputs %s: %w", path, err)
	}

	unknown := doc.AttachOutputs(results)
	if len(unknown) > 0 {
		logger.Warn("outputs for unknown code blocks",
			logging.FieldPath, path,
			"hashes", unknown)
	}

	return nil
}
