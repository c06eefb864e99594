package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/cdocparse/internal/ui/pretty"
	"github.com/yaklabco/cdocparse/pkg/config"
)

func newRefsCommand() *cobra.Command {
	flags := &parseFlags{}

	cmd := &cobra.Command{
		Use:   "refs [file]",
		Short: "List the labels defined in a document",
		Long: `List every label defined with "|label" together with the kind of
element it names, its position and a short summary.

Examples:
  cdocparse refs lesson.md
  cdocparse refs lesson.md --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefs(cmd, args, flags)
		},
	}

	addParseFlags(cmd, flags)

	return cmd
}

func runRefs(cmd *cobra.Command, args []string, flags *parseFlags) error {
	in, err := parseInput(cmd, args, flags)
	if err != nil {
		return err
	}
	doc := in.doc

	out := cmd.OutOrStdout()
	if in.cfg.Format == config.FormatJSON {
		return writeJSON(out, doc.References)
	}

	styles := pretty.NewStyles(colorEnabled(cmd, out))
	if len(doc.References) == 0 {
		fmt.Fprintln(out, styles.Dim.Render("no labels defined in "+in.path))
		return nil
	}

	rows := pretty.ReferenceRows(in.src, doc.References)

	fmt.Fprintln(out, styles.FormatFileHeader(in.path, len(rows), "labels"))
	fmt.Fprint(out, pretty.NewTableFormatter(styles, terminalWidth(out)).FormatTable(rows))

	return nil
}
