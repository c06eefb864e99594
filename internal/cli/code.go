package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/cdocparse/internal/logging"
	"github.com/yaklabco/cdocparse/internal/ui/pretty"
	"github.com/yaklabco/cdocparse/pkg/ast"
	"github.com/yaklabco/cdocparse/pkg/codeast"
	"github.com/yaklabco/cdocparse/pkg/config"
)

type codeFlags struct {
	parseFlags

	index int
}

// codeInfo represents a code block in JSON output.
type codeInfo struct {
	Index     int          `json:"index"`
	Language  string       `json:"language,omitempty"`
	Label     string       `json:"label,omitempty"`
	Cell      bool         `json:"cell"`
	Hash      uint64       `json:"hash"`
	Exercises int          `json:"exercises"`
	Meta      codeast.Meta `json:"meta"`
	Source    string       `json:"source"`
}

func newCodeCommand() *cobra.Command {
	flags := &codeFlags{}

	cmd := &cobra.Command{
		Use:   "code [file]",
		Short: "Extract the code blocks of a document",
		Long: `Extract every code block of a document in order.

Exercise regions are replaced by their placeholders unless --solutions is
given. With --index only the source of that block is printed, unstyled.

Examples:
  cdocparse code lesson.md
  cdocparse code lesson.md --solutions --index 2 > cell.py
  cdocparse code lesson.md --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCode(cmd, args, flags)
		},
	}

	addParseFlags(cmd, &flags.parseFlags)
	cmd.Flags().IntVar(&flags.index, "index", -1, "print only the code block with this index")

	return cmd
}

func runCode(cmd *cobra.Command, args []string, flags *codeFlags) error {
	in, err := parseInput(cmd, args, &flags.parseFlags)
	if err != nil {
		return err
	}

	blocks := collectCodeBlocks(in.doc.Content)
	commandLogger(cmd).Debug("collected code blocks", logging.FieldCodeBlocks, len(blocks))

	infos := make([]codeInfo, 0, len(blocks))
	for _, b := range blocks {
		infos = append(infos, newCodeInfo(b, in.cfg.Solutions))
	}

	out := cmd.OutOrStdout()

	if flags.index >= 0 {
		if flags.index >= len(infos) {
			return fmt.Errorf("%w: code block %d does not exist (%d blocks)", ErrInvalidUsage, flags.index, len(infos))
		}
		if in.cfg.Format == config.FormatJSON {
			return writeJSON(out, infos[flags.index])
		}
		fmt.Fprint(out, infos[flags.index].Source)
		return nil
	}

	if in.cfg.Format == config.FormatJSON {
		return writeJSON(out, infos)
	}

	styles := pretty.NewStyles(colorEnabled(cmd, out))
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, codeHeader(styles, info))
		fmt.Fprint(out, info.Source)
	}

	return nil
}

func collectCodeBlocks(content []ast.Block) []*ast.CodeBlock {
	var out []*ast.CodeBlock
	ast.Inspect(content, func(n ast.Node) bool {
		if b, ok := n.(*ast.CodeBlock); ok {
			out = append(out, b)
		}
		return true
	})
	return out
}

func newCodeInfo(b *ast.CodeBlock, solutions bool) codeInfo {
	info := codeInfo{
		Index:    b.Index,
		Language: b.Language,
		Label:    b.Label,
		Cell:     b.DisplayCell,
	}
	if b.Source != nil {
		info.Hash = b.Source.Hash
		info.Exercises = len(b.Source.Solutions())
		info.Meta = b.Source.Meta
		info.Source = b.Source.String(solutions)
	}
	return info
}

func codeHeader(styles *pretty.Styles, info codeInfo) string {
	header := styles.Special.Render("[" + strconv.Itoa(info.Index) + "]")
	if info.Language != "" {
		header += " " + styles.Value.Render(info.Language)
	}
	if info.Label != "" {
		header += " " + styles.Label.Render("|"+info.Label)
	}
	if info.Exercises > 0 {
		header += " " + styles.Dim.Render(fmt.Sprintf("(%d exercises)", info.Exercises))
	}
	return header
}
