package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yaklabco/cdocparse/pkg/document"
)

const summaryDividerWidth = 40

// FormatSummaryOneLine formats document statistics as a single line.
// Example: "Parsed 12 blocks, 3 math, 1 command, 2 code blocks (1 exercise)".
func (s *Styles) FormatSummaryOneLine(stats document.Stats) string {
	parts := []string{
		plural(stats.Blocks, "block", "blocks"),
		fmt.Sprintf("%d math", stats.Math),
		plural(stats.Commands, "command", "commands"),
	}

	code := plural(stats.CodeBlocks, "code block", "code blocks")
	if stats.Exercises > 0 {
		code += " (" + plural(stats.Exercises, "exercise", "exercises") + ")"
	}
	parts = append(parts, code)

	if stats.Scripts > 0 {
		parts = append(parts, plural(stats.Scripts, "script", "scripts"))
	}
	if stats.References > 0 {
		parts = append(parts, plural(stats.References, "reference", "references"))
	}

	return s.Success.Render("Parsed") + " " + strings.Join(parts, ", ") + "\n"
}

// FormatSummary formats document statistics as a summary block.
func (s *Styles) FormatSummary(path string, stats document.Stats) string {
	var builder strings.Builder

	builder.WriteString("\n")
	builder.WriteString(s.SummaryTitle.Render("Summary"))
	if path != "" {
		builder.WriteString(" " + s.FilePath.Render(path))
	}
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("-", summaryDividerWidth))
	builder.WriteString("\n")

	rows := []struct {
		name  string
		value int
	}{
		{"Blocks:", stats.Blocks},
		{"Math:", stats.Math},
		{"Commands:", stats.Commands},
		{"Code blocks:", stats.CodeBlocks},
		{"Exercises:", stats.Exercises},
		{"Scripts:", stats.Scripts},
		{"References:", stats.References},
	}
	for _, row := range rows {
		builder.WriteString(fmt.Sprintf("  %-14s %s\n", row.name, s.SummaryValue.Render(strconv.Itoa(row.value))))
	}

	return builder.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return strconv.Itoa(n) + " " + many
}
