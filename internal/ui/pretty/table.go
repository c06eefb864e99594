package pretty

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/yaklabco/cdocparse/pkg/raw"
	"github.com/yaklabco/cdocparse/pkg/source"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 4 // LABEL, KIND, LOC, SUMMARY
	minLabelWidth    = 12
	minKindWidth     = 7
	minLocWidth      = 8
	minSummaryWidth  = 30
	heavySeparator   = "="
	defaultTermWidth = 100
)

// TableRow represents a single row in the reference table.
type TableRow struct {
	Label    string
	Kind     raw.RefKind
	Location string
	Summary  string
}

// TableFormatter formats the label table as a styled table.
type TableFormatter struct {
	styles    *Styles
	termWidth int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:    styles,
		termWidth: termWidth,
	}
}

// ReferenceRows converts a label table into rows ordered by source position.
// Locations are resolved against src.
func ReferenceRows(src string, refs map[string]raw.Reference) []TableRow {
	labels := lo.Keys(refs)
	slices.SortFunc(labels, func(a, b string) int {
		return cmp.Or(refs[a].Span.Start-refs[b].Span.Start, strings.Compare(a, b))
	})

	idx := source.NewIndex(src)
	rows := make([]TableRow, 0, len(labels))
	for _, label := range labels {
		ref := refs[label]
		pos := idx.PositionAt(ref.Span.Start)
		rows = append(rows, TableRow{
			Label:    label,
			Kind:     ref.Kind,
			Location: fmt.Sprintf("%d:%d", pos.Line, pos.Column),
			Summary:  firstLine(ref.Summary),
		})
	}
	return rows
}

// FormatTable formats rows as a styled table. It returns "" for no rows.
func (t *TableFormatter) FormatTable(rows []TableRow) string {
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder

	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}

	builder.WriteString(t.formatSeparator(widths, heavySeparator))
	builder.WriteString("\n")

	return builder.String()
}

type columnWidths struct {
	label   int
	kind    int
	loc     int
	summary int
}

// calculateColumnWidths determines optimal column widths based on content.
func (t *TableFormatter) calculateColumnWidths(rows []TableRow) columnWidths {
	widths := columnWidths{
		label:   minLabelWidth,
		kind:    minKindWidth,
		loc:     minLocWidth,
		summary: minSummaryWidth,
	}

	for _, row := range rows {
		widths.label = max(widths.label, len(row.Label))
		widths.kind = max(widths.kind, len(row.Kind))
		widths.loc = max(widths.loc, len(row.Location))
		widths.summary = max(widths.summary, len(row.Summary))
	}

	// Constrain to terminal width, shrinking the summary first.
	totalWidth := calculateTotalWidth(widths)
	if totalWidth > t.termWidth {
		excess := totalWidth - t.termWidth
		widths.summary = max(minSummaryWidth, widths.summary-excess)

		totalWidth = calculateTotalWidth(widths)
		if totalWidth > t.termWidth {
			excess = totalWidth - t.termWidth
			widths.label = max(minLabelWidth, widths.label-excess)
		}
	}

	return widths
}

func calculateTotalWidth(widths columnWidths) int {
	return widths.label + widths.kind + widths.loc + widths.summary + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(widths columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s ",
		widths.label, "LABEL",
		widths.kind, "KIND",
		widths.loc, "LOC",
		widths.summary, "SUMMARY",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(widths columnWidths, char string) string {
	return t.styles.TableSeparator.Render(strings.Repeat(char, calculateTotalWidth(widths)))
}

func (t *TableFormatter) formatRow(row TableRow, widths columnWidths) string {
	label := fmt.Sprintf("%-*s", widths.label, truncateString(row.Label, widths.label))
	kind := fmt.Sprintf("%-*s", widths.kind, string(row.Kind))
	loc := fmt.Sprintf("%-*s", widths.loc, row.Location)
	summary := truncateString(row.Summary, widths.summary)

	return fmt.Sprintf(" %s  %s  %s  %s",
		t.styles.Label.Render(label),
		t.styles.Special.Render(kind),
		t.styles.Location.Render(loc),
		t.styles.Value.Render(summary),
	)
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	if maxLen <= 3 {
		return str[:maxLen]
	}
	return str[:maxLen-3] + "..."
}

func firstLine(text string) string {
	line, rest, _ := strings.Cut(strings.TrimSpace(text), "\n")
	if rest != "" {
		return line + " ..."
	}
	return line
}
