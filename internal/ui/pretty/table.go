package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/gosage/pkg/source"
	"github.com/yaklabco/gosage/pkg/sourcemap"
	"github.com/yaklabco/gosage/pkg/spanindex"
)

// Table formatting constants.
const (
	tablePadding     = 2
	tableColumnCount = 5 // KIND, ORIGINAL, REWRITTEN, SAGE, PYTHON
	minKindWidth     = 9
	minRangeWidth    = 9
	minTextWidth     = 16
	heavySeparator   = "="
	defaultTermWidth = 100
)

// SpanRow is one span as the table shows it.
type SpanRow struct {
	Kind      spanindex.Kind `json:"kind"`
	Original  string         `json:"original"`
	Rewritten string         `json:"rewritten"`
	Sage      string         `json:"sage"`
	Python    string         `json:"python"`
}

// TableFormatter formats span maps as a styled table.
type TableFormatter struct {
	styles       *Styles
	colorEnabled bool
	termWidth    int
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(styles *Styles, colorEnabled bool, termWidth int) *TableFormatter {
	if termWidth <= 0 {
		termWidth = defaultTermWidth
	}
	return &TableFormatter{
		styles:       styles,
		colorEnabled: colorEnabled,
		termWidth:    termWidth,
	}
}

// SpanRows converts the spans of m to table rows. Passthrough spans are
// skipped unless all is set.
func SpanRows(m *sourcemap.Map, all bool) []SpanRow {
	if m == nil {
		return nil
	}
	idx := m.Index()
	rows := make([]SpanRow, 0, idx.Len())
	for i := range idx.Len() {
		span := idx.At(i)
		if span.Kind == spanindex.KindPassthrough && !all {
			continue
		}
		rows = append(rows, SpanRow{
			Kind:      span.Kind,
			Original:  formatRange(span.Original),
			Rewritten: formatRange(span.Rewritten),
			Sage:      escapeText(m.Original().Slice(span.Original)),
			Python:    escapeText(m.Rewritten().Slice(span.Rewritten)),
		})
	}
	return rows
}

func formatRange(r source.Range) string {
	if r.IsEmpty() {
		return strconv.Itoa(r.Start)
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

func escapeText(b []byte) string {
	s := strconv.Quote(string(b))
	return s[1 : len(s)-1]
}

// FormatSpans formats the rewritten spans of m as a table. It returns the
// empty string when there is nothing to show.
func (t *TableFormatter) FormatSpans(m *sourcemap.Map, all bool) string {
	rows := SpanRows(m, all)
	if len(rows) == 0 {
		return ""
	}

	widths := t.calculateColumnWidths(rows)

	var builder strings.Builder
	builder.WriteString(t.formatHeader(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	for _, row := range rows {
		builder.WriteString(t.formatRow(row, widths))
		builder.WriteString("\n")
	}
	builder.WriteString(t.formatSeparator(widths))
	builder.WriteString("\n")
	builder.WriteString(t.formatLegend(rows))
	builder.WriteString("\n")
	return builder.String()
}

type columnWidths struct {
	kind      int
	original  int
	rewritten int
	sage      int
	python    int
}

func (t *TableFormatter) calculateColumnWidths(rows []SpanRow) columnWidths {
	widths := columnWidths{
		kind:      minKindWidth,
		original:  minRangeWidth,
		rewritten: minRangeWidth,
		sage:      minTextWidth,
		python:    minTextWidth,
	}
	for _, row := range rows {
		widths.kind = max(widths.kind, len(row.Kind.String()))
		widths.original = max(widths.original, len(row.Original))
		widths.rewritten = max(widths.rewritten, len(row.Rewritten))
		widths.sage = max(widths.sage, len(row.Sage))
		widths.python = max(widths.python, len(row.Python))
	}

	// Constrain to terminal width, shrinking the Python column first since
	// expansions make it the widest.
	if excess := calculateTotalWidth(widths) - t.termWidth; excess > 0 {
		widths.python = max(minTextWidth, widths.python-excess)
	}
	if excess := calculateTotalWidth(widths) - t.termWidth; excess > 0 {
		widths.sage = max(minTextWidth, widths.sage-excess)
	}
	return widths
}

func calculateTotalWidth(w columnWidths) int {
	return w.kind + w.original + w.rewritten + w.sage + w.python + tablePadding*tableColumnCount
}

func (t *TableFormatter) formatHeader(w columnWidths) string {
	header := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s  %-*s ",
		w.kind, "KIND",
		w.original, "ORIGINAL",
		w.rewritten, "REWRITTEN",
		w.sage, "SAGE",
		w.python, "PYTHON",
	)
	return t.styles.TableHeader.Render(header)
}

func (t *TableFormatter) formatSeparator(w columnWidths) string {
	return t.styles.TableSeparator.Render(strings.Repeat(heavySeparator, calculateTotalWidth(w)))
}

func (t *TableFormatter) formatRow(row SpanRow, w columnWidths) string {
	content := fmt.Sprintf(" %-*s  %-*s  %-*s  %-*s  %-*s ",
		w.kind, row.Kind.String(),
		w.original, row.Original,
		w.rewritten, row.Rewritten,
		w.sage, truncateString(row.Sage, w.sage),
		w.python, truncateString(row.Python, w.python),
	)
	return t.kindStyle(row.Kind).Render(content)
}

func (t *TableFormatter) kindStyle(kind spanindex.Kind) lipgloss.Style {
	switch kind {
	case spanindex.KindOperator:
		return t.styles.SpanOperator
	case spanindex.KindLiteral:
		return t.styles.SpanLiteral
	case spanindex.KindExpansion:
		return t.styles.SpanExpansion
	case spanindex.KindInsertion:
		return t.styles.SpanInsertion
	default:
		return lipgloss.NewStyle()
	}
}

// formatLegend counts rows per kind, in kind order.
func (t *TableFormatter) formatLegend(rows []SpanRow) string {
	counts := make(map[spanindex.Kind]int)
	for _, row := range rows {
		counts[row.Kind]++
	}
	var parts []string
	for _, kind := range []spanindex.Kind{
		spanindex.KindPassthrough, spanindex.KindOperator, spanindex.KindLiteral,
		spanindex.KindExpansion, spanindex.KindInsertion,
	} {
		if n := counts[kind]; n > 0 {
			label := fmt.Sprintf("%d %s", n, kind)
			if t.colorEnabled {
				label = t.kindStyle(kind).Render(label)
			}
			parts = append(parts, label)
		}
	}
	return t.styles.TableLegend.Render(" " + strings.Join(parts, " | "))
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
