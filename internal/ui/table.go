// Package ui renders board data for the terminal.
package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	internalstrings "github.com/amonks/kanban/internal/strings"
)

const tableCellMaxWidth = 50
const tableCellEllipsis = "..."

// TableBuilder collects rows and renders a formatted table.
type TableBuilder struct {
	headers []string
	rows    [][]string
}

// NewTableBuilder returns a builder with preallocated rows.
func NewTableBuilder(headers []string, capacity int) *TableBuilder {
	return &TableBuilder{headers: headers, rows: make([][]string, 0, capacity)}
}

// AddRow appends a row to the table.
func (builder *TableBuilder) AddRow(row ...string) {
	builder.rows = append(builder.rows, row)
}

// String renders the table output.
func (builder *TableBuilder) String() string {
	return FormatTable(builder.headers, builder.rows)
}

// FormatTable renders headers and rows as columns separated by two spaces.
// Widths ignore ANSI escape codes.
func FormatTable(headers []string, rows [][]string) string {
	all := make([][]string, 0, len(rows)+1)
	all = append(all, headers)
	all = append(all, rows...)

	widths := make([]int, len(headers))
	for r, row := range all {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = normalizeTableCell(cell)
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cells[i]))
			}
		}
		all[r] = cells
	}

	var builder strings.Builder
	for _, row := range all {
		for i, cell := range row {
			builder.WriteString(cell)
			if i == len(row)-1 {
				break
			}
			padding := 2
			if i < len(widths) {
				padding += widths[i] - lipgloss.Width(cell)
			}
			builder.WriteString(strings.Repeat(" ", padding))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// TruncateTableCell limits a cell to tableCellMaxWidth visible characters.
func TruncateTableCell(value string) string {
	value = normalizeTableCell(value)
	if lipgloss.Width(value) <= tableCellMaxWidth {
		return value
	}
	return truncate.StringWithTail(value, tableCellMaxWidth, tableCellEllipsis)
}

func normalizeTableCell(value string) string {
	return internalstrings.NormalizeWhitespace(value)
}
