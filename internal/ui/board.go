package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/amonks/kanban/board"
)

const (
	minColumnWidth = 18
	columnGap      = 1
)

var (
	borderASCII = lipgloss.Border{
		Top:         "-",
		Bottom:      "-",
		Left:        "|",
		Right:       "|",
		TopLeft:     "+",
		TopRight:    "+",
		BottomLeft:  "+",
		BottomRight: "+",
	}

	columnStyle     = lipgloss.NewStyle().Border(borderASCII).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
	columnFullStyle = columnStyle.BorderForeground(lipgloss.Color("1"))
	headerStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

var columnTitles = map[board.Status]string{
	board.StatusBacklog:    "BACKLOG",
	board.StatusInProgress: "IN PROGRESS",
	board.StatusPaused:     "PAUSED",
	board.StatusDone:       "DONE",
}

// BoardOptions configures RenderBoard.
type BoardOptions struct {
	// Width is the total output width. Zero means TerminalWidth().
	Width int

	// NewestFirst lists each column by descending creation time instead of position.
	NewestFirst bool
}

// RenderBoard draws the four columns side by side.
func RenderBoard(b board.Board, opts BoardOptions) string {
	width := opts.Width
	if width <= 0 {
		width = TerminalWidth()
	}
	statuses := board.Statuses()
	frame := columnStyle.GetHorizontalFrameSize()
	columnWidth := (width - columnGap*(len(statuses)-1)) / len(statuses)
	columnWidth = max(columnWidth, minColumnWidth)
	textWidth := columnWidth - frame

	lengths := UniqueIDPrefixLengths(itemIDs(b.Items))
	wip := board.WIPStatusOf(b)

	columns := make([]string, 0, len(statuses)*2)
	for i, status := range statuses {
		items := b.Column(status)
		if opts.NewestFirst {
			slices.SortStableFunc(items, func(a, b board.Item) int {
				return b.CreatedAt.Compare(a.CreatedAt)
			})
		}

		header := fmt.Sprintf("%s (%d)", columnTitles[status], len(items))
		style := columnStyle
		if status == board.StatusInProgress {
			header = fmt.Sprintf("%s (%d/%d)", columnTitles[status], wip.Count, wip.Limit)
			if wip.Full() {
				style = columnFullStyle
			}
		}

		lines := []string{headerStyle.Render(header), ""}
		if len(items) == 0 {
			lines = append(lines, mutedStyle.Render("(empty)"))
		}
		for _, item := range items {
			lines = append(lines, renderCard(item, PrefixLength(lengths, item.ID), textWidth))
		}

		if i > 0 {
			columns = append(columns, strings.Repeat(" ", columnGap))
		}
		columns = append(columns, style.Width(columnWidth-style.GetHorizontalBorderSize()).Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, columns...)
}

func renderCard(item board.Item, prefixLen, width int) string {
	title := wordwrap.String(item.Title, max(width, 1))
	card := ShortID(item.ID, prefixLen) + "\n" + title
	if item.Category != nil {
		card += "\n" + mutedStyle.Render("["+*item.Category+"]")
	}
	return card
}

func itemIDs(items []board.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
