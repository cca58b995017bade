package ui

import (
	"os"

	"golang.org/x/term"

	"github.com/amonks/kanban/internal/ids"
	internalstrings "github.com/amonks/kanban/internal/strings"
)

const (
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
	ansiReset = "\x1b[0m"
)

// ShortIDLength is the minimum number of id characters shown in listings.
const ShortIDLength = 8

// defaultWidth is used when stdout is not a terminal.
const defaultWidth = 100

// UniqueIDPrefixLengths returns the shortest unique prefix length for each ID.
func UniqueIDPrefixLengths(itemIDs []string) map[string]int {
	return ids.UniquePrefixLengths(itemIDs)
}

// PrefixLength looks up id in lengths, ignoring case. Zero means unknown.
func PrefixLength(lengths map[string]int, id string) int {
	if lengths == nil || id == "" {
		return 0
	}
	return lengths[internalstrings.NormalizeLower(id)]
}

// ShortID abbreviates id to at least ShortIDLength characters, highlighting
// the unique prefix when stdout is a color terminal.
func ShortID(id string, prefixLen int) string {
	visible := max(prefixLen, ShortIDLength)
	if visible > len(id) {
		visible = len(id)
	}
	return HighlightID(id[:visible], prefixLen)
}

// HighlightID returns an ID with its unique prefix highlighted.
func HighlightID(id string, prefixLen int) string {
	if id == "" || prefixLen <= 0 || prefixLen > len(id) {
		return id
	}
	if !ansiEnabled() {
		return id
	}
	return ansiBold + ansiCyan + id[:prefixLen] + ansiReset + id[prefixLen:]
}

func ansiEnabled() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or a default when it is not a terminal.
func TerminalWidth() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return defaultWidth
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return defaultWidth
	}
	return width
}
