package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/ui"
)

// withBackend opens the configured backend for the duration of fn.
func withBackend(cmd *cobra.Command, fn func(ctx context.Context, b backend) error) (err error) {
	b, err := openBackend(cmd)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, b.Close())
	}()
	return fn(cmd.Context(), b)
}

// resolveItemID expands a unique id prefix to the full id.
func resolveItemID(ctx context.Context, b backend, prefix string) (string, error) {
	id, err := b.Resolve(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("%q: %w", prefix, err)
	}
	return id, nil
}

func resolveDescriptionFromStdin(description string, reader io.Reader) (string, error) {
	if description != "-" {
		return description, nil
	}

	input, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read description from stdin: %w", err)
	}
	return strings.TrimRight(string(input), "\r\n"), nil
}

// itemHighlighter highlights ids using prefix lengths computed over the whole board.
func itemHighlighter(snapshot board.Board) func(string) string {
	prefixLengths := ui.UniqueIDPrefixLengths(boardItemIDs(snapshot))
	return func(id string) string {
		return ui.HighlightID(id, ui.PrefixLength(prefixLengths, id))
	}
}

func boardItemIDs(snapshot board.Board) []string {
	ids := make([]string, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		ids = append(ids, item.ID)
	}
	return ids
}

func formatItemLine(item board.Item, highlight func(string) string) string {
	line := fmt.Sprintf("%s: %s", highlight(item.ID), item.Title)
	if item.Category != nil {
		line += fmt.Sprintf(" [%s]", *item.Category)
	}
	return line
}

// printItemResult prints "<verb> <id>: <title>" with the id's unique prefix highlighted.
func printItemResult(ctx context.Context, w io.Writer, b backend, verb string, item board.Item) error {
	snapshot, err := b.Board(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s %s\n", verb, formatItemLine(item, itemHighlighter(snapshot)))
	return err
}
