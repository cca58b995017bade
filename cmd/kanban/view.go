package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/markdown"
	"github.com/amonks/kanban/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show detailed information about an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var showJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in column order",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var (
	listStatus string
	listJSON   bool
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Draw the board",
	Args:  cobra.NoArgs,
	RunE:  runBoard,
}

var boardNewestFirst bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search done items by title, description, or category",
	RunE:  runSearch,
}

var searchJSON bool

func init() {
	rootCmd.AddCommand(showCmd, listCmd, boardCmd, searchCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only list items with this status")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	boardCmd.Flags().BoolVar(&boardNewestFirst, "newest-first", false, "Order each column by creation time, newest first")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output as JSON")
}

func runShow(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		id, err := resolveItemID(ctx, b, args[0])
		if err != nil {
			return err
		}
		item, err := b.Get(ctx, id)
		if err != nil {
			return err
		}
		if showJSON {
			return encodeJSONToStdout(item)
		}
		snapshot, err := b.Board(ctx)
		if err != nil {
			return err
		}
		printItemDetail(cmd.OutOrStdout(), item, itemHighlighter(snapshot))
		return nil
	})
}

func runList(cmd *cobra.Command, args []string) error {
	statuses := board.Statuses()
	if listStatus != "" {
		status, err := board.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		statuses = []board.Status{status}
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		snapshot, err := b.Board(ctx)
		if err != nil {
			return err
		}

		items := make([]board.Item, 0, len(snapshot.Items))
		for _, status := range statuses {
			items = append(items, snapshot.Column(status)...)
		}

		if listJSON {
			return encodeJSONToStdout(items)
		}
		if len(items) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No items.")
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), formatItemTable(items, snapshot, time.Now()))
		return err
	})
}

func runBoard(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		snapshot, err := b.Board(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), ui.RenderBoard(snapshot, ui.BoardOptions{NewestFirst: boardNewestFirst}))
		return err
	})
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		results, err := b.SearchDone(ctx, query)
		if err != nil {
			return err
		}
		if searchJSON {
			return encodeJSONToStdout(results)
		}
		if len(results) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "No matching done items.")
			return err
		}
		snapshot, err := b.Board(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), formatItemTable(results, snapshot, time.Now()))
		return err
	})
}

// formatItemTable renders items with ids abbreviated against the whole board.
func formatItemTable(items []board.Item, snapshot board.Board, now time.Time) string {
	prefixLengths := ui.UniqueIDPrefixLengths(boardItemIDs(snapshot))

	builder := ui.NewTableBuilder([]string{"ID", "STATUS", "POS", "CATEGORY", "TITLE", "CREATED"}, len(items))
	for _, item := range items {
		category := "-"
		if item.Category != nil {
			category = *item.Category
		}
		builder.AddRow(
			ui.ShortID(item.ID, ui.PrefixLength(prefixLengths, item.ID)),
			string(item.Status),
			strconv.Itoa(item.Position),
			category,
			ui.TruncateTableCell(item.Title),
			ui.FormatTimeAgo(item.CreatedAt, now),
		)
	}
	return builder.String()
}

const itemDetailLineWidth = 80

// printItemDetail prints detailed information about an item.
func printItemDetail(w io.Writer, item board.Item, highlight func(string) string) {
	fmt.Fprintf(w, "ID:       %s\n", highlight(item.ID))
	fmt.Fprintf(w, "Title:    %s\n", item.Title)
	fmt.Fprintf(w, "Status:   %s\n", item.Status)
	fmt.Fprintf(w, "Position: %d\n", item.Position)
	fmt.Fprintf(w, "Created:  %s\n", item.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if item.Category != nil {
		fmt.Fprintf(w, "Category: %s\n", *item.Category)
	}

	if description := markdown.Render(itemDetailLineWidth, 2, []byte(item.Description)); description != nil {
		fmt.Fprintf(w, "\nDescription:\n%s\n", description)
	}
}
