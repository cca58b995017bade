package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amonks/kanban/board"
)

var wipCmd = &cobra.Command{
	Use:   "wip",
	Short: "Show the work-in-progress limit and how much of it is used",
	Args:  cobra.NoArgs,
	RunE:  runWIP,
}

var wipJSON bool

var wipSetCmd = &cobra.Command{
	Use:   "set <limit>",
	Short: "Change the work-in-progress limit",
	Args:  cobra.ExactArgs(1),
	RunE:  runWIPSet,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories done items can be filed under",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(wipCmd, categoriesCmd)
	wipCmd.AddCommand(wipSetCmd)

	wipCmd.Flags().BoolVar(&wipJSON, "json", false, "Output as JSON")
}

func runWIP(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		status, err := b.WIP(ctx)
		if err != nil {
			return err
		}
		if wipJSON {
			return encodeJSONToStdout(status)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), formatWIPStatus(status))
		return err
	})
}

func formatWIPStatus(status board.WIPStatus) string {
	if status.Full() {
		return fmt.Sprintf("In progress: %d/%d (full)", status.Count, status.Limit)
	}
	return fmt.Sprintf("In progress: %d/%d (%d available)", status.Count, status.Limit, status.Available)
}

func runWIPSet(cmd *cobra.Command, args []string) error {
	limit, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%q: %w", args[0], board.ErrInvalidWIPLimit)
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		if err := b.SetWIPLimit(ctx, limit); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "WIP limit set to %d\n", limit)
		return err
	})
}

func runCategories(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		categories, err := b.Categories(ctx)
		if err != nil {
			return err
		}
		for _, category := range categories {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), category); err != nil {
				return err
			}
		}
		return nil
	})
}
