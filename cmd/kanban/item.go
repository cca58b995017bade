package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/editor"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an item to the backlog",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var addDescription string

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move an item to another column (backlog, in_progress, paused, done)",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

// Column shortcuts for move.
var (
	startCmd   = newMoveShortcut("start <id>", "Start working on an item", board.StatusInProgress, "Started")
	pauseCmd   = newMoveShortcut("pause <id>", "Pause an item", board.StatusPaused, "Paused")
	finishCmd  = newMoveShortcut("finish <id>", "Mark an item as done", board.StatusDone, "Finished")
	backlogCmd = newMoveShortcut("backlog <id>", "Return an item to the backlog", board.StatusBacklog, "Moved to backlog")
)

var reorderCmd = &cobra.Command{
	Use:   "reorder [flags] <id> <position>",
	Short: "Change an item's position within its column",
	Long: `Change an item's position within its column.

Flags must come before the id. Everything after the id is read as an
argument, so a negative position reaches the board and is rejected there.`,
	Example: "  kanban reorder 3f2a 0",
	Args:    cobra.ExactArgs(2),
	RunE:    runReorder,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an item",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an item's title or description",
	Long: `Change an item's title or description.

Without --title or --description, opens $EDITOR on the item when running
interactively. Use --edit to open the editor even when not interactive.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editOpenEditor  bool
)

func init() {
	finishCmd.Aliases = []string{"done"}

	rootCmd.AddCommand(addCmd, moveCmd, startCmd, pauseCmd, finishCmd, backlogCmd, reorderCmd, deleteCmd, editCmd)

	reorderCmd.Flags().SetInterspersed(false)
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	editCmd.Flags().BoolVarP(&editOpenEditor, "edit", "e", false, "Open $EDITOR (default if interactive and no other flags)")
}

func runAdd(cmd *cobra.Command, args []string) error {
	description, err := resolveDescriptionFromStdin(addDescription, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		item, err := b.Add(ctx, args[0], description)
		if err != nil {
			return err
		}
		return printItemResult(ctx, cmd.OutOrStdout(), b, "Added", item)
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	status, err := board.ParseStatus(args[1])
	if err != nil {
		return err
	}
	return moveItem(cmd, args[0], status, "Moved to "+string(status))
}

func newMoveShortcut(use, short string, status board.Status, verb string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return moveItem(cmd, args[0], status, verb)
		},
	}
}

func moveItem(cmd *cobra.Command, prefix string, status board.Status, verb string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		id, err := resolveItemID(ctx, b, prefix)
		if err != nil {
			return err
		}
		item, err := b.Move(ctx, id, status)
		if err != nil {
			return err
		}
		return printItemResult(ctx, cmd.OutOrStdout(), b, verb, item)
	})
}

func runReorder(cmd *cobra.Command, args []string) error {
	position, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid position %q: %w", args[1], board.ErrInvalidReorder)
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		id, err := resolveItemID(ctx, b, args[0])
		if err != nil {
			return err
		}
		item, err := b.Reorder(ctx, id, position)
		if err != nil {
			return err
		}
		return printItemResult(ctx, cmd.OutOrStdout(), b, "Reordered", item)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withBackend(cmd, func(ctx context.Context, b backend) error {
		id, err := resolveItemID(ctx, b, args[0])
		if err != nil {
			return err
		}
		item, err := b.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := b.Delete(ctx, id); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s: %s\n", item.ID, item.Title)
		return err
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	var opts board.UpdateOptions
	if cmd.Flags().Changed("title") {
		opts.Title = &editTitle
	}
	if cmd.Flags().Changed("description") {
		description, err := resolveDescriptionFromStdin(editDescription, cmd.InOrStdin())
		if err != nil {
			return err
		}
		opts.Description = &description
	}
	useEditor := shouldUseEditor(opts.Title != nil || opts.Description != nil, editOpenEditor, editor.IsInteractive())
	if !useEditor && opts.Title == nil && opts.Description == nil {
		return fmt.Errorf("nothing to update: pass --title, --description, or --edit")
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		id, err := resolveItemID(ctx, b, args[0])
		if err != nil {
			return err
		}
		if useEditor {
			current, err := b.Get(ctx, id)
			if err != nil {
				return err
			}
			parsed, err := editor.EditItem(current)
			if err != nil {
				return err
			}
			opts = parsed.UpdateOptions()
		}
		item, err := b.Update(ctx, id, opts)
		if err != nil {
			return err
		}
		return printItemResult(ctx, cmd.OutOrStdout(), b, "Updated", item)
	})
}

// shouldUseEditor opens the editor when forced, or when interactive and no
// field flags were given.
func shouldUseEditor(hasFieldFlags, editFlag, interactive bool) bool {
	if editFlag {
		return true
	}
	return !hasFieldFlags && interactive
}
