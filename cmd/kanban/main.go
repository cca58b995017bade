// Package main implements the kanban CLI.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:          "kanban",
	Short:        "Kanban - a personal board with a work-in-progress limit",
	SilenceUsage: true,
}

var (
	rootBackend string
	rootPath    string
	rootServer  string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootBackend, "backend", "", "Storage backend (file, sqlite, redis, memory)")
	rootCmd.PersistentFlags().StringVar(&rootPath, "path", "", "State directory (file) or database file (sqlite)")
	rootCmd.PersistentFlags().StringVar(&rootServer, "server", "", "Use the kanban server at this address instead of local storage")
}
