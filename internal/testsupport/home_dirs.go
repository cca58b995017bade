// Package testsupport holds helpers shared by package tests and CLI scripts.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// EnsureHomeDirs creates the state and config directories under homeDir.
func EnsureHomeDirs(homeDir string) error {
	for _, dir := range []string{
		filepath.Join(homeDir, ".local", "state", "kanban"),
		filepath.Join(homeDir, ".config", "kanban"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// SetupTestHome creates a temp home directory, ensures kanban dirs, and sets HOME.
func SetupTestHome(t testing.TB) string {
	t.Helper()

	homeDir := t.TempDir()
	if err := EnsureHomeDirs(homeDir); err != nil {
		t.Fatalf("setup home dir: %v", err)
	}
	t.Setenv("HOME", homeDir)
	return homeDir
}
