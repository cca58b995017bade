package testsupport

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/amonks/kanban/board"
)

// SetupScriptEnv gives each script its own HOME and a plain-text terminal.
func SetupScriptEnv(env *testscript.Env) error {
	homeDir := filepath.Join(env.WorkDir, "home")
	if err := EnsureHomeDirs(homeDir); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)
	env.Setenv("NO_COLOR", "1")
	env.Setenv("TERM", "dumb")
	return nil
}

// ScriptCommands returns the custom commands available to CLI scripts.
func ScriptCommands() map[string]func(ts *testscript.TestScript, neg bool, args []string) {
	return map[string]func(ts *testscript.TestScript, neg bool, args []string){
		"envset": CmdEnvSet,
		"itemid": CmdItemID,
	}
}

// CmdEnvSet stores the trimmed contents of a file in an env var.
func CmdEnvSet(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("envset does not support negation")
	}
	if len(args) != 2 {
		ts.Fatalf("usage: envset VAR FILE")
	}

	value := strings.TrimSpace(ts.ReadFile(args[1]))
	ts.Setenv(args[0], value)
}

// CmdItemID finds an item by title in `kanban list --json` output and stores
// its ID, or the first N characters of it, in an env var.
func CmdItemID(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("itemid does not support negation")
	}
	if len(args) != 3 && len(args) != 4 {
		ts.Fatalf("usage: itemid FILE TITLE VAR [N]")
	}
	length := 0
	if len(args) == 4 {
		n, err := strconv.Atoi(args[3])
		if err != nil || n <= 0 {
			ts.Fatalf("invalid prefix length %q", args[3])
		}
		length = n
	}

	var items []board.Item
	if err := json.Unmarshal([]byte(ts.ReadFile(args[0])), &items); err != nil {
		ts.Fatalf("parse item list: %v", err)
	}

	for _, item := range items {
		if item.Title != args[1] {
			continue
		}
		id := item.ID
		if length > 0 && length < len(id) {
			id = id[:length]
		}
		ts.Setenv(args[2], id)
		return
	}
	ts.Fatalf("item with title %q not found", args[1])
}
