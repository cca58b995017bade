package config_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/amonks/kanban/internal/config"
	"github.com/amonks/kanban/internal/testsupport"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestLoad_NotFound(t *testing.T) {
	testsupport.SetupTestHome(t)

	cfg, err := config.Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != config.DefaultBackend {
		t.Errorf("expected default backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.Addr != config.DefaultServerAddr {
		t.Errorf("expected default addr, got %q", cfg.Server.Addr)
	}
	if cfg.Log.Level != config.DefaultLogLevel {
		t.Errorf("expected default log level, got %q", cfg.Log.Level)
	}
	if cfg.Board.WIPLimit != 0 || len(cfg.Categories) != 0 {
		t.Errorf("expected empty board config, got %+v", cfg)
	}
}

func TestLoad_Full(t *testing.T) {
	testsupport.SetupTestHome(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "kanban.toml"), `
[board]
wip-limit = 5

[storage]
backend = "sqlite"
path = " /tmp/board.db "

[server]
addr = "127.0.0.1:9000"

[log]
level = "warn"

[[categories]]
tag = "ops"
keywords = "deploy|rollback"
`)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Board.WIPLimit != 5 {
		t.Errorf("expected wip-limit 5, got %d", cfg.Board.WIPLimit)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/tmp/board.db" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Log.Level != "warn" {
		t.Errorf("unexpected server/log %+v %+v", cfg.Server, cfg.Log)
	}
	want := []config.CategoryRule{{Tag: "ops", Keywords: "deploy|rollback"}}
	if !reflect.DeepEqual(cfg.Categories, want) {
		t.Errorf("expected %v, got %v", want, cfg.Categories)
	}
}

func TestLoad_ProjectOverridesGlobal(t *testing.T) {
	home := testsupport.SetupTestHome(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(home, ".config", "kanban", "config.toml"), `
[board]
wip-limit = 4

[storage]
backend = "redis"
redis-url = "redis://localhost:6379/0"

[[categories]]
tag = "ops"
keywords = "deploy"
`)
	writeFile(t, filepath.Join(dir, "kanban.toml"), `
[storage]
backend = "memory"

[[categories]]
tag = "ops"
keywords = "oncall"
`)

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Board.WIPLimit != 4 {
		t.Errorf("expected global wip-limit, got %d", cfg.Board.WIPLimit)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("expected project backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("expected global redis-url, got %q", cfg.Storage.RedisURL)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1].Keywords != "oncall" {
		t.Errorf("expected project rule after global rule, got %v", cfg.Categories)
	}
}

func TestLoad_Errors(t *testing.T) {
	testsupport.SetupTestHome(t)

	for name, content := range map[string]string{
		"invalid toml": "[board\nwip-limit = ",
		"unknown key":  "[board]\nwip-limt = 3\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, "kanban.toml"), content)
			if _, err := config.Load(dir); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"KANBAN_STORAGE_BACKEND": "sqlite",
		"KANBAN_STORAGE_PATH":    "/var/lib/kanban.db",
		"KANBAN_REDIS_URL":       "redis://cache:6379/1",
		"KANBAN_WIP_LIMIT":       "7",
		"KANBAN_LOG_LEVEL":       "warn",
		"KANBAN_DEBUG":           "1",
	}
	lookup := func(name string) (string, bool) {
		value, ok := env[name]
		return value, ok
	}

	cfg := &config.Config{}
	if err := config.ApplyEnv(cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "/var/lib/kanban.db" || cfg.Storage.RedisURL != "redis://cache:6379/1" {
		t.Errorf("unexpected storage %+v", cfg.Storage)
	}
	if cfg.Board.WIPLimit != 7 {
		t.Errorf("expected limit 7, got %d", cfg.Board.WIPLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected KANBAN_DEBUG to force debug, got %q", cfg.Log.Level)
	}

	env["KANBAN_WIP_LIMIT"] = "many"
	err := config.ApplyEnv(&config.Config{}, lookup)
	if err == nil || !strings.Contains(err.Error(), "KANBAN_WIP_LIMIT") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoad_EnvOverridesFiles(t *testing.T) {
	testsupport.SetupTestHome(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kanban.toml"), "[storage]\nbackend = \"sqlite\"\n")
	t.Setenv("KANBAN_STORAGE_BACKEND", "memory")

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "memory" {
		t.Fatalf("expected env to win, got %q", cfg.Storage.Backend)
	}
}
