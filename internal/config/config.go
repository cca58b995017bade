// Package config handles loading kanban.toml configuration files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/amonks/kanban/internal/paths"
)

// ProjectFileName is the per-directory config file.
const ProjectFileName = "kanban.toml"

const (
	// DefaultBackend is used when no storage backend is configured.
	DefaultBackend = "file"

	// DefaultServerAddr is where `kanban serve` listens by default.
	DefaultServerAddr = "127.0.0.1:8089"

	// DefaultLogLevel is the logrus level used when none is configured.
	DefaultLogLevel = "warn"
)

// Config represents a kanban.toml configuration file.
type Config struct {
	Board      Board          `toml:"board"`
	Storage    Storage        `toml:"storage"`
	Server     Server         `toml:"server"`
	Log        Log            `toml:"log"`
	Categories []CategoryRule `toml:"categories"`
}

// Board contains defaults for new boards.
type Board struct {
	// WIPLimit caps in_progress on a brand-new board. Zero means the built-in default.
	WIPLimit int `toml:"wip-limit"`
}

// Storage selects where the board snapshot lives.
type Storage struct {
	// Backend is one of file, sqlite, redis, memory.
	Backend string `toml:"backend"`

	// Path is the state directory (file) or database file (sqlite).
	Path string `toml:"path"`

	// RedisURL is used by the redis backend.
	RedisURL string `toml:"redis-url"`

	// Key overrides the snapshot key.
	Key string `toml:"key"`
}

// Server configures `kanban serve` and `--server` clients.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level"`
}

// CategoryRule adds or replaces a category detection rule.
type CategoryRule struct {
	Tag string `toml:"tag"`

	// Keywords is a regexp alternation such as "deploy|rollback".
	Keywords string `toml:"keywords"`
}

// Load loads configuration from the global config file and dir/kanban.toml,
// then applies environment overrides. Missing files are not an error.
func Load(dir string) (*Config, error) {
	globalPath, err := paths.GlobalConfigPath()
	if err != nil {
		return nil, err
	}

	globalCfg, globalMeta, err := loadConfigFile(globalPath)
	if err != nil {
		return nil, err
	}

	projectCfg, projectMeta, err := loadConfigFile(filepath.Join(dir, ProjectFileName))
	if err != nil {
		return nil, err
	}

	merged := mergeConfigs(globalCfg, projectCfg, globalMeta, projectMeta)
	if err := ApplyEnv(merged, os.LookupEnv); err != nil {
		return nil, err
	}
	applyDefaults(merged)
	return merged, nil
}

func loadConfigFile(path string) (*Config, toml.MetaData, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, toml.MetaData{}, nil
	}
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg Config
	meta, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, toml.MetaData{}, fmt.Errorf("parse config file %s: unknown key %s", path, undecoded[0])
	}

	return &cfg, meta, nil
}

func mergeConfigs(globalCfg, projectCfg *Config, globalMeta, projectMeta toml.MetaData) *Config {
	if globalCfg == nil {
		globalCfg = &Config{}
	}
	if projectCfg == nil {
		projectCfg = &Config{}
	}

	merged := Config{}
	merged.Board.WIPLimit = globalCfg.Board.WIPLimit
	if projectMeta.IsDefined("board", "wip-limit") {
		merged.Board.WIPLimit = projectCfg.Board.WIPLimit
	}
	merged.Storage.Backend = mergeString(projectMeta.IsDefined("storage", "backend"), projectCfg.Storage.Backend, globalCfg.Storage.Backend)
	merged.Storage.Path = mergeString(projectMeta.IsDefined("storage", "path"), projectCfg.Storage.Path, globalCfg.Storage.Path)
	merged.Storage.RedisURL = mergeString(projectMeta.IsDefined("storage", "redis-url"), projectCfg.Storage.RedisURL, globalCfg.Storage.RedisURL)
	merged.Storage.Key = mergeString(projectMeta.IsDefined("storage", "key"), projectCfg.Storage.Key, globalCfg.Storage.Key)
	merged.Server.Addr = mergeString(projectMeta.IsDefined("server", "addr"), projectCfg.Server.Addr, globalCfg.Server.Addr)
	merged.Log.Level = mergeString(projectMeta.IsDefined("log", "level"), projectCfg.Log.Level, globalCfg.Log.Level)

	// Project rules come last so they win when both files name the same tag.
	if globalMeta.IsDefined("categories") {
		merged.Categories = append(merged.Categories, globalCfg.Categories...)
	}
	if projectMeta.IsDefined("categories") {
		merged.Categories = append(merged.Categories, projectCfg.Categories...)
	}

	return &merged
}

func mergeString(projectDefined bool, projectValue, globalValue string) string {
	value := globalValue
	if projectDefined {
		value = projectValue
	}
	return strings.TrimSpace(value)
}

// ApplyEnv overrides cfg from KANBAN_* environment variables.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	overrides := []struct {
		name string
		dest *string
	}{
		{"KANBAN_STORAGE_BACKEND", &cfg.Storage.Backend},
		{"KANBAN_STORAGE_PATH", &cfg.Storage.Path},
		{"KANBAN_REDIS_URL", &cfg.Storage.RedisURL},
		{"KANBAN_SERVER_ADDR", &cfg.Server.Addr},
		{"KANBAN_LOG_LEVEL", &cfg.Log.Level},
	}
	for _, override := range overrides {
		if value, ok := lookup(override.name); ok && strings.TrimSpace(value) != "" {
			*override.dest = strings.TrimSpace(value)
		}
	}

	if value, ok := lookup("KANBAN_WIP_LIMIT"); ok && strings.TrimSpace(value) != "" {
		limit, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("parse KANBAN_WIP_LIMIT: %w", err)
		}
		cfg.Board.WIPLimit = limit
	}

	if value, ok := lookup("KANBAN_DEBUG"); ok {
		if debug, err := strconv.ParseBool(value); err == nil && debug {
			cfg.Log.Level = "debug"
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultBackend
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
