package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/amonks/kanban/board"
	"github.com/amonks/kanban/internal/config"
	"github.com/amonks/kanban/internal/kv"
	"github.com/amonks/kanban/internal/logging"
	"github.com/amonks/kanban/internal/paths"
	"github.com/amonks/kanban/server"
)

// backend is the board surface commands operate on. It is satisfied by a
// local store and by the RPC client.
type backend interface {
	Board(ctx context.Context) (board.Board, error)
	Add(ctx context.Context, title, description string) (board.Item, error)
	Move(ctx context.Context, id string, status board.Status) (board.Item, error)
	Reorder(ctx context.Context, id string, position int) (board.Item, error)
	Delete(ctx context.Context, id string) error
	Update(ctx context.Context, id string, opts board.UpdateOptions) (board.Item, error)
	Get(ctx context.Context, id string) (board.Item, error)
	Resolve(ctx context.Context, prefix string) (string, error)
	SearchDone(ctx context.Context, query string) ([]board.Item, error)
	WIP(ctx context.Context) (board.WIPStatus, error)
	SetWIPLimit(ctx context.Context, limit int) error
	Categories(ctx context.Context) ([]string, error)
	Close() error
}

func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.Load(cwd)
	if err != nil {
		return nil, err
	}
	if rootBackend != "" {
		cfg.Storage.Backend = rootBackend
	}
	if rootPath != "" {
		cfg.Storage.Path = rootPath
	}
	return cfg, nil
}

func storageConfig(cfg *config.Config) (kv.Config, error) {
	storage := kv.Config{
		Backend:  kv.Backend(cfg.Storage.Backend),
		Path:     cfg.Storage.Path,
		RedisURL: cfg.Storage.RedisURL,
	}
	if storage.Path != "" {
		return storage, nil
	}

	var err error
	switch storage.Backend {
	case kv.BackendFile:
		storage.Path, err = paths.DefaultStateDir()
	case kv.BackendSQLite:
		storage.Path, err = paths.DefaultDatabasePath()
	}
	return storage, err
}

// openStore builds a Store over the configured storage backend. The caller
// closes the returned kv.Store.
func openStore(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*board.Store, kv.Store, error) {
	detector := board.NewCategoryDetector()
	for _, rule := range cfg.Categories {
		if err := detector.AddPattern(rule.Tag, rule.Keywords); err != nil {
			return nil, nil, fmt.Errorf("category %q: %w", rule.Tag, err)
		}
	}

	storage, err := storageConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	if storage.Backend == kv.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(storage.Path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	values, err := kv.Open(ctx, storage)
	if err != nil {
		return nil, nil, err
	}

	gateway := board.NewGateway(values, board.GatewayOptions{
		Key:             cfg.Storage.Key,
		DefaultWIPLimit: cfg.Board.WIPLimit,
		Logger:          logger,
	})
	store := board.Open(gateway, board.Options{
		Logger:   logger,
		Detector: detector,
	})
	return store, values, nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level, os.Stderr)
}

func openBackend(cmd *cobra.Command) (backend, error) {
	if rootServer != "" {
		return remoteBackend{server.NewClient(rootServer)}, nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	store, values, err := openStore(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return localBackend{store: store, values: values}, nil
}

var (
	_ backend = localBackend{}
	_ backend = remoteBackend{}
)

type remoteBackend struct {
	*server.Client
}

func (remoteBackend) Close() error { return nil }

type localBackend struct {
	store  *board.Store
	values kv.Store
}

func (b localBackend) Close() error { return b.values.Close() }

func (b localBackend) Board(context.Context) (board.Board, error) {
	return b.store.Board(), nil
}

func (b localBackend) Add(_ context.Context, title, description string) (board.Item, error) {
	return b.store.Add(title, description)
}

func (b localBackend) Move(_ context.Context, id string, status board.Status) (board.Item, error) {
	return b.store.Move(id, status)
}

func (b localBackend) Reorder(_ context.Context, id string, position int) (board.Item, error) {
	return b.store.Reorder(id, position)
}

func (b localBackend) Delete(_ context.Context, id string) error {
	return b.store.Delete(id)
}

func (b localBackend) Update(_ context.Context, id string, opts board.UpdateOptions) (board.Item, error) {
	return b.store.Update(id, opts)
}

func (b localBackend) Get(_ context.Context, id string) (board.Item, error) {
	return b.store.Get(id)
}

func (b localBackend) Resolve(_ context.Context, prefix string) (string, error) {
	return b.store.Resolve(prefix)
}

func (b localBackend) SearchDone(_ context.Context, query string) ([]board.Item, error) {
	return b.store.SearchDone(query), nil
}

func (b localBackend) WIP(context.Context) (board.WIPStatus, error) {
	return b.store.WIP(), nil
}

func (b localBackend) SetWIPLimit(_ context.Context, limit int) error {
	return b.store.SetWIPLimit(limit)
}

func (b localBackend) Categories(context.Context) ([]string, error) {
	return b.store.Categories(), nil
}
