package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/erazemk/inventario/internal/config"
	"github.com/erazemk/inventario/internal/inventory"
	"github.com/erazemk/inventario/internal/redisstore"
	"github.com/erazemk/inventario/internal/session"
	"github.com/erazemk/inventario/internal/sheet"
	"github.com/erazemk/inventario/internal/store"
	"github.com/erazemk/inventario/internal/upload"
)

// errMemoryBackend is returned by commands that cannot reach a session table.
var errMemoryBackend = errors.New("the memory backend only exists inside a running server")

// openBackends resolves the configured item table. The session manager is
// non-nil only for the memory backend. The returned close function is never
// nil.
func openBackends(ctx context.Context, database *sql.DB) (inventory.Backends, *session.Manager, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendSQLite:
		return inventory.Shared{Backend: &store.Table{DB: database}}, nil, noop, nil
	case config.BackendSheet:
		slog.Info("using sheet backend", "path", cfg.SheetPath)
		return inventory.Shared{Backend: sheet.New(cfg.SheetPath)}, nil, noop, nil
	case config.BackendRedis:
		client, err := redisstore.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, nil, err
		}
		slog.Info("using redis backend", "addr", cfg.RedisAddr, "key", cfg.RedisKey)
		closeFn := func() {
			if err := client.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}
		return inventory.Shared{Backend: redisstore.New(client, cfg.RedisKey)}, nil, closeFn, nil
	case config.BackendMemory:
		manager := session.NewManager(cfg.SessionTTL)
		return manager, manager, noop, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// newUploader returns the upload bridge client when one is configured and
// stores photos in the database otherwise.
func newUploader(database *sql.DB) inventory.Uploader {
	if cfg.UploadURL != "" {
		return upload.NewScriptUploader(cfg.UploadURL)
	}
	return &upload.DBUploader{DB: database}
}

// newServices wires the inventory services over the configured backend.
func newServices(ctx context.Context, database *sql.DB) (*inventory.Services, *session.Manager, func(), error) {
	backends, manager, closeFn, err := openBackends(ctx, database)
	if err != nil {
		return nil, nil, nil, err
	}

	services := inventory.NewServices(backends, inventory.Options{
		Uploader:     newUploader(database),
		Catalog:      store.Catalog{DB: database},
		RequirePhoto: cfg.RequirePhoto,
	})
	if manager != nil {
		manager.OnEnd(services.Forget)
	}
	return services, manager, closeFn, nil
}
