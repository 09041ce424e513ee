// Package storage selects the artifact store backend.
package storage

import (
	"context"
	"fmt"

	"floodmap.app/internal/adapters/storage/database"
	"floodmap.app/internal/adapters/storage/filesystem"
	"floodmap.app/internal/ports"
	"floodmap.app/pkg/errors"
)

// Backend is a configured artifact store together with its lifecycle hooks
type Backend struct {
	Name  string
	Store ports.ArtifactStore
	ping  func(ctx context.Context) error
	close func() error
}

// Ping reports whether the backend is reachable
func (b *Backend) Ping(ctx context.Context) error {
	return b.ping(ctx)
}

// Close releases backend resources
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewBackend opens the backend named by cfg.Backend
func NewBackend(cfg ports.StorageConfig, dbCfg ports.DatabaseConfig, logger ports.Logger) (*Backend, error) {
	switch cfg.Backend {
	case "filesystem", "":
		store, err := filesystem.NewStore(cfg, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{Name: "filesystem", Store: store, ping: store.Ping}, nil

	case "database":
		db, err := database.Open(dbCfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, err
		}
		logger.Info("Using database artifact store", ports.F("driver", dbCfg.Driver))
		store := database.NewStore(db)
		return &Backend{
			Name:  "database",
			Store: store,
			ping:  store.Ping,
			close: func() error { return database.Close(db) },
		}, nil

	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported storage backend: %s", cfg.Backend), nil)
	}
}
