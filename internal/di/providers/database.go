package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/logger"
	"github.com/recipebox/recipe-api/internal/store"
	"github.com/recipebox/recipe-api/internal/store/sqlstore"
)

// StoreHandle wraps the relational store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the relational store and brings its schema up to date.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	ctx := context.Background()
	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Logger:       log.Logger,
	})
	if err != nil {
		return nil, err
	}

	version, err := db.Migrate(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info("Database initialized", "driver", db.Driver(), "schema_version", version)

	return &StoreHandle{Store: db}, nil
}

// SessionStoreHandle wraps the session store with shutdown capability.
type SessionStoreHandle struct {
	*store.SessionStore
}

// Shutdown implements do.Shutdownable.
func (h *SessionStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideSessionStore opens the Badger session store under the data dir.
func ProvideSessionStore(i do.Injector) (*SessionStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	sessions, err := store.OpenSessionStore(store.SessionStoreOptions{
		Path:   cfg.SessionDir(),
		Logger: log.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &SessionStoreHandle{SessionStore: sessions}, nil
}
