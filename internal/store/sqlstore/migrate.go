package sqlstore

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies pending migrations and returns the resulting version.
func (s *Store) Migrate(ctx context.Context) (int64, error) {
	fsys, err := fs.Sub(migrationsFS, s.dialect.migrationDir)
	if err != nil {
		return 0, fmt.Errorf("migrations for %s: %w", s.dialect.name, err)
	}

	provider, err := goose.NewProvider(s.dialect.goose, s.db, fsys)
	if err != nil {
		return 0, fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("Applied migration",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration,
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
