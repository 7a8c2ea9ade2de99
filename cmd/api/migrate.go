package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/logger"
	"github.com/recipebox/recipe-api/internal/store/sqlstore"
)

func runMigrate(ctx context.Context, v *viper.Viper, out io.Writer) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
	})

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Logger: log.Logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := db.Migrate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "schema at version %d (%s)\n", version, db.Driver())
	return nil
}
