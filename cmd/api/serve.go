package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/di"
	"github.com/recipebox/recipe-api/internal/logger"
)

func runServe(v *viper.Viper) error {
	injector := di.NewContainer(v)

	if err := di.Bootstrap(injector); err != nil {
		_ = injector.Shutdown()
		return fmt.Errorf("bootstrap server: %w", err)
	}

	log := do.MustInvoke[*logger.Logger](injector)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts handles down in reverse dependency order: the
	// HTTP server drains first, the stores close last.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
		return err
	}

	log.Info("Server stopped")
	return nil
}
