// Package providers contains dependency injection providers for the recipe server.
package providers

import (
	"github.com/samber/do/v2"
	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/config"
	"github.com/recipebox/recipe-api/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.Load(do.MustInvoke[*viper.Viper](i))
}

// ProvideLogger provides the structured logger and follows log level
// changes in the config file.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting recipe server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.DataDir,
		"database_driver", cfg.Database.Driver,
	)

	config.Watch(do.MustInvoke[*viper.Viper](i), log)

	return log, nil
}
