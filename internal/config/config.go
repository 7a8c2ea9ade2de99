// Package config loads application configuration from flags, environment
// variables, an optional config file and built-in defaults, in that order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/logger"
)

// EnvPrefix is prepended to every environment variable, e.g. RECIPES_SERVER_PORT.
const EnvPrefix = "RECIPES"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Keys shared with the command line.
const (
	KeyConfigFile  = "config"
	KeyEnvironment = "app.environment"
	KeyLogLevel    = "logger.level"
	KeyDataDir     = "data_dir"
	KeyPort        = "server.port"
	KeyDBDriver    = "database.driver"
	KeyDBDSN       = "database.dsn"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig

	// DataDir holds the SQLite database, the session store and the token key.
	DataDir string
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// DatabaseConfig selects and locates the relational store.
type DatabaseConfig struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// AccessTokenKey is filled in at startup from the key file in DataDir.
	AccessTokenKey       []byte
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// RateLimitConfig bounds unauthenticated auth endpoints per client IP.
type RateLimitConfig struct {
	AuthPerMinute int
	AuthBurst     int
}

// SessionDir is where the session store keeps its files.
func (c *Config) SessionDir() string {
	return filepath.Join(c.DataDir, "sessions")
}

// NewViper returns a viper instance with defaults and environment binding applied.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyDataDir, "~/.recipes")
	v.SetDefault(KeyPort, "8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault(KeyDBDriver, DriverSQLite)
	v.SetDefault(KeyDBDSN, "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("auth.access_token_duration", "15m")
	v.SetDefault("auth.refresh_token_duration", "720h")
	v.SetDefault("rate_limit.auth_per_minute", 20)
	v.SetDefault("rate_limit.auth_burst", 10)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional config file and builds a validated Config.
// An explicit config file that does not exist is an error; a missing
// config.yaml in the default search paths is not.
func Load(v *viper.Viper) (*Config, error) {
	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		App:    AppConfig{Environment: v.GetString(KeyEnvironment)},
		Logger: LoggerConfig{Level: v.GetString(KeyLogLevel)},
		Server: ServerConfig{
			Port:         v.GetString(KeyPort),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			IdleTimeout:  v.GetDuration("server.idle_timeout"),
			CORSOrigins:  v.GetStringSlice("server.cors_origins"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString(KeyDBDriver)),
			DSN:          v.GetString(KeyDBDSN),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
		},
		Auth: AuthConfig{
			AccessTokenDuration:  v.GetDuration("auth.access_token_duration"),
			RefreshTokenDuration: v.GetDuration("auth.refresh_token_duration"),
		},
		RateLimit: RateLimitConfig{
			AuthPerMinute: v.GetInt("rate_limit.auth_per_minute"),
			AuthBurst:     v.GetInt("rate_limit.auth_burst"),
		},
	}

	dataDir, err := expandPath(v.GetString(KeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}
	cfg.DataDir = dataDir

	if cfg.Database.Driver == DriverSQLite && cfg.Database.DSN == "" {
		cfg.Database.DSN = filepath.Join(cfg.DataDir, "recipes.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid database driver: %q (must be sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}

	if c.DataDir == "" {
		return errors.New("data dir cannot be empty")
	}
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Auth.AccessTokenDuration <= 0 || c.Auth.RefreshTokenDuration <= 0 {
		return errors.New("token durations must be positive")
	}
	if c.Auth.RefreshTokenDuration < c.Auth.AccessTokenDuration {
		return errors.New("refresh token duration must not be shorter than access token duration")
	}
	if c.RateLimit.AuthPerMinute <= 0 || c.RateLimit.AuthBurst <= 0 {
		return errors.New("rate limit values must be positive")
	}

	return nil
}

// Watch reloads the log level whenever the config file changes.
// It is a no-op when no config file was loaded.
func Watch(v *viper.Viper, log *logger.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		level := v.GetString(KeyLogLevel)
		log.SetLevel(logger.ParseLevel(level))
		log.Info("Config reloaded", "file", e.Name, "log_level", level)
	})
	v.WatchConfig()
}

func readConfigFile(v *viper.Viper) error {
	if file := v.GetString(KeyConfigFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := expandPath(v.GetString(KeyDataDir)); err == nil {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// expandPath expands a leading ~ and makes the path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}
