// Package main provides the entry point for the recipe API server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recipebox/recipe-api/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root alone serves.
func newRootCmd() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:           "recipe-api",
		Short:         "Recipe management REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default: ./config.yaml or <data-dir>/config.yaml)")
	flags.String("env", "", "environment: development, staging or production")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("data-dir", "", "directory for the database, sessions and token key")
	flags.String("port", "", "HTTP listen port")
	flags.String("db-driver", "", "database driver: sqlite or postgres")
	flags.String("db-dsn", "", "database file (sqlite) or connection URL (postgres)")

	bindings := map[string]string{
		config.KeyConfigFile:  "config",
		config.KeyEnvironment: "env",
		config.KeyLogLevel:    "log-level",
		config.KeyDataDir:     "data-dir",
		config.KeyPort:        "port",
		config.KeyDBDriver:    "db-driver",
		config.KeyDBDSN:       "db-dsn",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", flag, err))
		}
	}

	root.AddCommand(newServeCmd(v), newMigrateCmd(v))
	return root
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(v)
		},
	}
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), v, cmd.OutOrStdout())
		},
	}
}
