// ABOUTME: Root cobra command for the nutria CLI: global flags, config and logger setup shared by subcommands.
// ABOUTME: Subcommands are serve, browse, migrate, seed, and version.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389-research/nutria/catalog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

// app carries what PersistentPreRunE resolved to the subcommands.
type app struct {
	configPath string
	dbPath     string
	logLevel   string

	cfg    Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "nutria",
		Short:         "Nutria is a recipe catalog with a web and a terminal front end",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default: ./nutria.yaml or $XDG_CONFIG_HOME/nutria/nutria.yaml)")
	flags.StringVar(&a.dbPath, "db", "", "SQLite database path (overrides database.path)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides log.level)")

	root.AddCommand(
		newServeCmd(a),
		newBrowseCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup loads .env files and config, applies flag overrides, and builds the
// logger.
func (a *app) setup() error {
	loaded, err := loadDotEnvAuto()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.DatabasePath = a.dbPath
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration loaded",
		zap.String("config_file", cfg.File),
		zap.Strings("env_files", loaded),
		zap.String("database", cfg.DatabasePath))
	return nil
}

// openStore opens the configured catalog, creating its directory if needed.
func (a *app) openStore(ctx context.Context) (*catalog.Store, error) {
	path := a.cfg.DatabasePath
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	store, err := catalog.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("catalog opened", zap.String("path", path), zap.Int("schema_version", store.SchemaVersion()))
	return store, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the nutria version",
		Args:  cobra.NoArgs,
		// Printing the version needs no config.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "nutria", version)
		},
	}
}
