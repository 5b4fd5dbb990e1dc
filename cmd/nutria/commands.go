// ABOUTME: The serve, browse, migrate, and seed subcommands.
// ABOUTME: Long-running commands stop on SIGINT or SIGTERM through a signal-aware context.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2389-research/nutria/catalog"
	"github.com/2389-research/nutria/query"
	"github.com/2389-research/nutria/tui"
	"github.com/2389-research/nutria/web"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.HTTPPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			srv, err := web.NewServer(web.ServerConfig{
				Addr:      a.cfg.ListenAddr(),
				Catalog:   store,
				StaleTime: a.cfg.StaleTime,
				Logger:    a.logger,
				Registry:  registry,
			})
			if err != nil {
				return err
			}
			a.logger.Info("serving", zap.String("addr", a.cfg.ListenAddr()))
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP port (overrides http.port)")
	return cmd
}

func newBrowseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse the catalog in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			model := tui.NewModel(ctx, store, query.NewClient(query.WithStaleTime(a.cfg.StaleTime)))
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("browser: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the catalog schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "%s at schema version %d\n", a.cfg.DatabasePath, store.SchemaVersion())
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import users, tags, ingredients, and recipes from a YAML fixture",
		Long: `Import a YAML fixture into the catalog. Without --file the built-in
sample catalog is imported. The import is all or nothing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := readSeed(file)
			if err != nil {
				return err
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Import(cmd.Context(), seed)
			if err != nil {
				return err
			}
			a.logger.Info("seed imported",
				zap.String("file", file),
				zap.Int("users", stats.Users),
				zap.Int("tags", stats.Tags),
				zap.Int("ingredients", stats.Ingredients),
				zap.Int("recipes", stats.Recipes))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d users, %d tags, %d ingredients, %d recipes\n",
				stats.Users, stats.Tags, stats.Ingredients, stats.Recipes)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML fixture to import (default: built-in sample catalog)")
	return cmd
}

func readSeed(file string) (*catalog.Seed, error) {
	if file == "" {
		return catalog.DefaultSeed()
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open seed: %w", err)
	}
	defer f.Close()
	seed, err := catalog.LoadSeed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return seed, nil
}
