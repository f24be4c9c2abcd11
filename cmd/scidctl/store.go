package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scid-pd-engine/internal/config"
	"github.com/scid-pd-engine/internal/database"
	"github.com/scid-pd-engine/internal/domain"
	"github.com/scid-pd-engine/internal/storage"
)

// openStore opens the configured backend directly, without the server's breaker and cache
// layers. PostgreSQL goes through database/sql and lib/pq.
func openStore(cfg *domain.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return storage.NewSQLiteStore(cfg.Storage.SQLitePath)
	case config.DriverPostgres:
		return storage.NewPostgresStoreFromURL(config.PostgresURL(cfg.Storage), cfg.Storage)
	case config.DriverMemory:
		return nil, fmt.Errorf("the memory driver keeps no profiles between runs; configure sqlite or postgres")
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

func newExportCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every stored profile to a JSON file (- for stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if args[0] == "-" {
				return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := store.ExportJSON(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			count, err := store.CountProfiles(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d profiles to %s\n", count, args[0])
			return nil
		},
	}
}

func newImportCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load profiles from an export file; profiles already stored are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			imported, skipped, err := store.ImportJSON(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d profiles, skipped %d\n", imported, skipped)
			return nil
		},
	}
}

func newMigrateCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the PostgreSQL schema",
	}

	run := func(apply func(*database.MigrationRunner) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Storage.Driver != config.DriverPostgres {
				return fmt.Errorf("migrations apply to the postgres driver only (configured: %s)", cfg.Storage.Driver)
			}

			runner, err := database.NewMigrationRunner(config.PostgresURL(cfg.Storage), cfg.Storage.MigrationsPath, cli.logger(cfg.Logging))
			if err != nil {
				return err
			}
			defer runner.Close()

			if err := apply(runner); err != nil {
				return err
			}
			version, dirty, err := runner.Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
			return nil
		}
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: run(func(r *database.MigrationRunner) error {
			if steps <= 0 {
				return fmt.Errorf("--steps must be positive")
			}
			return r.Steps(-steps)
		}),
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  run((*database.MigrationRunner).Up),
		},
		downCmd,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE:  run(func(*database.MigrationRunner) error { return nil }),
		},
	)
	return cmd
}
