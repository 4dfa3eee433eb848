package cmd

import (
	"fmt"

	"github.com/internhub/server/internal/config"
	"github.com/internhub/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Long: `Apply or roll back the PostgreSQL schema migrations.

Examples:
  server migrate up
  server migrate down --steps 1
  server migrate version`,
	}
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations", postgres.DefaultMigrationsPath, "migrations directory")

	databaseURL := func() (string, error) {
		cfg, err := loadConfig(flags)
		if err != nil {
			return "", fmt.Errorf("config error: %w", err)
		}
		if cfg.Storage.Driver != config.StorageDriverPostgres {
			return "", fmt.Errorf("migrations need STORAGE_DRIVER=postgres, got %q", cfg.Storage.Driver)
		}
		return cfg.Database.URL, nil
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateUp(url, migrationsPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			url, err := databaseURL()
			if err != nil {
				return err
			}
			if err := postgres.MigrateDown(url, migrationsPath, steps); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := databaseURL()
			if err != nil {
				return err
			}
			v, dirty, err := postgres.MigrationVersion(url, migrationsPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", v, dirty)
			return nil
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}
