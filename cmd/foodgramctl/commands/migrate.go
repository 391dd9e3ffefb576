package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/migrations"
)

var errSQLiteMigrations = errors.New("sqlite schemas are migrated from the models when the server starts")

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run PostgreSQL schema migrations",
	Long: `Run the embedded PostgreSQL schema migrations.

Subcommands:
  up      - apply pending migrations
  down    - roll back the latest migration
  status  - show the applied version`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Up(); err != nil {
				return err
			}
			return printStatus(cmd, m)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			if err := m.Down(); err != nil {
				return err
			}
			return printStatus(cmd, m)
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the applied migration version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withMigrator(func(m *migrations.Migrator) error {
			return printStatus(cmd, m)
		})
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}

func withMigrator(fn func(*migrations.Migrator) error) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	if env.cfg.Database.Driver != "postgres" {
		return errSQLiteMigrations
	}

	m, err := migrations.Open(env.cfg.Database.URL(), env.cfg.Database.Database, env.log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func printStatus(cmd *cobra.Command, m *migrations.Migrator) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	state := "clean"
	if status.Dirty {
		state = "dirty"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (%s)\n", status.Version, state)
	return nil
}
