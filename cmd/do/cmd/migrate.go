package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/craftfolio/craftfolio/internal/config"
	"github.com/craftfolio/craftfolio/internal/db"
)

// MigrateCmd manages the schema of the local backend's database.
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations for BACKEND=local",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				return db.RunMigrations(database.DB, driver)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				return db.MigrateDown(database.DB, driver)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(database *sqlx.DB, driver string) error {
				return db.MigrationStatus(database.DB, driver)
			})
		},
	})

	return cmd
}

func withDB(fn func(database *sqlx.DB, driver string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Backend != config.BackendLocal {
		return fmt.Errorf("migrations only apply to BACKEND=%s (current: %s)", config.BackendLocal, cfg.Backend)
	}

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	return fn(database, cfg.DBDriver)
}
