package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"grindset/internal/adapters/storage"
	accountStore "grindset/internal/adapters/storage/account"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Long: `Apply pending schema migrations to the configured SQLite database.

File databases are backed up (VACUUM INTO <path>.bak-v<version>) before an
existing schema is upgraded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cfg.Database.Path)
		if err != nil {
			return err
		}
		defer db.Close()

		current, err := storage.SchemaVersion(db)
		if err != nil {
			return err
		}
		accounts, err := accountStore.NewSQLiteStore(db).Count(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("migration_event", "event", "up_to_date", "path", cfg.Database.Path,
			"schema", current, "accounts", accounts)
		return nil
	},
}
