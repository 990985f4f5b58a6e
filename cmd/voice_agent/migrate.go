package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/voice-fingerprint/internal/db"
	"github.com/jonathan/voice-fingerprint/internal/store"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the voice profile schema",
		Long:  "Applies the schema to PostgreSQL when DATABASE_URL is set, otherwise to the SQLite file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}

			if cfg.DatabaseURL != "" {
				database, err := db.Connect(cmd.Context(), cfg.DatabaseURL)
				if err != nil {
					return err
				}
				defer func() { _ = database.Close() }()
				if err := database.Migrate(cmd.Context()); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "PostgreSQL schema is up to date")
				return err
			}

			sqlite, err := store.OpenSQLite(cfg.SQLitePath)
			if err != nil {
				return err
			}
			if err := sqlite.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "SQLite schema is up to date at %s\n", cfg.SQLitePath)
			return err
		},
	}
}
