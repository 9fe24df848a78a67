package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/iliyamo/casting-agency/internal/config"
	"github.com/iliyamo/casting-agency/internal/database"
	"github.com/iliyamo/casting-agency/internal/logging"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(cfg config.Config, db *sqlx.DB) error {
					return database.Migrate(cmd.Context(), db, logging.New(cfg.LogLevel, cfg.LogFormat))
				})
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print applied and pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), func(cfg config.Config, db *sqlx.DB) error {
					return database.Status(cmd.Context(), db, logging.New(cfg.LogLevel, cfg.LogFormat))
				})
			},
		},
	)
	return cmd
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return database.Open(ctx, dsn)
}

func withDB(ctx context.Context, fn func(config.Config, *sqlx.DB) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(cfg, db)
}
