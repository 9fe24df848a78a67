package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Logger is satisfied by *logrus.Logger.
type Logger interface {
	Printf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

func prepare(logger Logger) error {
	goose.SetBaseFS(migrations)
	if logger != nil {
		goose.SetLogger(logger)
	}
	if err := goose.SetDialect("mysql"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return nil
}

// Migrate applies every pending embedded migration.  Running it against an
// up-to-date schema is a no-op.
func Migrate(ctx context.Context, db *sqlx.DB, logger Logger) error {
	if err := prepare(logger); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Status prints the applied/pending state of each migration via the logger.
func Status(ctx context.Context, db *sqlx.DB, logger Logger) error {
	if err := prepare(logger); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db.DB, migrationsDir)
}
