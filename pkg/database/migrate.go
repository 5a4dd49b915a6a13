package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsDir is the directory inside migrationsFS holding the goose files.
const migrationsDir = "migrations"

// gooseRun is a seam for tests.
var gooseRun = func(ctx context.Context, db *sql.DB, command string) error {
	switch command {
	case "up":
		return goose.UpContext(ctx, db, migrationsDir)
	case "down":
		return goose.DownContext(ctx, db, migrationsDir)
	case "status":
		return goose.StatusContext(ctx, db, migrationsDir)
	default:
		return fmt.Errorf("unknown migrate command %q", command)
	}
}

// Migrate runs a goose command ("up", "down" or "status") against the embedded
// migrations for the users and email_addresses tables.
func Migrate(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseRun(ctx, db, command); err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}
