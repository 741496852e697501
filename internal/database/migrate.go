package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrate applies the embedded migrations for the dialect that have not run yet.
// Each file runs in its own transaction together with its schema_migrations row.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) ([]string, error) {
	createTable := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)`
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating schema_migrations: %w", err)
	}

	dir := path.Join("migrations", string(dialect))

	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations for %s: %w", dialect, err)
	}

	var files []string

	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}

	sort.Strings(files)

	var applied []string

	for _, name := range files {
		ran, err := applyMigration(ctx, db, dialect, dir, name)
		if err != nil {
			return applied, err
		}

		if ran {
			slog.Info("applied migration", "file", name, "dialect", dialect)
			applied = append(applied, name)
		}
	}

	return applied, nil
}

func applyMigration(ctx context.Context, db *sql.DB, dialect Dialect, dir, name string) (bool, error) {
	body, err := migrationsFS.ReadFile(path.Join(dir, name))
	if err != nil {
		return false, fmt.Errorf("reading migration %s: %w", name, err)
	}

	stmt := strings.TrimSpace(string(body))
	if stmt == "" {
		return false, fmt.Errorf("empty migration: %s", name)
	}

	dbTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning migration %s: %w", name, err)
	}
	defer dbTx.Rollback()

	var exists bool

	existsQuery := dialect.Rebind(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)`)
	if err := dbTx.QueryRowContext(ctx, existsQuery, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking migration %s: %w", name, err)
	}

	if exists {
		return false, nil
	}

	if _, err := dbTx.ExecContext(ctx, stmt); err != nil {
		return false, fmt.Errorf("migration %s failed: %w", name, err)
	}

	insert := dialect.Rebind(`INSERT INTO schema_migrations (filename, applied_at) VALUES ($1, $2)`)
	if _, err := dbTx.ExecContext(ctx, insert, name, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("recording migration %s: %w", name, err)
	}

	if err := dbTx.Commit(); err != nil {
		return false, fmt.Errorf("committing migration %s: %w", name, err)
	}

	return true, nil
}
