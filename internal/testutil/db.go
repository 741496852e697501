// Package testutil holds helpers shared by package tests.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/saldo/internal/database"
)

// NewSQLite returns a migrated in-memory database that is closed when the test ends.
func NewSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := database.New(string(database.SQLite), ":memory:")
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() { db.Close() })

	_, err = database.Migrate(context.Background(), db, database.SQLite)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// PostgresDSNEnv names the variable that points tests at a disposable Postgres.
const PostgresDSNEnv = "SALDO_TEST_POSTGRES_DSN"

// NewPostgres returns a migrated Postgres database with every table emptied.
// The test is skipped when PostgresDSNEnv is unset.
func NewPostgres(t testing.TB) *sql.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	db, err := database.New(string(database.Postgres), dsn)
	require.NoError(t, err, "failed to open test database")

	t.Cleanup(func() { db.Close() })

	ctx := context.Background()

	_, err = database.Migrate(ctx, db, database.Postgres)
	require.NoError(t, err, "failed to migrate test database")

	_, err = db.ExecContext(ctx, `TRUNCATE category_rules, transactions, categories, users, accounts CASCADE`)
	require.NoError(t, err, "failed to empty test database")

	return db
}
