package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/identity"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

const selectAccountColumns = `id, email, password_hash, display_name, photo_url, created_at, last_sign_in_at`

func scanAccount(row *sql.Row) (*identity.Account, error) {
	var (
		a        identity.Account
		photo    sql.NullString
		lastSeen sql.NullTime
	)

	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &photo, &a.CreatedAt, &lastSeen)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, identity.ErrNotFound
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	if photo.Valid {
		a.PhotoURL = &photo.String
	}

	if lastSeen.Valid {
		t := lastSeen.Time.UTC()
		a.LastSignInAt = &t
	}

	a.CreatedAt = a.CreatedAt.UTC()

	return &a, nil
}

func (s *Store) InsertAccount(ctx context.Context, a *identity.Account) error {
	query := s.dialect.Rebind(`
		INSERT INTO accounts (id, email, password_hash, display_name, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	_, err := s.db.ExecContext(ctx, query, a.ID, a.Email, a.PasswordHash, a.DisplayName, a.PhotoURL, a.CreatedAt.UTC())
	if err != nil {
		if database.IsUniqueViolation(err) {
			return identity.ErrEmailTaken
		}

		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

func (s *Store) GetAccount(ctx context.Context, id string) (*identity.Account, error) {
	query := s.dialect.Rebind(`SELECT ` + selectAccountColumns + ` FROM accounts WHERE id = $1`)
	return scanAccount(s.db.QueryRowContext(ctx, query, id))
}

func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*identity.Account, error) {
	query := s.dialect.Rebind(`SELECT ` + selectAccountColumns + ` FROM accounts WHERE LOWER(email) = LOWER($1)`)
	return scanAccount(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) TouchSignIn(ctx context.Context, id string, at time.Time) error {
	query := s.dialect.Rebind(`UPDATE accounts SET last_sign_in_at = $1 WHERE id = $2`)

	if _, err := s.db.ExecContext(ctx, query, at.UTC(), id); err != nil {
		return fmt.Errorf("updating sign-in time: %w", err)
	}

	return nil
}

func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM accounts WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("deleting account: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrNotFound
	}

	return nil
}
