package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/user"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) InsertUser(ctx context.Context, u *user.User) error {
	query := s.dialect.Rebind(`
		INSERT INTO users (id, username, email, photo, balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	_, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.Photo, u.Balance, u.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	query := s.dialect.Rebind(`SELECT id, username, email, photo, balance, created_at FROM users WHERE id = $1`)

	var (
		u     user.User
		photo sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Username, &u.Email, &photo, &u.Balance, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	if photo.Valid {
		u.Photo = &photo.String
	}

	u.CreatedAt = u.CreatedAt.UTC()

	return &u, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id string, update user.UpdateParams) error {
	var (
		sets []string
		args []any
	)

	if update.Username != nil {
		args = append(args, *update.Username)
		sets = append(sets, fmt.Sprintf("username = $%d", len(args)))
	}

	if update.Photo != nil {
		args = append(args, *update.Photo)
		sets = append(sets, fmt.Sprintf("photo = $%d", len(args)))
	}

	if len(sets) == 0 {
		return user.ErrNothingToUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE users SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}

	return nil
}
