package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/saldo/internal/category"
	"github.com/MrJamesThe3rd/saldo/internal/database"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) UpsertCategory(ctx context.Context, c *category.Category) error {
	query := s.dialect.Rebind(`
		INSERT INTO categories (name, is_default, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET is_default = excluded.is_default
	`)

	if _, err := s.db.ExecContext(ctx, query, c.Name, c.Default, c.CreatedAt.UTC()); err != nil {
		return fmt.Errorf("upserting category: %w", err)
	}

	return nil
}

func (s *Store) GetCategory(ctx context.Context, name string) (*category.Category, error) {
	query := s.dialect.Rebind(`SELECT name, is_default, created_at FROM categories WHERE name = $1`)

	var c category.Category

	err := s.db.QueryRowContext(ctx, query, name).Scan(&c.Name, &c.Default, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, category.ErrNotFound
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	c.CreatedAt = c.CreatedAt.UTC()

	return &c, nil
}

func (s *Store) ListCategories(ctx context.Context) ([]*category.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, is_default, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var cats []*category.Category

	for rows.Next() {
		var c category.Category
		if err := rows.Scan(&c.Name, &c.Default, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		c.CreatedAt = c.CreatedAt.UTC()
		cats = append(cats, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return cats, nil
}
