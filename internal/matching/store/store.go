package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/matching"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) UpsertRule(ctx context.Context, rule *matching.Rule) error {
	query := `
		SELECT id, created_at FROM category_rules
		WHERE user_id = $1 AND LOWER(pattern) = LOWER($2)
	`

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning rule upsert: %w", err)
	}
	defer dbTx.Rollback()

	var (
		id        uuid.UUID
		createdAt = rule.CreatedAt
	)

	err = dbTx.QueryRowContext(ctx, s.dialect.Rebind(query), rule.UserID, rule.Pattern).Scan(&id, &createdAt)

	switch {
	case err == nil:
		update := `UPDATE category_rules SET category = $1, pattern = $2 WHERE id = $3`
		if _, err := dbTx.ExecContext(ctx, s.dialect.Rebind(update), rule.Category, rule.Pattern, id); err != nil {
			return fmt.Errorf("updating rule: %w", err)
		}

		rule.ID = id
		rule.CreatedAt = createdAt.UTC()
	case errors.Is(err, sql.ErrNoRows):
		insert := `
			INSERT INTO category_rules (id, user_id, pattern, category, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := dbTx.ExecContext(ctx, s.dialect.Rebind(insert),
			rule.ID, rule.UserID, rule.Pattern, rule.Category, rule.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("creating rule: %w", err)
		}
	default:
		return fmt.Errorf("finding rule: %w", err)
	}

	return dbTx.Commit()
}

func (s *Store) ListRules(ctx context.Context, userID string) ([]matching.Rule, error) {
	query := `
		SELECT id, user_id, pattern, category, created_at
		FROM category_rules
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), userID)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var rules []matching.Rule

	for rows.Next() {
		var r matching.Rule
		if err := rows.Scan(&r.ID, &r.UserID, &r.Pattern, &r.Category, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning rule: %w", err)
		}

		r.CreatedAt = r.CreatedAt.UTC()
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}

	return rules, nil
}

func (s *Store) DeleteRule(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM category_rules WHERE id = $1 AND user_id = $2`), id, userID)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return matching.ErrNotFound
	}

	return nil
}
