package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Store struct {
	db      *sql.DB
	dialect database.Dialect
}

func New(db *sql.DB, dialect database.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectTransactionColumns = `id, user_id, type, category, amount, date`

// scanTransaction expects the columns in selectTransactionColumns order.
func scanTransaction(s scanner) (*transaction.Transaction, error) {
	var (
		tx      transaction.Transaction
		typeStr string
	)

	if err := s.Scan(&tx.ID, &tx.UserID, &typeStr, &tx.Category, &tx.Amount, &tx.Date); err != nil {
		return nil, err
	}

	tx.Type = transaction.Type(typeStr)
	tx.Date = tx.Date.UTC()

	return &tx, nil
}

func getTransaction(ctx context.Context, q querier, dialect database.Dialect, id uuid.UUID) (*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE id = $1`

	tx, err := scanTransaction(q.QueryRowContext(ctx, dialect.Rebind(query), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, transaction.ErrNotFound
		}

		return nil, fmt.Errorf("getting transaction: %w", err)
	}

	return tx, nil
}

func (s *Store) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, s.db, s.dialect, id)
}

func (s *Store) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + selectTransactionColumns + ` FROM transactions WHERE user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = fmt.Sprintf("$%d", argIdx)

			args = append(args, string(t))
			argIdx++
		}

		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, filter.StartDate.UTC())
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND date < $%d", argIdx)

		args = append(args, filter.EndDate.UTC())
		argIdx++
	}

	if filter.Newest {
		query += " ORDER BY date DESC, id DESC"
	} else {
		query += " ORDER BY date ASC, id ASC"
	}

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txs []*transaction.Transaction

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}

		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	return txs, nil
}

// ledgerLockKey maps a user id onto the advisory lock that guards their ledger.
func ledgerLockKey(userID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("ledger"))
	h.Write([]byte{0})
	h.Write([]byte(userID))

	return int64(h.Sum64())
}

type ledgerTx struct {
	tx      *sql.Tx
	dialect database.Dialect
}

// BeginLedger opens a db transaction scoped to one user's ledger. On Postgres a
// transaction-level advisory lock serializes it with other ledger transactions
// for the same user; SQLite runs one writer at a time already.
func (s *Store) BeginLedger(ctx context.Context, userID string) (transaction.LedgerTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning ledger tx: %w", err)
	}

	if s.dialect == database.Postgres {
		if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", ledgerLockKey(userID)); err != nil {
			dbTx.Rollback()
			return nil, fmt.Errorf("acquiring ledger lock: %w", err)
		}
	}

	return &ledgerTx{tx: dbTx, dialect: s.dialect}, nil
}

func (l *ledgerTx) Commit() error { return l.tx.Commit() }

func (l *ledgerTx) Rollback() error {
	if err := l.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}

	return nil
}

func (l *ledgerTx) CategoryExists(ctx context.Context, name string) (bool, error) {
	var exists bool

	query := l.dialect.Rebind(`SELECT EXISTS(SELECT 1 FROM categories WHERE name = $1)`)
	if err := l.tx.QueryRowContext(ctx, query, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}

	return exists, nil
}

func (l *ledgerTx) AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error) {
	query := l.dialect.Rebind(`UPDATE users SET balance = balance + $1 WHERE id = $2 RETURNING balance`)

	var balance int64
	if err := l.tx.QueryRowContext(ctx, query, delta, userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, transaction.ErrUserNotFound
		}

		return 0, fmt.Errorf("adjusting balance: %w", err)
	}

	return balance, nil
}

func (l *ledgerTx) Balance(ctx context.Context, userID string) (int64, error) {
	query := l.dialect.Rebind(`SELECT balance FROM users WHERE id = $1`)

	var balance int64
	if err := l.tx.QueryRowContext(ctx, query, userID).Scan(&balance); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, transaction.ErrUserNotFound
		}

		return 0, fmt.Errorf("reading balance: %w", err)
	}

	return balance, nil
}

func (l *ledgerTx) SetBalance(ctx context.Context, userID string, balance int64) error {
	query := l.dialect.Rebind(`UPDATE users SET balance = $1 WHERE id = $2`)

	res, err := l.tx.ExecContext(ctx, query, balance, userID)
	if err != nil {
		return fmt.Errorf("setting balance: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrUserNotFound
	}

	return nil
}

func (l *ledgerTx) LedgerSum(ctx context.Context, userID string) (int64, error) {
	query := l.dialect.Rebind(`
		SELECT CAST(COALESCE(SUM(CASE WHEN type = $1 THEN amount ELSE -amount END), 0) AS BIGINT)
		FROM transactions
		WHERE user_id = $2`)

	var sum int64
	if err := l.tx.QueryRowContext(ctx, query, string(transaction.TypeIncome), userID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("summing ledger: %w", err)
	}

	return sum, nil
}

func (l *ledgerTx) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return getTransaction(ctx, l.tx, l.dialect, id)
}

func (l *ledgerTx) CreateTransactions(ctx context.Context, txs []*transaction.Transaction) error {
	query := l.dialect.Rebind(`
		INSERT INTO transactions (id, user_id, type, category, amount, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)

	for _, tx := range txs {
		_, err := l.tx.ExecContext(ctx, query,
			tx.ID,
			tx.UserID,
			string(tx.Type),
			tx.Category,
			tx.Amount,
			tx.Date.UTC(),
		)
		if err != nil {
			return fmt.Errorf("creating transaction: %w", err)
		}
	}

	return nil
}

func (l *ledgerTx) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	res, err := l.tx.ExecContext(ctx, l.dialect.Rebind(`DELETE FROM transactions WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return transaction.ErrNotFound
	}

	return nil
}
