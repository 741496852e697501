package transaction

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "Income"
	TypeExpense Type = "Expense"

	// typeOutcome is the legacy name for TypeExpense still sent by older clients.
	typeOutcome = "outcome"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrForbidden       = errors.New("transaction belongs to another user")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrInvalidType     = errors.New("type must be Income or Expense")
	ErrMissingFields   = errors.New("missing required fields")
)

// ParseType normalizes a client-supplied type. "Outcome" is accepted as an
// alias for Expense.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income":
		return TypeIncome, nil
	case "expense", typeOutcome:
		return TypeExpense, nil
	}

	return "", ErrInvalidType
}

// Delta is the signed change a transaction of this type and amount applies to a balance.
func (t Type) Delta(amount int64) int64 {
	if t == TypeIncome {
		return amount
	}

	return -amount
}

// Transaction is a single ledger entry. Amount is always a positive number of cents.
type Transaction struct {
	ID       uuid.UUID
	UserID   string
	Type     Type
	Category string
	Amount   int64
	Date     time.Time
}

// Delta is the signed effect of the transaction on its owner's balance.
func (tx *Transaction) Delta() int64 {
	return tx.Type.Delta(tx.Amount)
}

// Reconciliation compares a stored balance with the one recomputed from the ledger.
type Reconciliation struct {
	UserID   string
	Stored   int64
	Computed int64
	Drift    bool
}
