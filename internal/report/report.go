// Package report builds read-only views over a user's ledger.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/user"
)

const latestLimit = 5

var (
	ErrEmpty         = errors.New("no transactions found")
	ErrInvalidPeriod = errors.New("invalid period")
	ErrInvalidType   = errors.New("type must be All, Income, Expense or Outcome")
)

type Ledger interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Users interface {
	Get(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	ledger Ledger
	users  Users
}

func NewService(ledger Ledger, users Users) *Service {
	return &Service{ledger: ledger, users: users}
}

// WeekTotal is the sum of expenses between Start and End, both inclusive days.
type WeekTotal struct {
	Week  int
	Start time.Time
	End   time.Time
	Total int64
}

type CategoryTotal struct {
	Category string
	Total    int64
}

type Statistics struct {
	TotalIncome  int64
	TotalOutcome int64
	Savings      int64
	// Categories holds expense totals, largest first.
	Categories []CategoryTotal
}

func monthRange(year, month int) (time.Time, time.Time, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %d-%d", ErrInvalidPeriod, month, year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)

	return start, start.AddDate(0, 1, 0), nil
}

// Monthly lists the transactions of one calendar month. typ is "All" or
// anything transaction.ParseType accepts.
func (s *Service) Monthly(ctx context.Context, uid, typ string, month, year int) ([]*transaction.Transaction, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	filter := transaction.ListFilter{UserID: uid, StartDate: &start, EndDate: &end}

	if !strings.EqualFold(strings.TrimSpace(typ), "all") {
		t, err := transaction.ParseType(typ)
		if err != nil {
			return nil, ErrInvalidType
		}

		filter.Types = []transaction.Type{t}
	}

	txs, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if len(txs) == 0 {
		return nil, ErrEmpty
	}

	return txs, nil
}

// WeeklyExpenses splits a month into days 1-7, 8-14, 15-21, 22-28 and the
// remainder, and totals the expenses of each.
func (s *Service) WeeklyExpenses(ctx context.Context, uid string, year, month int) ([]WeekTotal, error) {
	start, end, err := monthRange(year, month)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.Get(ctx, uid); err != nil {
		return nil, err
	}

	txs, err := s.ledger.List(ctx, transaction.ListFilter{
		UserID:    uid,
		Types:     []transaction.Type{transaction.TypeExpense},
		StartDate: &start,
		EndDate:   &end,
	})
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	lastDay := end.AddDate(0, 0, -1).Day()

	var weeks []WeekTotal

	for first := 1; first <= lastDay; first += 7 {
		last := first + 6
		if last > lastDay {
			last = lastDay
		}

		weeks = append(weeks, WeekTotal{
			Week:  len(weeks) + 1,
			Start: start.AddDate(0, 0, first-1),
			End:   start.AddDate(0, 0, last-1),
		})
	}

	for _, tx := range txs {
		idx := (tx.Date.Day() - 1) / 7
		if idx >= len(weeks) {
			idx = len(weeks) - 1
		}

		weeks[idx].Total += tx.Amount
	}

	return weeks, nil
}

// ParseDate accepts YYYY-MM-DD or RFC3339 and returns the UTC day it falls on.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrInvalidPeriod, s)
	}

	t = t.UTC()

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// Statistics totals income and expenses between two days, end day included.
func (s *Service) Statistics(ctx context.Context, uid string, start, end time.Time) (*Statistics, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start date is after end date", ErrInvalidPeriod)
	}

	until := end.AddDate(0, 0, 1)

	txs, err := s.ledger.List(ctx, transaction.ListFilter{UserID: uid, StartDate: &start, EndDate: &until})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if len(txs) == 0 {
		return nil, ErrEmpty
	}

	var stats Statistics

	byCategory := make(map[string]int64)

	for _, tx := range txs {
		if tx.Type == transaction.TypeIncome {
			stats.TotalIncome += tx.Amount
			continue
		}

		stats.TotalOutcome += tx.Amount
		byCategory[tx.Category] += tx.Amount
	}

	stats.Savings = stats.TotalIncome - stats.TotalOutcome

	for name, total := range byCategory {
		stats.Categories = append(stats.Categories, CategoryTotal{Category: name, Total: total})
	}

	sort.Slice(stats.Categories, func(i, j int) bool {
		a, b := stats.Categories[i], stats.Categories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}

		return a.Category < b.Category
	})

	return &stats, nil
}

// Latest returns the user's most recent transactions, newest first.
func (s *Service) Latest(ctx context.Context, uid string) ([]*transaction.Transaction, error) {
	txs, err := s.ledger.List(ctx, transaction.ListFilter{UserID: uid, Newest: true, Limit: latestLimit})
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	if len(txs) == 0 {
		return nil, ErrEmpty
	}

	return txs, nil
}
