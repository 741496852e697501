package transaction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	BeginLedger(ctx context.Context, userID string) (LedgerTx, error)
}

// LedgerTx is a unit of work over one user's ledger. Implementations hold a
// per-user lock until Commit or Rollback, so balance changes made through it
// are serialized with every other LedgerTx for the same user.
type LedgerTx interface {
	CategoryExists(ctx context.Context, name string) (bool, error)
	// AdjustBalance atomically adds delta to the stored balance and returns the
	// new value. It returns ErrUserNotFound when the user does not exist.
	AdjustBalance(ctx context.Context, userID string, delta int64) (int64, error)
	Balance(ctx context.Context, userID string) (int64, error)
	SetBalance(ctx context.Context, userID string, balance int64) error
	LedgerSum(ctx context.Context, userID string) (int64, error)

	GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error)
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error

	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used to timestamp new transactions.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	UserID   string
	Type     Type
	Category string
	Amount   int64
	// Date is the entry's timestamp; zero means "now".
	Date time.Time
}

type ListFilter struct {
	UserID    string
	Types     []Type
	StartDate *time.Time
	// EndDate is exclusive.
	EndDate *time.Time
	Limit   int
	// Newest orders by date descending instead of ascending.
	Newest bool
}

func (p CreateParams) validate() (CreateParams, error) {
	if p.UserID == "" {
		return p, ErrMissingFields
	}

	t, err := ParseType(string(p.Type))
	if err != nil {
		return p, err
	}

	p.Type = t

	p.Category = strings.TrimSpace(p.Category)
	if p.Category == "" {
		return p, ErrMissingFields
	}

	if p.Amount <= 0 || p.Amount > MaxCents {
		return p, ErrInvalidAmount
	}

	return p, nil
}

// Create records a transaction and applies its delta to the owner's balance
// as one atomic unit. Nothing is written when any step fails.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	params, err := params.validate()
	if err != nil {
		return nil, err
	}

	txs, err := s.apply(ctx, params.UserID, []CreateParams{params})
	if err != nil {
		return nil, err
	}

	return txs[0], nil
}

// ImportBatch creates every transaction in params for userID, or none of them.
func (s *Service) ImportBatch(ctx context.Context, userID string, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	valid := make([]CreateParams, len(params))

	for i, p := range params {
		p.UserID = userID

		v, err := p.validate()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		valid[i] = v
	}

	return s.apply(ctx, userID, valid)
}

func (s *Service) apply(ctx context.Context, userID string, params []CreateParams) ([]*Transaction, error) {
	ltx, err := s.repo.BeginLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	checked := make(map[string]struct{})
	now := s.now().UTC()

	var delta int64

	txs := make([]*Transaction, len(params))

	for i, p := range params {
		if p.Type != TypeIncome {
			if _, ok := checked[p.Category]; !ok {
				exists, err := ltx.CategoryExists(ctx, p.Category)
				if err != nil {
					return nil, fmt.Errorf("check category: %w", err)
				}

				if !exists {
					return nil, fmt.Errorf("%w: %q", ErrInvalidCategory, p.Category)
				}

				checked[p.Category] = struct{}{}
			}
		}

		date := p.Date
		if date.IsZero() {
			date = now
		}

		txs[i] = &Transaction{
			ID:       uuid.New(),
			UserID:   userID,
			Type:     p.Type,
			Category: p.Category,
			Amount:   p.Amount,
			Date:     date.UTC(),
		}

		delta += txs[i].Delta()
	}

	if _, err := ltx.AdjustBalance(ctx, userID, delta); err != nil {
		return nil, fmt.Errorf("adjust balance: %w", err)
	}

	if err := ltx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger: %w", err)
	}

	return txs, nil
}

// Delete removes a transaction owned by userID and reverses its effect on the
// balance, atomically.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	ltx, err := s.repo.BeginLedger(ctx, userID)
	if err != nil {
		return fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	tx, err := ltx.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if tx.UserID != userID {
		return ErrForbidden
	}

	if err := ltx.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if _, err := ltx.AdjustBalance(ctx, userID, -tx.Delta()); err != nil {
		return fmt.Errorf("adjust balance: %w", err)
	}

	if err := ltx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}

	return nil
}

// Reconcile recomputes the balance from the user's ledger and compares it
// with the stored value.
func (s *Service) Reconcile(ctx context.Context, userID string) (*Reconciliation, error) {
	ltx, err := s.repo.BeginLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	rec, err := reconcile(ctx, ltx, userID)
	if err != nil {
		return nil, err
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger: %w", err)
	}

	return rec, nil
}

// Repair overwrites a drifted balance with the ledger sum. The returned
// reconciliation describes the state found before the repair.
func (s *Service) Repair(ctx context.Context, userID string) (*Reconciliation, error) {
	ltx, err := s.repo.BeginLedger(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("begin ledger: %w", err)
	}
	defer ltx.Rollback()

	rec, err := reconcile(ctx, ltx, userID)
	if err != nil {
		return nil, err
	}

	if rec.Drift {
		if err := ltx.SetBalance(ctx, userID, rec.Computed); err != nil {
			return nil, fmt.Errorf("set balance: %w", err)
		}
	}

	if err := ltx.Commit(); err != nil {
		return nil, fmt.Errorf("commit ledger: %w", err)
	}

	return rec, nil
}

func reconcile(ctx context.Context, ltx LedgerTx, userID string) (*Reconciliation, error) {
	stored, err := ltx.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	computed, err := ltx.LedgerSum(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("sum ledger: %w", err)
	}

	return &Reconciliation{
		UserID:   userID,
		Stored:   stored,
		Computed: computed,
		Drift:    stored != computed,
	}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, filter)
}
