package store_test

import (
	"context"
	"database/sql"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/MrJamesThe3rd/saldo/internal/database"
	"github.com/MrJamesThe3rd/saldo/internal/testutil"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
	"github.com/MrJamesThe3rd/saldo/internal/transaction/store"
)

type LedgerSuite struct {
	suite.Suite

	dialect database.Dialect
	open    func(testing.TB) *sql.DB

	ctx context.Context
	db  *sql.DB
	svc *transaction.Service
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, &LedgerSuite{dialect: database.SQLite, open: testutil.NewSQLite})
}

func TestLedgerSuitePostgres(t *testing.T) {
	suite.Run(t, &LedgerSuite{dialect: database.Postgres, open: testutil.NewPostgres})
}

func (s *LedgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = s.open(s.T())
	s.svc = transaction.NewService(store.New(s.db, s.dialect))

	s.addUser("alice")
	s.addUser("bob")
	s.addCategory("food")
	s.addCategory("rent")
}

func (s *LedgerSuite) addUser(id string) {
	_, err := s.db.ExecContext(s.ctx,
		s.dialect.Rebind(`INSERT INTO users (id, username, email, balance, created_at) VALUES ($1, $2, $3, 0, $4)`),
		id, id, id+"@example.com", time.Now().UTC(),
	)
	s.Require().NoError(err)
}

func (s *LedgerSuite) addCategory(name string) {
	_, err := s.db.ExecContext(s.ctx,
		s.dialect.Rebind(`INSERT INTO categories (name, is_default, created_at) VALUES ($1, FALSE, $2)`),
		name, time.Now().UTC(),
	)
	s.Require().NoError(err)
}

func (s *LedgerSuite) balance(userID string) int64 {
	var b int64
	s.Require().NoError(s.db.QueryRowContext(s.ctx, s.dialect.Rebind(`SELECT balance FROM users WHERE id = $1`), userID).Scan(&b))

	return b
}

func (s *LedgerSuite) count(userID string) int {
	var n int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, s.dialect.Rebind(`SELECT COUNT(*) FROM transactions WHERE user_id = $1`), userID).Scan(&n))

	return n
}

func (s *LedgerSuite) create(userID string, typ transaction.Type, category string, amount int64) *transaction.Transaction {
	tx, err := s.svc.Create(s.ctx, transaction.CreateParams{
		UserID:   userID,
		Type:     typ,
		Category: category,
		Amount:   amount,
	})
	s.Require().NoError(err)

	return tx
}

func (s *LedgerSuite) TestCreateUpdatesBalance() {
	s.create("alice", transaction.TypeIncome, "salary", 10000)
	s.create("alice", transaction.TypeExpense, "food", 3000)

	s.Equal(int64(7000), s.balance("alice"))
	s.Equal(2, s.count("alice"))
}

func (s *LedgerSuite) TestCreateThenDeleteRestoresBalance() {
	s.create("alice", transaction.TypeIncome, "salary", 5000)
	before := s.balance("alice")

	tx := s.create("alice", transaction.TypeExpense, "rent", 1250)
	s.Equal(before-1250, s.balance("alice"))

	s.Require().NoError(s.svc.Delete(s.ctx, "alice", tx.ID))
	s.Equal(before, s.balance("alice"))
	s.Equal(1, s.count("alice"))
}

func (s *LedgerSuite) TestUnknownCategoryLeavesNoTrace() {
	_, err := s.svc.Create(s.ctx, transaction.CreateParams{
		UserID: "alice", Type: transaction.TypeExpense, Category: "yachts", Amount: 100,
	})
	s.ErrorIs(err, transaction.ErrInvalidCategory)

	s.Equal(int64(0), s.balance("alice"))
	s.Equal(0, s.count("alice"))
}

func (s *LedgerSuite) TestUnknownUserLeavesNoTrace() {
	_, err := s.svc.Create(s.ctx, transaction.CreateParams{
		UserID: "mallory", Type: transaction.TypeIncome, Category: "gift", Amount: 100,
	})
	s.ErrorIs(err, transaction.ErrUserNotFound)
	s.Equal(0, s.count("mallory"))
}

func (s *LedgerSuite) TestDeleteOtherUsersTransaction() {
	tx := s.create("alice", transaction.TypeExpense, "food", 400)

	err := s.svc.Delete(s.ctx, "bob", tx.ID)
	s.ErrorIs(err, transaction.ErrForbidden)

	s.Equal(int64(-400), s.balance("alice"))
	s.Equal(int64(0), s.balance("bob"))
	s.Equal(1, s.count("alice"))
}

func (s *LedgerSuite) TestDeleteMissingTransaction() {
	err := s.svc.Delete(s.ctx, "alice", uuid.New())
	s.ErrorIs(err, transaction.ErrNotFound)
}

func (s *LedgerSuite) TestReconcileAfterMixedOperations() {
	s.create("alice", transaction.TypeIncome, "salary", 250000)
	s.create("alice", transaction.TypeExpense, "rent", 90000)
	tx := s.create("alice", transaction.TypeExpense, "food", 4550)
	s.create("bob", transaction.TypeIncome, "gift", 100)
	s.Require().NoError(s.svc.Delete(s.ctx, "alice", tx.ID))

	rec, err := s.svc.Reconcile(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(rec.Drift)
	s.Equal(int64(160000), rec.Stored)
	s.Equal(rec.Stored, rec.Computed)
}

func (s *LedgerSuite) TestRepairFixesDrift() {
	s.create("alice", transaction.TypeIncome, "salary", 1000)

	_, err := s.db.ExecContext(s.ctx, s.dialect.Rebind(`UPDATE users SET balance = 42 WHERE id = $1`), "alice")
	s.Require().NoError(err)

	rec, err := s.svc.Reconcile(s.ctx, "alice")
	s.Require().NoError(err)
	s.True(rec.Drift)
	s.Equal(int64(42), rec.Stored)
	s.Equal(int64(1000), rec.Computed)

	_, err = s.svc.Repair(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(int64(1000), s.balance("alice"))
}

func (s *LedgerSuite) TestImportBatchIsAllOrNothing() {
	_, err := s.svc.ImportBatch(s.ctx, "alice", []transaction.CreateParams{
		{Type: transaction.TypeIncome, Category: "salary", Amount: 1000},
		{Type: transaction.TypeExpense, Category: "yachts", Amount: 10},
	})
	s.ErrorIs(err, transaction.ErrInvalidCategory)
	s.Equal(0, s.count("alice"))
	s.Equal(int64(0), s.balance("alice"))

	txs, err := s.svc.ImportBatch(s.ctx, "alice", []transaction.CreateParams{
		{Type: transaction.TypeIncome, Category: "salary", Amount: 1000},
		{Type: transaction.TypeExpense, Category: "food", Amount: 10},
	})
	s.Require().NoError(err)
	s.Len(txs, 2)
	s.Equal(int64(990), s.balance("alice"))
}

func (s *LedgerSuite) TestImportBatchRejectsOutOfRangeAmount() {
	s.create("alice", transaction.TypeIncome, "salary", 500)

	_, err := s.svc.ImportBatch(s.ctx, "alice", []transaction.CreateParams{
		{Type: transaction.TypeIncome, Category: "salary", Amount: 1000},
		{Type: transaction.TypeIncome, Category: "salary", Amount: math.MaxInt64 - 10},
	})
	s.ErrorIs(err, transaction.ErrInvalidAmount)
	s.Equal(1, s.count("alice"))
	s.Equal(int64(500), s.balance("alice"))

	// the ledger keeps accepting entries afterwards
	s.create("alice", transaction.TypeIncome, "salary", 100)
	s.Equal(int64(600), s.balance("alice"))

	_, err = s.svc.ImportBatch(s.ctx, "alice", []transaction.CreateParams{
		{Type: transaction.TypeIncome, Category: "salary", Amount: transaction.MaxCents},
	})
	s.Require().NoError(err)
	s.Equal(600+transaction.MaxCents, s.balance("alice"))
}

func (s *LedgerSuite) TestListFilters() {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 9, 0, 0, 0, time.UTC) }

	for i, p := range []transaction.CreateParams{
		{Type: transaction.TypeIncome, Category: "salary", Amount: 100, Date: day(1)},
		{Type: transaction.TypeExpense, Category: "food", Amount: 200, Date: day(5)},
		{Type: transaction.TypeExpense, Category: "rent", Amount: 300, Date: day(20)},
	} {
		p.UserID = "alice"
		_, err := s.svc.Create(s.ctx, p)
		s.Require().NoError(err, "row %d", i)
	}

	start, end := day(2), day(20)

	txs, err := s.svc.List(s.ctx, transaction.ListFilter{
		UserID:    "alice",
		Types:     []transaction.Type{transaction.TypeExpense},
		StartDate: &start,
		EndDate:   &end,
	})
	s.Require().NoError(err)
	s.Require().Len(txs, 1)
	s.Equal("food", txs[0].Category)
	s.Equal(day(5), txs[0].Date)

	latest, err := s.svc.List(s.ctx, transaction.ListFilter{UserID: "alice", Newest: true, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(latest, 2)
	s.Equal("rent", latest[0].Category)
	s.Equal("food", latest[1].Category)

	got, err := s.svc.Get(s.ctx, latest[0].ID)
	s.Require().NoError(err)
	s.Equal(int64(300), got.Amount)
	s.Equal(transaction.TypeExpense, got.Type)
}

func (s *LedgerSuite) TestConcurrentCreatesKeepBalanceConsistent() {
	const workers = 8
	const perWorker = 10

	var wg sync.WaitGroup

	errs := make(chan error, workers*perWorker)

	for w := range workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range perWorker {
				typ, cat := transaction.TypeIncome, "salary"
				if w%2 == 1 {
					typ, cat = transaction.TypeExpense, "food"
				}

				_, err := s.svc.Create(s.ctx, transaction.CreateParams{
					UserID: "alice", Type: typ, Category: cat, Amount: 100,
				})
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		s.Require().NoError(err)
	}

	s.Equal(workers*perWorker, s.count("alice"))
	s.Equal(int64(0), s.balance("alice"))

	rec, err := s.svc.Reconcile(s.ctx, "alice")
	s.Require().NoError(err)
	s.False(rec.Drift)
}
