package transaction_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

const userID = "user-1"

var (
	fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	errDisk  = errors.New("disk full")
)

func newService(repo transaction.Repository) *transaction.Service {
	return transaction.NewService(repo, transaction.WithClock(func() time.Time { return fixedNow }))
}

func TestService_Create(t *testing.T) {
	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "IncomeSkipsCategoryCheck",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Income", Category: "salary", Amount: 10000,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(10000)).Return(int64(10000), nil)
				ltx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "ExpenseDecreasesBalance",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Expense", Category: "food", Amount: 3000,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().CategoryExists(gomock.Any(), "food").Return(true, nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(-3000)).Return(int64(7000), nil)
				ltx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "OutcomeAlias",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Outcome", Category: "food", Amount: 500,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().CategoryExists(gomock.Any(), "food").Return(true, nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(-500)).Return(int64(-500), nil)
				ltx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "UnknownCategoryWritesNothing",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Expense", Category: "yachts", Amount: 100,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().CategoryExists(gomock.Any(), "yachts").Return(false, nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantErr: transaction.ErrInvalidCategory,
		},
		{
			name: "UserNotFound",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Income", Category: "gift", Amount: 100,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(100)).Return(int64(0), transaction.ErrUserNotFound)
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantErr: transaction.ErrUserNotFound,
		},
		{
			name: "InsertFailureRollsBack",
			args: args{params: transaction.CreateParams{
				UserID: userID, Type: "Income", Category: "gift", Amount: 100,
			}},
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(100)).Return(int64(100), nil)
				ltx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(errDisk)
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantErr: errDisk,
		},
		{
			name:    "InvalidType",
			args:    args{params: transaction.CreateParams{UserID: userID, Type: "Gift", Category: "x", Amount: 1}},
			wantErr: transaction.ErrInvalidType,
		},
		{
			name:    "MissingCategory",
			args:    args{params: transaction.CreateParams{UserID: userID, Type: "Income", Category: "  ", Amount: 1}},
			wantErr: transaction.ErrMissingFields,
		},
		{
			name:    "NonPositiveAmount",
			args:    args{params: transaction.CreateParams{UserID: userID, Type: "Income", Category: "x", Amount: 0}},
			wantErr: transaction.ErrInvalidAmount,
		},
		{
			name:    "AmountAboveMax",
			args:    args{params: transaction.CreateParams{UserID: userID, Type: "Income", Category: "x", Amount: transaction.MaxCents + 1}},
			wantErr: transaction.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			ltx := transaction.NewMockLedgerTx(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, ltx)
			}

			svc := newService(repo)
			got, err := svc.Create(context.Background(), tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, userID, got.UserID)
			assert.Equal(t, fixedNow, got.Date)
			assert.Positive(t, got.Amount)
		})
	}
}

func TestService_Create_NormalizesType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	ltx := transaction.NewMockLedgerTx(ctrl)

	repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
	ltx.EXPECT().CategoryExists(gomock.Any(), "food").Return(true, nil)
	ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(-250)).Return(int64(-250), nil)
	ltx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 1)
			assert.Equal(t, transaction.TypeExpense, txs[0].Type)
			assert.Equal(t, "food", txs[0].Category)
			assert.Equal(t, int64(250), txs[0].Amount)

			return nil
		})
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	got, err := newService(repo).Create(context.Background(), transaction.CreateParams{
		UserID: userID, Type: "outcome", Category: " food ", Amount: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, transaction.TypeExpense, got.Type)
}

func TestService_Delete(t *testing.T) {
	txID := uuid.New()

	type testCase struct {
		name      string
		setupMock func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "ExpenseRestoresBalance",
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().GetTransaction(gomock.Any(), txID).Return(&transaction.Transaction{
					ID: txID, UserID: userID, Type: transaction.TypeExpense, Category: "food", Amount: 3000,
				}, nil)
				ltx.EXPECT().DeleteTransaction(gomock.Any(), txID).Return(nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(3000)).Return(int64(10000), nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "IncomeReducesBalance",
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().GetTransaction(gomock.Any(), txID).Return(&transaction.Transaction{
					ID: txID, UserID: userID, Type: transaction.TypeIncome, Category: "salary", Amount: 10000,
				}, nil)
				ltx.EXPECT().DeleteTransaction(gomock.Any(), txID).Return(nil)
				ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(-10000)).Return(int64(0), nil)
				ltx.EXPECT().Commit().Return(nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
		},
		{
			name: "NotFound",
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().GetTransaction(gomock.Any(), txID).Return(nil, transaction.ErrNotFound)
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantErr: transaction.ErrNotFound,
		},
		{
			name: "ForbiddenLeavesBalancesAlone",
			setupMock: func(repo *transaction.MockRepository, ltx *transaction.MockLedgerTx) {
				repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
				ltx.EXPECT().GetTransaction(gomock.Any(), txID).Return(&transaction.Transaction{
					ID: txID, UserID: "someone-else", Type: transaction.TypeIncome, Amount: 100,
				}, nil)
				ltx.EXPECT().Rollback().Return(nil)
			},
			wantErr: transaction.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			ltx := transaction.NewMockLedgerTx(ctrl)
			tt.setupMock(repo, ltx)

			err := newService(repo).Delete(context.Background(), userID, txID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestService_Reconcile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	ltx := transaction.NewMockLedgerTx(ctrl)

	repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
	ltx.EXPECT().Balance(gomock.Any(), userID).Return(int64(7000), nil)
	ltx.EXPECT().LedgerSum(gomock.Any(), userID).Return(int64(7000), nil)
	ltx.EXPECT().Commit().Return(nil)
	ltx.EXPECT().Rollback().Return(nil)

	rec, err := newService(repo).Reconcile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, &transaction.Reconciliation{UserID: userID, Stored: 7000, Computed: 7000}, rec)
}

func TestService_Repair(t *testing.T) {
	t.Run("Drift", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		ltx := transaction.NewMockLedgerTx(ctrl)

		repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
		ltx.EXPECT().Balance(gomock.Any(), userID).Return(int64(13000), nil)
		ltx.EXPECT().LedgerSum(gomock.Any(), userID).Return(int64(10000), nil)
		ltx.EXPECT().SetBalance(gomock.Any(), userID, int64(10000)).Return(nil)
		ltx.EXPECT().Commit().Return(nil)
		ltx.EXPECT().Rollback().Return(nil)

		rec, err := newService(repo).Repair(context.Background(), userID)
		require.NoError(t, err)
		assert.True(t, rec.Drift)
		assert.Equal(t, int64(13000), rec.Stored)
		assert.Equal(t, int64(10000), rec.Computed)
	})

	t.Run("Consistent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		ltx := transaction.NewMockLedgerTx(ctrl)

		repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
		ltx.EXPECT().Balance(gomock.Any(), userID).Return(int64(500), nil)
		ltx.EXPECT().LedgerSum(gomock.Any(), userID).Return(int64(500), nil)
		ltx.EXPECT().Commit().Return(nil)
		ltx.EXPECT().Rollback().Return(nil)

		rec, err := newService(repo).Repair(context.Background(), userID)
		require.NoError(t, err)
		assert.False(t, rec.Drift)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		ltx := transaction.NewMockLedgerTx(ctrl)

		repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
		ltx.EXPECT().Balance(gomock.Any(), userID).Return(int64(0), transaction.ErrUserNotFound)
		ltx.EXPECT().Rollback().Return(nil)

		_, err := newService(repo).Repair(context.Background(), userID)
		assert.ErrorIs(t, err, transaction.ErrUserNotFound)
	})
}

func TestService_ImportBatch(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	t.Run("NetDeltaAppliedOnce", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		ltx := transaction.NewMockLedgerTx(ctrl)

		params := []transaction.CreateParams{
			{Type: transaction.TypeIncome, Category: "salary", Amount: 200000, Date: date},
			{Type: transaction.TypeExpense, Category: "food", Amount: 1250, Date: date},
			{Type: transaction.TypeExpense, Category: "food", Amount: 750, Date: date},
		}

		repo.EXPECT().BeginLedger(gomock.Any(), userID).Return(ltx, nil)
		ltx.EXPECT().CategoryExists(gomock.Any(), "food").Return(true, nil).Times(1)
		ltx.EXPECT().AdjustBalance(gomock.Any(), userID, int64(198000)).Return(int64(198000), nil)
		ltx.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(3)).Return(nil)
		ltx.EXPECT().Commit().Return(nil)
		ltx.EXPECT().Rollback().Return(nil)

		txs, err := newService(repo).ImportBatch(context.Background(), userID, params)
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.Equal(t, date, txs[0].Date)
		assert.Equal(t, userID, txs[2].UserID)
	})

	t.Run("InvalidRowRejectsBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)

		_, err := newService(repo).ImportBatch(context.Background(), userID, []transaction.CreateParams{
			{Type: transaction.TypeIncome, Category: "salary", Amount: 100},
			{Type: transaction.TypeExpense, Category: "food", Amount: -5},
		})
		assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
		assert.Contains(t, err.Error(), "row 2")
	})

	t.Run("OversizedRowRejectsBatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)

		_, err := newService(repo).ImportBatch(context.Background(), userID, []transaction.CreateParams{
			{Type: transaction.TypeIncome, Category: "salary", Amount: math.MaxInt64 - 10},
		})
		assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		txs, err := newService(transaction.NewMockRepository(ctrl)).ImportBatch(context.Background(), userID, nil)
		require.NoError(t, err)
		assert.Empty(t, txs)
	})
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	filter := transaction.ListFilter{UserID: userID, Limit: 5, Newest: true}

	repo.EXPECT().
		ListTransactions(gomock.Any(), filter).
		Return([]*transaction.Transaction{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := newService(repo).List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
