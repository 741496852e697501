package transaction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "30", want: 3000},
		{in: "12.5", want: 1250},
		{in: "0.01", want: 1},
		{in: "19.999", want: 2000},
		{in: " 7 ", want: 700},
		{in: "0", wantErr: true},
		{in: "-10", wantErr: true},
		{in: "0.004", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "1e20", wantErr: true},
		{in: "9999999999999.99", want: transaction.MaxCents},
		{in: "10000000000000", wantErr: true},
		{in: "99999999999999999999999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := transaction.ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "70.50", transaction.FormatAmount(7050))
	assert.Equal(t, "-0.05", transaction.FormatAmount(-5))
	assert.Equal(t, 70.5, transaction.Major(7050))
	assert.Equal(t, float64(100), transaction.Major(10000))
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in      string
		want    transaction.Type
		wantErr bool
	}{
		{in: "Income", want: transaction.TypeIncome},
		{in: "income", want: transaction.TypeIncome},
		{in: "Expense", want: transaction.TypeExpense},
		{in: "Outcome", want: transaction.TypeExpense},
		{in: "OUTCOME", want: transaction.TypeExpense},
		{in: "All", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := transaction.ParseType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, transaction.ErrInvalidType)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestType_Delta(t *testing.T) {
	assert.Equal(t, int64(100), transaction.TypeIncome.Delta(100))
	assert.Equal(t, int64(-100), transaction.TypeExpense.Delta(100))
}
