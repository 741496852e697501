// Package export writes a user's ledger back out as a statement file.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/saldo/internal/importer/native"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Lister interface {
	List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type Service struct {
	ledger Lister
}

func NewService(ledger Lister) *Service {
	return &Service{ledger: ledger}
}

// Export writes the transactions matching filter to w in the native statement
// format, oldest first, and returns them.
func (s *Service) Export(ctx context.Context, w io.Writer, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	filter.Newest = false

	txs, err := s.ledger.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	cw := native.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		if err := cw.Write(tx); err != nil {
			return nil, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	if err := cw.Flush(); err != nil {
		return nil, fmt.Errorf("flushing statement: %w", err)
	}

	return txs, nil
}

// Filename names an export covering [start, end).
func Filename(start, end *time.Time) string {
	name := "saldo"

	if start != nil {
		name += "_" + start.Format("20060102")
	}

	if end != nil {
		name += "_" + end.AddDate(0, 0, -1).Format("20060102")
	}

	return name + ".csv"
}

// GenerateSummary renders one line per transaction followed by the totals.
func GenerateSummary(txs []*transaction.Transaction) string {
	var (
		sb      strings.Builder
		in, out int64
	)

	for _, tx := range txs {
		sign := "-"
		if tx.Type == transaction.TypeIncome {
			sign = "+"
			in += tx.Amount
		} else {
			out += tx.Amount
		}

		fmt.Fprintf(&sb, "* %s | %s | %s%s\n", tx.Date.Format(time.DateOnly), tx.Category, sign, transaction.FormatAmount(tx.Amount))
	}

	fmt.Fprintf(&sb, "Income: %s | Expenses: %s | Net: %s\n",
		transaction.FormatAmount(in), transaction.FormatAmount(out), transaction.FormatAmount(in-out))

	return sb.String()
}
