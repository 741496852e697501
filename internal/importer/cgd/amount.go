package cgd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

var ErrAmountOutOfRange = errors.New("amount out of range")

var maxCents = decimal.NewFromInt(transaction.MaxCents)

// parseCents reads a Portuguese-formatted amount ("1.234,56", "-588,74") as
// signed cents. Blank or malformed cells read as zero; only a well-formed
// amount beyond what one transaction may carry is an error.
func parseCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1))
	if err != nil {
		return 0, nil
	}

	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s", ErrAmountOutOfRange, s)
	}

	return cents.IntPart(), nil
}
