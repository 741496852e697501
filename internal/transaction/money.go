package transaction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds a single entry so balances stay far from int64 overflow.
const MaxCents int64 = 1e15 - 1

var maxCents = decimal.NewFromInt(MaxCents)

var hundred = decimal.NewFromInt(100)

// ParseAmount parses a decimal amount ("12.5", "100") into cents, rounding
// half away from zero. Zero, negative and absurdly large values are rejected.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := d.Mul(hundred).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return 0, ErrInvalidAmount
	}

	return cents.IntPart(), nil
}

// Major converts cents into major currency units for presentation.
func Major(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}

// FormatAmount renders cents as a fixed two-decimal string ("70.50").
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
