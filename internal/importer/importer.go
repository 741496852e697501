// Package importer turns bank statement files into transactions ready for
// transaction.Service.ImportBatch.
package importer

import (
	"errors"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Format string

const (
	// FormatSaldo is the CSV layout written by the export endpoint.
	FormatSaldo Format = "saldo"
	// FormatCGD covers the CSV exports of Caixa Geral de Depósitos.
	FormatCGD Format = "cgd"
)

var ErrUnknownFormat = errors.New("unknown statement format")

// Categorize maps a statement description onto a category; "" keeps the
// parser's own choice.
type Categorize func(description string) string

type Parser interface {
	Parse(r io.Reader, categorize func(description string) string) ([]transaction.CreateParams, error)
}

// ParseFormat accepts a format name case-insensitively; empty means FormatSaldo.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSaldo, nil
	case FormatSaldo, FormatCGD:
		return f, nil
	}

	return "", ErrUnknownFormat
}
