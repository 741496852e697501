// Package cgd parses the CSV statements exported by Caixa Geral de Depósitos.
package cgd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/saldo/internal/encoding"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

const dateLayout = "02-01-2006"

var ErrNoLayout = errors.New("no CGD layout found: expected conta, extrato or cartão columns")

// Parser finds the header row of a CGD export, whatever preamble precedes it,
// and turns each movement into a transaction. A row takes the category
// categorize picks for its description; failing that, income rows are
// categorized by the description itself and expenses get the default.
type Parser struct {
	defaultCategory string
}

func NewParser(defaultCategory string) *Parser {
	return &Parser{defaultCategory: defaultCategory}
}

func (p *Parser) Parse(r io.Reader, categorize func(description string) string) ([]transaction.CreateParams, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, cols, header := findLayout(rows)
	if l == nil {
		return nil, ErrNoLayout
	}

	slog.Debug("parsing cgd statement", "layout", l.name, "charset", charset, "rows", len(rows)-header-1)

	var params []transaction.CreateParams

	for i, row := range rows[header+1:] {
		date, err := time.Parse(dateLayout, cols.get(row, l.date))
		if err != nil {
			// footers, page markers and blank lines carry no date
			continue
		}

		desc := cols.get(row, l.desc)
		if desc == "" {
			return nil, fmt.Errorf("line %d: missing description", header+i+2)
		}

		amount, typ, err := movement(l, cols, row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", header+i+2, err)
		}

		if amount == 0 {
			continue
		}

		category := p.defaultCategory
		if typ == transaction.TypeIncome {
			category = desc
		}

		if categorize != nil {
			if c := categorize(desc); c != "" {
				category = c
			}
		}

		params = append(params, transaction.CreateParams{
			Type:     typ,
			Category: category,
			Amount:   amount,
			Date:     date,
		})
	}

	return params, nil
}

type columns map[string]int

func (c columns) get(row []string, name string) string {
	idx, ok := c[name]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func findLayout(rows [][]string) (*layout, columns, int) {
	for n, row := range rows {
		cols := make(columns, len(row))

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

	next:
		for i := range layouts {
			for _, name := range layouts[i].columns() {
				if _, ok := cols[name]; !ok {
					continue next
				}
			}

			return &layouts[i], cols, n
		}
	}

	return nil, nil, 0
}

// movement returns the magnitude and direction of a row's amount. A zero
// magnitude means the row carries no movement.
func movement(l *layout, cols columns, row []string) (int64, transaction.Type, error) {
	if l.signed != "" {
		cents, err := parseCents(cols.get(row, l.signed))
		if err != nil {
			return 0, "", err
		}

		if cents < 0 {
			return -cents, transaction.TypeExpense, nil
		}

		return cents, transaction.TypeIncome, nil
	}

	debit, err := parseCents(cols.get(row, l.debit))
	if err != nil {
		return 0, "", err
	}

	if debit != 0 {
		return abs(debit), transaction.TypeExpense, nil
	}

	credit, err := parseCents(cols.get(row, l.credit))
	if err != nil {
		return 0, "", err
	}

	return abs(credit), transaction.TypeIncome, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
