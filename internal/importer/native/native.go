// Package native reads and writes saldo's own statement CSV:
//
//	date,type,category,amount
//	2024-03-01T09:00:00Z,Income,salary,2500.00
package native

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/saldo/internal/encoding"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

var Header = []string{"date", "type", "category", "amount"}

var ErrBadHeader = errors.New("expected header date,type,category,amount")

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// sniffComma picks ';' when the header line uses it, ',' otherwise.
func sniffComma(line string) rune {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}

	return ','
}

// Parse reads a statement whose rows carry their own categories, so
// categorize is unused.
func (p *Parser) Parse(r io.Reader, _ func(description string) string) ([]transaction.CreateParams, error) {
	utf8r, _, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	text := string(data)
	firstLine, _, _ := strings.Cut(text, "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffComma(firstLine)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, ErrBadHeader
	}

	cols, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	var params []transaction.CreateParams

	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		p, err := parseRow(row, cols)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+2, err)
		}

		params = append(params, p)
	}

	return params, nil
}

func headerIndex(row []string) (map[string]int, error) {
	cols := make(map[string]int, len(row))
	for i, name := range row {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, name := range Header {
		if _, ok := cols[name]; !ok {
			return nil, ErrBadHeader
		}
	}

	return cols, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseRow(row []string, cols map[string]int) (transaction.CreateParams, error) {
	var p transaction.CreateParams

	date, err := ParseDate(cell(row, cols["date"]))
	if err != nil {
		return p, err
	}

	typ, err := transaction.ParseType(cell(row, cols["type"]))
	if err != nil {
		return p, err
	}

	amount, err := transaction.ParseAmount(decimalPoint(cell(row, cols["amount"])))
	if err != nil {
		return p, err
	}

	return transaction.CreateParams{
		Type:     typ,
		Category: cell(row, cols["category"]),
		Amount:   amount,
		Date:     date,
	}, nil
}

// decimalPoint rewrites a decimal comma ("12,50") to a point.
func decimalPoint(s string) string {
	if strings.Contains(s, ".") {
		return s
	}

	return strings.Replace(s, ",", ".", 1)
}

// ParseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}

	return t, nil
}

// Writer emits statements in the layout Parser reads.
type Writer struct {
	w *csv.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

func (w *Writer) WriteHeader() error {
	return w.w.Write(Header)
}

func (w *Writer) Write(tx *transaction.Transaction) error {
	return w.w.Write([]string{
		tx.Date.UTC().Format(time.RFC3339),
		string(tx.Type),
		tx.Category,
		transaction.FormatAmount(tx.Amount),
	})
}

func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}
