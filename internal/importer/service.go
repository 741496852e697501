package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/saldo/internal/importer/cgd"
	"github.com/MrJamesThe3rd/saldo/internal/importer/native"
	"github.com/MrJamesThe3rd/saldo/internal/transaction"
)

type Service struct {
	parsers map[Format]Parser
}

// NewService builds the importer. defaultCategory is assigned to bank
// expenses, which carry no category of their own.
func NewService(defaultCategory string) *Service {
	return &Service{
		parsers: map[Format]Parser{
			FormatSaldo: native.NewParser(),
			FormatCGD:   cgd.NewParser(defaultCategory),
		},
	}
}

// Import parses a statement. categorize may be nil.
func (s *Service) Import(format Format, r io.Reader, categorize Categorize) ([]transaction.CreateParams, error) {
	p, ok := s.parsers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	return p.Parse(r, categorize)
}
