package cgd

// layout describes one of the CSV exports the CGD homebank produces. A layout
// either has a single signed amount column or a debit/credit pair.
type layout struct {
	name   string
	date   string
	desc   string
	signed string
	debit  string
	credit string
}

func (l layout) columns() []string {
	if l.signed != "" {
		return []string{l.date, l.desc, l.signed}
	}

	return []string{l.date, l.desc, l.debit, l.credit}
}

// layouts are tried in order; the card layout shares "Descrição" with the
// others, so it must come first.
var layouts = []layout{
	{name: "cartão", date: "Data", desc: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", desc: "Descrição", signed: "Movimento"},
	{name: "conta", date: "Data mov.", desc: "Descrição", signed: "Montante"},
}
