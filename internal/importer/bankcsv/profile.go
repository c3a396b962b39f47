package bankcsv

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSingle is one signed column ("-10.00").
	amountSingle amountMode = iota
	// amountSplit is a pair of unsigned debit and credit columns.
	amountSplit
)

// Profile describes the column layout of a bank CSV export.
type Profile struct {
	Name       string
	DateCol    string
	DescCol    string
	AmountMode amountMode
	AmountCol  string // amountSingle only
	DebitCol   string // amountSplit only
	CreditCol  string // amountSplit only

	// DecimalComma is set for exports written as "1.234,56".
	DecimalComma bool
	DateLayouts  []string
}

func (p Profile) requiredCols() []string {
	cols := []string{p.DateCol, p.DescCol}

	switch p.AmountMode {
	case amountSingle:
		cols = append(cols, p.AmountCol)
	case amountSplit:
		cols = append(cols, p.DebitCol, p.CreditCol)
	}

	return cols
}

var (
	isoLayouts      = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}
	europeanLayouts = []string{"02-01-2006", "02/01/2006"}
)

// profiles are tried in order; the more specific ones come first.
var profiles = []Profile{
	{
		Name:        "debit-credit",
		DateCol:     "Date",
		DescCol:     "Description",
		AmountMode:  amountSplit,
		DebitCol:    "Debit",
		CreditCol:   "Credit",
		DateLayouts: isoLayouts,
	},
	{
		Name:        "statement",
		DateCol:     "Date",
		DescCol:     "Description",
		AmountMode:  amountSingle,
		AmountCol:   "Amount",
		DateLayouts: isoLayouts,
	},
	{
		Name:        "mobile-money",
		DateCol:     "Transaction Date",
		DescCol:     "Details",
		AmountMode:  amountSplit,
		DebitCol:    "Paid Out",
		CreditCol:   "Paid In",
		DateLayouts: append([]string{"2006-01-02 15:04:05"}, isoLayouts...),
	},
	{
		Name:         "card",
		DateCol:      "Data",
		DescCol:      "Descrição",
		AmountMode:   amountSplit,
		DebitCol:     "Débito",
		CreditCol:    "Crédito",
		DecimalComma: true,
		DateLayouts:  europeanLayouts,
	},
	{
		Name:         "extract",
		DateCol:      "Data mov.",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Movimento",
		DecimalComma: true,
		DateLayouts:  europeanLayouts,
	},
	{
		Name:         "account",
		DateCol:      "Data mov.",
		DescCol:      "Descrição",
		AmountMode:   amountSingle,
		AmountCol:    "Montante",
		DecimalComma: true,
		DateLayouts:  europeanLayouts,
	},
}
