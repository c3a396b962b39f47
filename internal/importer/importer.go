// Package importer turns uploaded statements into transactions ready for review.
package importer

import (
	"context"
	"io"

	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type Source string

const (
	SourceBankCSV Source = "bank-csv"
)

type Importer interface {
	Parse(r io.Reader) ([]transaction.CreateParams, error)
}

// Categorizer assigns learned categories to parsed entries.
type Categorizer interface {
	Categorize(ctx context.Context, params []transaction.CreateParams) []transaction.CreateParams
}
