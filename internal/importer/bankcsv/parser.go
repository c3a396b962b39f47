// Package bankcsv reads bank statement CSV exports into transaction params.
package bankcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/getrich/internal/encoding"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

var ErrUnknownFormat = errors.New("no matching statement format")

// separators are tried in order until a header matches a profile.
var separators = []rune{';', ','}

// Parser detects the export layout by matching column headers against the
// known profiles.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, sep := range separators {
		rows, err := readRows(content, sep)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
	}

	return nil, ErrUnknownFormat
}

func readRows(content []byte, sep rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

type colIndex map[string]int

// detectProfile returns the first profile whose columns all appear on one
// row, the column positions, and that header row's index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows skips rows without a date or amount (footers, page markers).
// headerRowNum is the 1-based line of the header, used in error messages.
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]transaction.CreateParams, error) {
	dateIdx := cols[p.DateCol]
	descIdx := cols[p.DescCol]

	txs := []transaction.CreateParams{}

	for i, row := range rows {
		rowNum := headerRowNum + i + 1

		date, ok := parseDate(p, cellValue(row, dateIdx))
		if !ok {
			continue
		}

		desc := cellValue(row, descIdx)
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := rowAmount(p, cols, row)
		if !ok {
			continue
		}

		txs = append(txs, transaction.CreateParams{
			Amount:      amount,
			Type:        txType,
			Category:    transaction.CategoryOther,
			Description: desc,
			Date:        date,
		})
	}

	return txs, nil
}

func parseDate(p *Profile, s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range p.DateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}

	return time.Time{}, false
}

func rowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, transaction.Type, bool) {
	switch p.AmountMode {
	case amountSingle:
		return signedAmount(cellValue(row, cols[p.AmountCol]), p.DecimalComma)
	case amountSplit:
		return splitAmount(cellValue(row, cols[p.DebitCol]), cellValue(row, cols[p.CreditCol]), p.DecimalComma)
	}

	return decimal.Zero, "", false
}

// signedAmount maps negative values to expenses and positive ones to income.
func signedAmount(s string, decimalComma bool) (decimal.Decimal, transaction.Type, bool) {
	if s == "" {
		return decimal.Zero, "", false
	}

	amount, err := parseAmount(s, decimalComma)
	if err != nil || amount.IsZero() {
		return decimal.Zero, "", false
	}

	if amount.IsNegative() {
		return amount.Neg(), transaction.TypeExpense, true
	}

	return amount, transaction.TypeIncome, true
}

func splitAmount(debit, credit string, decimalComma bool) (decimal.Decimal, transaction.Type, bool) {
	if debit != "" {
		amount, err := parseAmount(debit, decimalComma)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.TypeExpense, true
		}
	}

	if credit != "" {
		amount, err := parseAmount(credit, decimalComma)
		if err == nil && !amount.IsZero() {
			return amount.Abs(), transaction.TypeIncome, true
		}
	}

	return decimal.Zero, "", false
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
