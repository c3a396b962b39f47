// Package export builds the tax report for a period: every invoice and
// ledger entry dated inside it plus the VAT and earnings totals.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

var ErrInvalidPeriod = errors.New("period start is after its end")

type InvoiceLister interface {
	List(ctx context.Context) []*invoice.Invoice
}

type TransactionLister interface {
	ListRange(ctx context.Context, filter transaction.ListFilter) []*transaction.Transaction
}

// Period bounds are inclusive dates. A nil bound is open.
type Period struct {
	Start *time.Time
	End   *time.Time
}

func (p Period) contains(t time.Time) bool {
	d := t.Format(time.DateOnly)

	if p.Start != nil && d < p.Start.Format(time.DateOnly) {
		return false
	}

	if p.End != nil && d > p.End.Format(time.DateOnly) {
		return false
	}

	return true
}

type Totals struct {
	Revenue   decimal.Decimal
	VAT       decimal.Decimal
	Earnings  decimal.Decimal
	Unpaid    decimal.Decimal
	Income    decimal.Decimal
	Expenses  decimal.Decimal
	NetProfit decimal.Decimal
}

type Report struct {
	Period       Period
	Currency     string
	Invoices     []*invoice.Invoice
	Transactions []*transaction.Transaction
	Totals       Totals
}

type Service struct {
	invoices     InvoiceLister
	transactions TransactionLister
	currency     string
}

func NewService(invoices InvoiceLister, transactions TransactionLister, currency string) *Service {
	return &Service{invoices: invoices, transactions: transactions, currency: currency}
}

// Export collects the records dated inside period. Revenue, VAT and earnings
// count paid invoices only.
func (s *Service) Export(ctx context.Context, period Period) (*Report, error) {
	if period.Start != nil && period.End != nil && period.Start.After(*period.End) {
		return nil, ErrInvalidPeriod
	}

	r := &Report{
		Period:       period,
		Currency:     s.currency,
		Invoices:     []*invoice.Invoice{},
		Transactions: s.transactions.ListRange(ctx, transaction.ListFilter{StartDate: period.Start, EndDate: period.End}),
	}

	for _, inv := range s.invoices.List(ctx) {
		if !period.contains(inv.Date) {
			continue
		}

		r.Invoices = append(r.Invoices, inv)

		switch inv.Status {
		case invoice.StatusPaid:
			r.Totals.Revenue = r.Totals.Revenue.Add(inv.Amount)
			r.Totals.VAT = r.Totals.VAT.Add(inv.VATAmount)
			r.Totals.Earnings = r.Totals.Earnings.Add(inv.Earning)
		case invoice.StatusUnpaid:
			r.Totals.Unpaid = r.Totals.Unpaid.Add(inv.Amount)
		}
	}

	for _, tx := range r.Transactions {
		switch tx.Type {
		case transaction.TypeIncome:
			r.Totals.Income = r.Totals.Income.Add(tx.Amount)
		case transaction.TypeExpense:
			r.Totals.Expenses = r.Totals.Expenses.Add(tx.Amount)
		}
	}

	r.Totals.NetProfit = r.Totals.Revenue.Add(r.Totals.Income).Sub(r.Totals.Expenses)

	return r, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}

	return t.Format(time.DateOnly)
}

// WriteInvoicesCSV writes one row per invoice.
func WriteInvoicesCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"invoice_number", "client", "date", "amount", "vat", "earning", "status", "payment_date", "notes"}}
	for _, inv := range r.Invoices {
		rows = append(rows, []string{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.Date.Format(time.DateOnly),
			inv.Amount.StringFixed(2),
			inv.VATAmount.StringFixed(2),
			inv.Earning.StringFixed(2),
			string(inv.Status),
			formatDate(inv.PaymentDate),
			inv.Notes,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing invoices csv: %w", err)
	}

	return nil
}

// WriteTransactionsCSV writes one row per ledger entry.
func WriteTransactionsCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"date", "type", "category", "amount", "description"}}
	for _, tx := range r.Transactions {
		rows = append(rows, []string{
			tx.Date.Format(time.DateOnly),
			string(tx.Type),
			tx.Category,
			tx.Amount.StringFixed(2),
			tx.Description,
		})
	}

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("writing transactions csv: %w", err)
	}

	return nil
}

// Summary renders the totals as plain text for the accountant.
func Summary(r *Report) string {
	p := message.NewPrinter(language.English)

	money := func(d decimal.Decimal) string {
		return p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2))) + " " + r.Currency
	}

	from, to := formatDate(r.Period.Start), formatDate(r.Period.End)
	if from == "" {
		from = "beginning"
	}

	if to == "" {
		to = "today"
	}

	var sb strings.Builder

	sb.WriteString(p.Sprintf("Tax report %s to %s\n", from, to))
	sb.WriteString(p.Sprintf("Invoices: %d, ledger entries: %d\n", len(r.Invoices), len(r.Transactions)))
	sb.WriteString(p.Sprintf("Revenue (paid): %s\n", money(r.Totals.Revenue)))
	sb.WriteString(p.Sprintf("VAT collected: %s\n", money(r.Totals.VAT)))
	sb.WriteString(p.Sprintf("Earnings: %s\n", money(r.Totals.Earnings)))
	sb.WriteString(p.Sprintf("Unpaid: %s\n", money(r.Totals.Unpaid)))
	sb.WriteString(p.Sprintf("Other income: %s\n", money(r.Totals.Income)))
	sb.WriteString(p.Sprintf("Expenses: %s\n", money(r.Totals.Expenses)))
	sb.WriteString(p.Sprintf("Net profit: %s\n", money(r.Totals.NetProfit)))

	return sb.String()
}

// WriteArchive writes a zip holding both CSV files and the summary.
func WriteArchive(w io.Writer, r *Report) error {
	zw := zip.NewWriter(w)

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{"invoices.csv", func(w io.Writer) error { return WriteInvoicesCSV(w, r) }},
		{"transactions.csv", func(w io.Writer) error { return WriteTransactionsCSV(w, r) }},
		{"summary.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, Summary(r))
			return err
		}},
	}

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.name, err)
		}

		if err := f.write(fw); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}

	return nil
}
