package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/export"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type invoiceList []*invoice.Invoice

func (l invoiceList) List(context.Context) []*invoice.Invoice { return l }

type txLister struct {
	got transaction.ListFilter
	txs []*transaction.Transaction
}

func (l *txLister) ListRange(_ context.Context, f transaction.ListFilter) []*transaction.Transaction {
	l.got = f
	return l.txs
}

func day(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var invoices = invoiceList{
	{InvoiceNumber: "INV-1", ClientName: "Kigali Motors", Date: day(2026, 2, 28), Amount: dec("1000"), VATAmount: dec("180"), Earning: dec("210"), Status: invoice.StatusPaid},
	{InvoiceNumber: "INV-2", ClientName: "Musanze Auto", Date: day(2026, 3, 10), Amount: dec("1000"), VATAmount: dec("180"), Earning: dec("210"), Status: invoice.StatusPaid},
	{InvoiceNumber: "INV-3", ClientName: "Huye Cars", Date: day(2026, 3, 31), Amount: dec("500"), VATAmount: dec("90"), Earning: dec("105"), Status: invoice.StatusUnpaid},
}

func TestService_Export(t *testing.T) {
	txs := &txLister{txs: []*transaction.Transaction{
		{Type: transaction.TypeExpense, Category: "Marketing", Amount: dec("300"), Date: day(2026, 3, 5), Description: "Ads"},
		{Type: transaction.TypeIncome, Category: "Consulting", Amount: dec("100"), Date: day(2026, 3, 6), Description: "Advice"},
	}}

	svc := export.NewService(invoices, txs, "RWF")

	start, end := day(2026, 3, 1), day(2026, 3, 31)

	r, err := svc.Export(context.Background(), export.Period{Start: &start, End: &end})
	require.NoError(t, err)

	assert.Equal(t, &start, txs.got.StartDate)
	assert.Equal(t, &end, txs.got.EndDate)

	require.Len(t, r.Invoices, 2)
	assert.Equal(t, "INV-2", r.Invoices[0].InvoiceNumber)
	assert.True(t, dec("1000").Equal(r.Totals.Revenue))
	assert.True(t, dec("180").Equal(r.Totals.VAT))
	assert.True(t, dec("210").Equal(r.Totals.Earnings))
	assert.True(t, dec("500").Equal(r.Totals.Unpaid))
	assert.True(t, dec("300").Equal(r.Totals.Expenses))
	assert.True(t, dec("800").Equal(r.Totals.NetProfit))

	summary := export.Summary(r)
	assert.Contains(t, summary, "Tax report 2026-03-01 to 2026-03-31")
	assert.Contains(t, summary, "VAT collected: 180.00 RWF")
	assert.Contains(t, summary, "Revenue (paid): 1,000.00 RWF")
}

func TestService_Export_OpenPeriod(t *testing.T) {
	r, err := export.NewService(invoices, &txLister{}, "RWF").Export(context.Background(), export.Period{})
	require.NoError(t, err)

	assert.Len(t, r.Invoices, 3)
	assert.True(t, dec("2000").Equal(r.Totals.Revenue))
	assert.Contains(t, export.Summary(r), "Tax report beginning to today")
}

func TestService_Export_InvalidPeriod(t *testing.T) {
	start, end := day(2026, 4, 1), day(2026, 3, 1)

	_, err := export.NewService(invoices, &txLister{}, "RWF").Export(context.Background(), export.Period{Start: &start, End: &end})
	assert.ErrorIs(t, err, export.ErrInvalidPeriod)
}

func TestWriteArchive(t *testing.T) {
	r, err := export.NewService(invoices, &txLister{txs: []*transaction.Transaction{
		{Type: transaction.TypeExpense, Category: "Travel", Amount: dec("45.5"), Date: day(2026, 3, 5), Description: "Bus, Kigali"},
	}}, "RWF").Export(context.Background(), export.Period{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteArchive(&buf, r))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	files := map[string][]byte{}

	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)

		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())

		files[f.Name] = content
	}

	require.Contains(t, files, "invoices.csv")
	require.Contains(t, files, "transactions.csv")
	require.Contains(t, files, "summary.txt")

	rows, err := csv.NewReader(bytes.NewReader(files["invoices.csv"])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"INV-1", "Kigali Motors", "2026-02-28", "1000.00", "180.00", "210.00", "Paid", "", ""}, rows[1])

	rows, err = csv.NewReader(bytes.NewReader(files["transactions.csv"])).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"2026-03-05", "Expense", "Travel", "45.50", "Bus, Kigali"}, rows[1])
}
