package summary_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute_Invoices(t *testing.T) {
	invoices := []*invoice.Invoice{
		{Amount: dec("1000"), Earning: dec("210"), VATAmount: dec("180"), Status: invoice.StatusPaid},
		{Amount: dec("500"), Earning: dec("105"), VATAmount: dec("90"), Status: invoice.StatusUnpaid},
	}

	s := summary.Compute(invoices, nil, nil, now)

	assert.True(t, dec("1000").Equal(s.PaidTotal), s.PaidTotal.String())
	assert.True(t, dec("500").Equal(s.UnpaidTotal), s.UnpaidTotal.String())
	assert.True(t, dec("210").Equal(s.EarningsTotal), s.EarningsTotal.String())
	assert.True(t, dec("180").Equal(s.VATCollected))
	assert.Equal(t, 1, s.UnpaidCount)
	assert.Equal(t, 2, s.InvoiceCount)
}

func TestCompute_ExpenseTotalExcludesIncome(t *testing.T) {
	txs := []*transaction.Transaction{
		{Type: transaction.TypeExpense, Amount: dec("300")},
		{Type: transaction.TypeIncome, Amount: dec("900")},
	}

	s := summary.Compute(nil, txs, nil, now)

	assert.True(t, dec("300").Equal(s.ExpenseTotal), s.ExpenseTotal.String())
	assert.True(t, dec("900").Equal(s.IncomeTotal))
	assert.Equal(t, 2, s.TransactionCount)
}

func TestCompute_Empty(t *testing.T) {
	s := summary.Compute(nil, nil, nil, now)

	assert.True(t, s.PaidTotal.IsZero())
	assert.True(t, s.ExpenseTotal.IsZero())
	assert.Zero(t, s.UnpaidCount)
	assert.Empty(t, s.Renewals)
}

func TestCompute_NoFloatDrift(t *testing.T) {
	var invoices []*invoice.Invoice
	for range 10 {
		invoices = append(invoices, &invoice.Invoice{Amount: dec("0.1"), Status: invoice.StatusPaid})
	}

	s := summary.Compute(invoices, nil, nil, now)
	assert.Equal(t, "1", s.PaidTotal.String())
}

func TestCompute_Projects(t *testing.T) {
	expiry := now.AddDate(0, 0, 5)

	projects := []*project.Project{
		{Status: project.StatusActive, DomainExpiry: &expiry},
		{Status: project.StatusActive},
		{Status: project.StatusArchived},
	}

	s := summary.Compute(nil, nil, projects, now)

	assert.Equal(t, 3, s.ProjectCount)
	assert.Equal(t, 2, s.ActiveProjects)
	assert.Len(t, s.Renewals, 1)
}

func TestSummary_Net(t *testing.T) {
	s := summary.Compute(
		[]*invoice.Invoice{{Amount: dec("1000"), Status: invoice.StatusPaid}},
		[]*transaction.Transaction{
			{Type: transaction.TypeExpense, Amount: dec("300")},
			{Type: transaction.TypeIncome, Amount: dec("50")},
		},
		nil,
		now,
	)

	assert.Equal(t, "750", s.Net().String())
}
