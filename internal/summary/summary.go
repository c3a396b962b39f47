// Package summary reduces the loaded records to the dashboard figures.
package summary

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

// RenewalWindow is how far ahead renewals are reported.
const RenewalWindow = 30 * 24 * time.Hour

type Summary struct {
	PaidTotal     decimal.Decimal
	UnpaidTotal   decimal.Decimal
	UnpaidCount   int
	EarningsTotal decimal.Decimal
	VATCollected  decimal.Decimal
	IncomeTotal   decimal.Decimal
	ExpenseTotal  decimal.Decimal

	InvoiceCount     int
	TransactionCount int
	ProjectCount     int
	ActiveProjects   int

	Renewals []project.Renewal
}

// Compute derives the summary. It has no state and does no I/O.
func Compute(
	invoices []*invoice.Invoice,
	transactions []*transaction.Transaction,
	projects []*project.Project,
	now time.Time,
) Summary {
	s := Summary{
		InvoiceCount:     len(invoices),
		TransactionCount: len(transactions),
		ProjectCount:     len(projects),
	}

	for _, inv := range invoices {
		switch inv.Status {
		case invoice.StatusPaid:
			s.PaidTotal = s.PaidTotal.Add(inv.Amount)
			s.EarningsTotal = s.EarningsTotal.Add(inv.Earning)
			s.VATCollected = s.VATCollected.Add(inv.VATAmount)
		case invoice.StatusUnpaid:
			s.UnpaidTotal = s.UnpaidTotal.Add(inv.Amount)
			s.UnpaidCount++
		}
	}

	for _, tx := range transactions {
		switch tx.Type {
		case transaction.TypeIncome:
			s.IncomeTotal = s.IncomeTotal.Add(tx.Amount)
		case transaction.TypeExpense:
			s.ExpenseTotal = s.ExpenseTotal.Add(tx.Amount)
		}
	}

	for _, p := range projects {
		if p.Status == project.StatusActive {
			s.ActiveProjects++
		}
	}

	s.Renewals = project.RenewalsDue(projects, now, RenewalWindow)

	return s
}

// Net is paid revenue plus other income minus expenses.
func (s Summary) Net() decimal.Decimal {
	return s.PaidTotal.Add(s.IncomeTotal).Sub(s.ExpenseTotal)
}
