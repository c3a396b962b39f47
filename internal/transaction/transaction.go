package transaction

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type represents the direction of a ledger entry.
type Type string

const (
	TypeIncome  Type = "Income"
	TypeExpense Type = "Expense"
)

// Categories is the fixed list a transaction is filed under.
var Categories = []string{
	"Software Subscription",
	"Domain/Hosting",
	"Marketing",
	"Office Rent",
	"Travel",
	"Consulting",
	"Salary/Owner Draw",
	"Taxes",
	"Other",
}

const CategoryOther = "Other"

func IsCategory(c string) bool {
	return slices.Contains(Categories, c)
}

// Transaction represents a ledger entry.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Type        Type
	Category    string
	Amount      decimal.Decimal
	Date        time.Time
	ProjectID   *uuid.UUID
	Description string
	CreatedAt   time.Time
}
