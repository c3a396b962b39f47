package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status is the payment state of an invoice.
type Status string

const (
	StatusPaid   Status = "Paid"
	StatusUnpaid Status = "Unpaid"
)

// Invoice is a bill issued to a client. VATAmount and Earning are stored
// fractions of Amount fixed at creation time.
type Invoice struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	InvoiceNumber string
	ClientName    string
	Date          time.Time
	Amount        decimal.Decimal
	VATAmount     decimal.Decimal
	Earning       decimal.Decimal
	Status        Status
	PaymentDate   *time.Time
	Notes         string
	CreatedAt     time.Time
}

// Rates are the fractions of an invoice amount booked as VAT and as earning.
type Rates struct {
	VAT     decimal.Decimal
	Earning decimal.Decimal
}

var DefaultRates = Rates{
	VAT:     decimal.RequireFromString("0.18"),
	Earning: decimal.RequireFromString("0.21"),
}

// Derive computes the VAT and earning parts of amount, rounded to cents.
func Derive(amount decimal.Decimal, r Rates) (vat, earning decimal.Decimal) {
	return amount.Mul(r.VAT).Round(2), amount.Mul(r.Earning).Round(2)
}
