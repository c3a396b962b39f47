package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

type invoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Earning       decimal.Decimal `json:"earning"`
	Status        invoice.Status  `json:"status"`
	PaymentDate   *string         `json:"payment_date,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toResponse(inv *invoice.Invoice) invoiceResponse {
	resp := invoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		Date:          inv.Date.Format(time.DateOnly),
		Amount:        inv.Amount,
		VATAmount:     inv.VATAmount,
		Earning:       inv.Earning,
		Status:        inv.Status,
		Notes:         inv.Notes,
		CreatedAt:     inv.CreatedAt,
	}

	if inv.PaymentDate != nil {
		resp.PaymentDate = new(inv.PaymentDate.Format(time.DateOnly))
	}

	return resp
}

func toResponseList(invs []*invoice.Invoice) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv)
	}

	return resp
}
