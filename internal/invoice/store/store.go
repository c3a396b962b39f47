package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

const table = "invoices"

type Store struct {
	handles backend.Provider
}

func New(handles backend.Provider) *Store {
	return &Store{handles: handles}
}

// row mirrors the invoices table. Dates are plain DATE columns.
type row struct {
	ID            *uuid.UUID      `json:"id,omitempty"`
	UserID        uuid.UUID       `json:"user_id"`
	InvoiceNumber string          `json:"invoice_number"`
	ClientName    string          `json:"client_name"`
	Date          string          `json:"date"`
	Amount        decimal.Decimal `json:"amount"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Earning       decimal.Decimal `json:"earning"`
	Status        invoice.Status  `json:"status"`
	PaymentDate   *string         `json:"payment_date"`
	Notes         *string         `json:"notes"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

func toRow(inv *invoice.Invoice) row {
	r := row{
		UserID:        inv.UserID,
		InvoiceNumber: inv.InvoiceNumber,
		ClientName:    inv.ClientName,
		Date:          inv.Date.Format(time.DateOnly),
		Amount:        inv.Amount,
		VATAmount:     inv.VATAmount,
		Earning:       inv.Earning,
		Status:        inv.Status,
	}

	if inv.PaymentDate != nil {
		r.PaymentDate = new(inv.PaymentDate.Format(time.DateOnly))
	}

	if inv.Notes != "" {
		r.Notes = new(inv.Notes)
	}

	return r
}

func (r row) toInvoice() (*invoice.Invoice, error) {
	date, err := time.Parse(time.DateOnly, r.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}

	inv := &invoice.Invoice{
		UserID:        r.UserID,
		InvoiceNumber: r.InvoiceNumber,
		ClientName:    r.ClientName,
		Date:          date,
		Amount:        r.Amount,
		VATAmount:     r.VATAmount,
		Earning:       r.Earning,
		Status:        r.Status,
	}

	if r.ID != nil {
		inv.ID = *r.ID
	}

	if r.CreatedAt != nil {
		inv.CreatedAt = *r.CreatedAt
	}

	if r.Notes != nil {
		inv.Notes = *r.Notes
	}

	if r.PaymentDate != nil && *r.PaymentDate != "" {
		paid, err := time.Parse(time.DateOnly, *r.PaymentDate)
		if err != nil {
			return nil, fmt.Errorf("parsing payment date: %w", err)
		}

		inv.PaymentDate = &paid
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context) ([]*invoice.Invoice, error) {
	var rows []row
	if err := s.handles.Handle().Select(ctx, table, backend.Query{Order: "date"}, &rows); err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, 0, len(rows))

	for _, r := range rows {
		inv, err := r.toInvoice()
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	return invoices, nil
}

// CreateInvoice inserts inv and replaces it with the stored representation.
func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	var created row
	if err := s.handles.Handle().Insert(ctx, table, toRow(inv), &created); err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	stored, err := created.toInvoice()
	if err != nil {
		return fmt.Errorf("scanning invoice: %w", err)
	}

	*inv = *stored

	return nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id uuid.UUID, patch invoice.Patch) error {
	if err := s.handles.Handle().Update(ctx, table, id, patchFields(patch)); err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.handles.Handle().Delete(ctx, table, id); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

func patchFields(p invoice.Patch) map[string]any {
	fields := make(map[string]any)

	if p.InvoiceNumber != nil {
		fields["invoice_number"] = *p.InvoiceNumber
	}

	if p.ClientName != nil {
		fields["client_name"] = *p.ClientName
	}

	if p.Date != nil {
		fields["date"] = p.Date.Format(time.DateOnly)
	}

	if p.Amount != nil {
		fields["amount"] = *p.Amount
	}

	if p.VATAmount != nil {
		fields["vat_amount"] = *p.VATAmount
	}

	if p.Earning != nil {
		fields["earning"] = *p.Earning
	}

	if p.Status != nil {
		fields["status"] = *p.Status
	}

	switch {
	case p.ClearPaymentDate:
		fields["payment_date"] = nil
	case p.PaymentDate != nil:
		fields["payment_date"] = p.PaymentDate.Format(time.DateOnly)
	}

	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}

	return fields
}
