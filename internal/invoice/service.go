package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	ListInvoices(ctx context.Context) ([]*Invoice, error)
	CreateInvoice(ctx context.Context, inv *Invoice) error
	UpdateInvoice(ctx context.Context, id uuid.UUID, patch Patch) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	identity backend.Identity
	rates    Rates
}

func NewService(repo Repository, identity backend.Identity, rates Rates) *Service {
	return &Service{repo: repo, identity: identity, rates: rates}
}

type CreateParams struct {
	InvoiceNumber string
	ClientName    string
	Date          time.Time
	Amount        decimal.Decimal
	Status        Status
	PaymentDate   *time.Time
	Notes         string
}

// Patch changes the fields that are set. Changing Amount leaves VATAmount and
// Earning untouched unless they are set too; see Rederive.
type Patch struct {
	InvoiceNumber    *string
	ClientName       *string
	Date             *time.Time
	Amount           *decimal.Decimal
	VATAmount        *decimal.Decimal
	Earning          *decimal.Decimal
	Status           *Status
	PaymentDate      *time.Time
	ClearPaymentDate bool
	Notes            *string
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

func (s *Service) Rates() Rates {
	return s.rates
}

// List returns the invoices newest first. Without a usable connection, or when
// the backend fails, it returns an empty list.
func (s *Service) List(ctx context.Context) []*Invoice {
	invoices, err := s.Fetch(ctx)
	if err != nil {
		if !errors.Is(err, backend.ErrNotConfigured) {
			slog.Error("failed to list invoices", "error", err)
		}

		return []*Invoice{}
	}

	return invoices
}

// Fetch is List without the degradation: it fails with backend.ErrNotConfigured,
// without I/O, when there is no usable connection.
func (s *Service) Fetch(ctx context.Context) ([]*Invoice, error) {
	if !s.identity.IsConfigured() {
		return nil, backend.ErrNotConfigured
	}

	invoices, err := s.repo.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	return invoices, nil
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	actor, err := s.identity.Actor(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	status := params.Status
	if status == "" {
		status = StatusUnpaid
	}

	vat, earning := Derive(params.Amount, s.rates)

	inv := &Invoice{
		UserID:        actor,
		InvoiceNumber: params.InvoiceNumber,
		ClientName:    params.ClientName,
		Date:          params.Date,
		Amount:        params.Amount,
		VATAmount:     vat,
		Earning:       earning,
		Status:        status,
		PaymentDate:   params.PaymentDate,
		Notes:         params.Notes,
	}

	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, fmt.Errorf("creating invoice: %w", err)
	}

	return inv, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, patch Patch) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if patch.Empty() {
		return nil
	}

	if err := s.repo.UpdateInvoice(ctx, id, patch); err != nil {
		return fmt.Errorf("updating invoice: %w", err)
	}

	return nil
}

// MarkPaid sets the invoice to paid as of at.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.Update(ctx, id, Patch{
		Status:      new(StatusPaid),
		PaymentDate: &at,
	})
}

// MarkUnpaid reverts a payment and clears its date.
func (s *Service) MarkUnpaid(ctx context.Context, id uuid.UUID) error {
	return s.Update(ctx, id, Patch{
		Status:           new(StatusUnpaid),
		ClearPaymentDate: true,
	})
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if !s.identity.IsConfigured() {
		return backend.ErrNotConfigured
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	return nil
}

// Rederive fills VATAmount and Earning from the new Amount when the patch
// changes it.
func (s *Service) Rederive(patch Patch) Patch {
	if patch.Amount == nil {
		return patch
	}

	vat, earning := Derive(*patch.Amount, s.rates)
	patch.VATAmount = &vat
	patch.Earning = &earning

	return patch
}
