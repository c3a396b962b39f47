package invoice

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

type Handler struct {
	svc *invoice.Service
}

func NewHandler(svc *invoice.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/paid", h.markPaid)
	r.Post("/{id}/unpaid", h.markUnpaid)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, toResponseList(h.svc.List(r.Context())))
}

type createInvoiceRequest struct {
	InvoiceNumber string          `json:"invoice_number" validate:"required"`
	ClientName    string          `json:"client_name" validate:"required"`
	Date          string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount        decimal.Decimal `json:"amount"`
	Status        invoice.Status  `json:"status" validate:"omitempty,oneof=Paid Unpaid"`
	PaymentDate   string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes         string          `json:"notes"`
}

func parseDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}

	return &t
}

func positive(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", respond.ErrInvalid)
	}

	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	if err := positive(req.Amount); err != nil {
		respond.Error(w, err)
		return
	}

	inv, err := h.svc.Create(r.Context(), invoice.CreateParams{
		InvoiceNumber: req.InvoiceNumber,
		ClientName:    req.ClientName,
		Date:          *parseDate(req.Date),
		Amount:        req.Amount,
		Status:        req.Status,
		PaymentDate:   parseDate(req.PaymentDate),
		Notes:         req.Notes,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(inv))
}

type updateInvoiceRequest struct {
	InvoiceNumber *string          `json:"invoice_number,omitempty" validate:"omitempty,min=1"`
	ClientName    *string          `json:"client_name,omitempty" validate:"omitempty,min=1"`
	Date          *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Status        *invoice.Status  `json:"status,omitempty" validate:"omitempty,oneof=Paid Unpaid"`
	Notes         *string          `json:"notes,omitempty"`

	// Rederive recomputes VAT and earning from the new amount.
	Rederive bool `json:"rederive"`
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", respond.ErrInvalid)
	}

	return id, nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req updateInvoiceRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	patch := invoice.Patch{
		InvoiceNumber: req.InvoiceNumber,
		ClientName:    req.ClientName,
		Amount:        req.Amount,
		Status:        req.Status,
		Notes:         req.Notes,
	}

	if req.Date != nil {
		patch.Date = parseDate(*req.Date)
	}

	if req.Amount != nil {
		if err := positive(*req.Amount); err != nil {
			respond.Error(w, err)
			return
		}

		if req.Rederive {
			patch = h.svc.Rederive(patch)
		}
	}

	if err := h.svc.Update(r.Context(), id, patch); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type markPaidRequest struct {
	PaymentDate string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *Handler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	at := time.Now().UTC()

	if r.ContentLength != 0 {
		var req markPaidRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, err)
			return
		}

		if d := parseDate(req.PaymentDate); d != nil {
			at = *d
		}
	}

	if err := h.svc.MarkPaid(r.Context(), id, at); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) markUnpaid(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.svc.MarkUnpaid(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
