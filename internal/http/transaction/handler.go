package transaction

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/categories", h.categories)
	r.Delete("/{id}", h.delete)
	r.Patch("/{id}", h.update)
}

type createTransactionRequest struct {
	Type        transaction.Type `json:"type" validate:"required,oneof=Income Expense"`
	Category    string           `json:"category" validate:"required"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date" validate:"required,datetime=2006-01-02"`
	ProjectID   *uuid.UUID       `json:"project_id,omitempty"`
	Description string           `json:"description"`
}

func checkAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", respond.ErrInvalid)
	}

	return nil
}

func checkCategory(c string) error {
	if !transaction.IsCategory(c) {
		return fmt.Errorf("%w: unknown category %q", respond.ErrInvalid, c)
	}

	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	if err := checkAmount(req.Amount); err != nil {
		respond.Error(w, err)
		return
	}

	if err := checkCategory(req.Category); err != nil {
		respond.Error(w, err)
		return
	}

	date, _ := time.Parse(time.DateOnly, req.Date)

	tx, err := h.svc.Create(r.Context(), transaction.CreateParams{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        date,
		ProjectID:   req.ProjectID,
		Description: req.Description,
	})
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func parseDateParam(r *http.Request, key string) (*time.Time, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", respond.ErrInvalid, key)
	}

	return &t, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r, "start_date")
	if err != nil {
		respond.Error(w, err)
		return
	}

	end, err := parseDateParam(r, "end_date")
	if err != nil {
		respond.Error(w, err)
		return
	}

	txs := h.svc.ListRange(r.Context(), transaction.ListFilter{StartDate: start, EndDate: end})

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

func (h *Handler) categories(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, transaction.Categories)
}

func parseID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid id", respond.ErrInvalid)
	}

	return id, nil
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

type updateTransactionRequest struct {
	Type        *transaction.Type `json:"type,omitempty" validate:"omitempty,oneof=Income Expense"`
	Category    *string           `json:"category,omitempty"`
	Amount      *decimal.Decimal  `json:"amount,omitempty"`
	Date        *string           `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ProjectID   *uuid.UUID        `json:"project_id,omitempty"`
	Description *string           `json:"description,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	var req updateTransactionRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, err)
		return
	}

	patch := transaction.Patch{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		ProjectID:   req.ProjectID,
		Description: req.Description,
	}

	if req.Amount != nil {
		if err := checkAmount(*req.Amount); err != nil {
			respond.Error(w, err)
			return
		}
	}

	if req.Category != nil {
		if err := checkCategory(*req.Category); err != nil {
			respond.Error(w, err)
			return
		}
	}

	if req.Date != nil {
		date, _ := time.Parse(time.DateOnly, *req.Date)
		patch.Date = &date
	}

	if err := h.svc.Update(r.Context(), id, patch); err != nil {
		respond.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
