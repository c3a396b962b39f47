package dashboard

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
	"github.com/MrJamesThe3rd/getrich/internal/insight"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
)

type Handler struct {
	loader    *dashboard.Loader
	scheduler *dashboard.Scheduler
	limit     func(http.Handler) http.Handler
}

// NewHandler wires the dashboard routes. limit wraps the insight generation
// endpoint and may be nil.
func NewHandler(loader *dashboard.Loader, scheduler *dashboard.Scheduler, limit func(http.Handler) http.Handler) *Handler {
	return &Handler{loader: loader, scheduler: scheduler, limit: limit}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)

	r.Route("/insights", func(r chi.Router) {
		r.Get("/latest", h.latest)

		r.Group(func(r chi.Router) {
			if h.limit != nil {
				r.Use(h.limit)
			}

			r.Post("/", h.generate)
		})
	})
}

type renewalResponse struct {
	ProjectID uuid.UUID           `json:"project_id"`
	Project   string              `json:"project"`
	Kind      project.RenewalKind `json:"kind"`
	Due       string              `json:"due"`
}

type summaryResponse struct {
	PaidTotal        decimal.Decimal   `json:"paid_total"`
	UnpaidTotal      decimal.Decimal   `json:"unpaid_total"`
	UnpaidCount      int               `json:"unpaid_count"`
	EarningsTotal    decimal.Decimal   `json:"earnings_total"`
	VATCollected     decimal.Decimal   `json:"vat_collected"`
	IncomeTotal      decimal.Decimal   `json:"income_total"`
	ExpenseTotal     decimal.Decimal   `json:"expense_total"`
	Net              decimal.Decimal   `json:"net"`
	InvoiceCount     int               `json:"invoice_count"`
	TransactionCount int               `json:"transaction_count"`
	ProjectCount     int               `json:"project_count"`
	ActiveProjects   int               `json:"active_projects"`
	Renewals         []renewalResponse `json:"renewals"`
	LoadedAt         time.Time         `json:"loaded_at"`
}

type insightsResponse struct {
	Insights    []insight.Insight `json:"insights"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func toSummary(s summary.Summary, at time.Time) summaryResponse {
	renewals := make([]renewalResponse, len(s.Renewals))
	for i, r := range s.Renewals {
		renewals[i] = renewalResponse{
			ProjectID: r.Project.ID,
			Project:   r.Project.Name,
			Kind:      r.Kind,
			Due:       r.Due.Format(time.DateOnly),
		}
	}

	return summaryResponse{
		PaidTotal:        s.PaidTotal,
		UnpaidTotal:      s.UnpaidTotal,
		UnpaidCount:      s.UnpaidCount,
		EarningsTotal:    s.EarningsTotal,
		VATCollected:     s.VATCollected,
		IncomeTotal:      s.IncomeTotal,
		ExpenseTotal:     s.ExpenseTotal,
		Net:              s.Net(),
		InvoiceCount:     s.InvoiceCount,
		TransactionCount: s.TransactionCount,
		ProjectCount:     s.ProjectCount,
		ActiveProjects:   s.ActiveProjects,
		Renewals:         renewals,
		LoadedAt:         at,
	}
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	snap := h.loader.Records(r.Context())

	respond.JSON(w, http.StatusOK, toSummary(snap.Summary, snap.LoadedAt))
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	snap := h.scheduler.Refresh(r.Context())

	respond.JSON(w, http.StatusOK, insightsResponse{Insights: snap.Insights, GeneratedAt: snap.LoadedAt})
}

func (h *Handler) latest(w http.ResponseWriter, _ *http.Request) {
	snap, ok := h.scheduler.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	respond.JSON(w, http.StatusOK, insightsResponse{Insights: snap.Insights, GeneratedAt: snap.LoadedAt})
}
