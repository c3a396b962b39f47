package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/getrich/internal/export"
	"github.com/MrJamesThe3rd/getrich/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.report)
	r.Post("/download", h.download)
}

type exportRequest struct {
	StartDate string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type totalsResponse struct {
	Revenue   decimal.Decimal `json:"revenue"`
	VAT       decimal.Decimal `json:"vat"`
	Earnings  decimal.Decimal `json:"earnings"`
	Unpaid    decimal.Decimal `json:"unpaid"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	NetProfit decimal.Decimal `json:"net_profit"`
}

type reportResponse struct {
	Currency     string         `json:"currency"`
	Invoices     int            `json:"invoices"`
	Transactions int            `json:"transactions"`
	Totals       totalsResponse `json:"totals"`
	Summary      string         `json:"summary"`
}

func (req exportRequest) period() export.Period {
	var p export.Period

	if t, err := time.Parse(time.DateOnly, req.StartDate); err == nil {
		p.Start = &t
	}

	if t, err := time.Parse(time.DateOnly, req.EndDate); err == nil {
		p.End = &t
	}

	return p
}

func (h *Handler) build(w http.ResponseWriter, r *http.Request) (*export.Report, bool) {
	var req exportRequest

	if r.ContentLength != 0 {
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, err)
			return nil, false
		}
	}

	report, err := h.svc.Export(r.Context(), req.period())
	if err != nil {
		if errors.Is(err, export.ErrInvalidPeriod) {
			err = fmt.Errorf("%w: %v", respond.ErrInvalid, err)
		}

		respond.Error(w, err)

		return nil, false
	}

	return report, true
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	report, ok := h.build(w, r)
	if !ok {
		return
	}

	t := report.Totals

	respond.JSON(w, http.StatusOK, reportResponse{
		Currency:     report.Currency,
		Invoices:     len(report.Invoices),
		Transactions: len(report.Transactions),
		Totals: totalsResponse{
			Revenue:   t.Revenue,
			VAT:       t.VAT,
			Earnings:  t.Earnings,
			Unpaid:    t.Unpaid,
			Income:    t.Income,
			Expenses:  t.Expenses,
			NetProfit: t.NetProfit,
		},
		Summary: export.Summary(report),
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	report, ok := h.build(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"tax_report_%s.zip\"", time.Now().Format("20060102")))

	if err := export.WriteArchive(w, report); err != nil {
		slog.Error("failed to write export archive", "error", err)
	}
}
