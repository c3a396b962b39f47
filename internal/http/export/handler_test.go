package export_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/export"
	exportHandler "github.com/MrJamesThe3rd/getrich/internal/http/export"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type invoices []*invoice.Invoice

func (l invoices) List(context.Context) []*invoice.Invoice { return l }

type transactions []*transaction.Transaction

func (l transactions) ListRange(context.Context, transaction.ListFilter) []*transaction.Transaction {
	return l
}

func newRouter() http.Handler {
	invs := invoices{{
		InvoiceNumber: "INV-1",
		Date:          time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.NewFromInt(1000),
		VATAmount:     decimal.NewFromInt(180),
		Earning:       decimal.NewFromInt(820),
		Status:        invoice.StatusPaid,
	}}
	txs := transactions{{
		Type:     transaction.TypeExpense,
		Category: "Travel",
		Amount:   decimal.NewFromInt(100),
		Date:     time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
	}}

	r := chi.NewRouter()
	r.Route("/export", exportHandler.NewHandler(export.NewService(invs, txs, "RWF")).Routes)

	return r
}

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Report(t *testing.T) {
	rec := post(newRouter(), "/export/", `{"start_date":"2026-02-01","end_date":"2026-02-28"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Currency string            `json:"currency"`
		Invoices int               `json:"invoices"`
		Totals   map[string]string `json:"totals"`
		Summary  string            `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "RWF", got.Currency)
	assert.Equal(t, 1, got.Invoices)
	assert.Equal(t, "180", got.Totals["vat"])
	assert.Equal(t, "900", got.Totals["net_profit"])
	assert.Contains(t, got.Summary, "2026-02-01 to 2026-02-28")
}

func TestHandler_Report_InvalidPeriod(t *testing.T) {
	rec := post(newRouter(), "/export/", `{"start_date":"2026-03-01","end_date":"2026-02-01"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Download(t *testing.T) {
	rec := post(newRouter(), "/export/download", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}

	assert.ElementsMatch(t, []string{"invoices.csv", "transactions.csv", "summary.txt"}, names)
}
