package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/invoice/store"
)

func newStore(t *testing.T, h http.HandlerFunc) *store.Store {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := backend.NewClient(backend.Config{URL: srv.URL, AnonKey: "anon-key-for-tests-0123456789"})

	return store.New(backend.ProviderFunc(func() backend.Handle { return client }))
}

func TestStore_ListInvoices(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/invoices", r.URL.Path)
		assert.Equal(t, "date.desc", r.URL.Query().Get("order"))

		_, _ = w.Write([]byte(`[
			{"id":"6c1f7a9e-3b7e-4c1e-9d36-1f2d3c4b5a69","user_id":"0f8e2c4a-1b3d-4e5f-8a9b-0c1d2e3f4a5b",
			 "invoice_number":"INV-002","client_name":"Acme","date":"2025-02-10",
			 "amount":1500.50,"vat_amount":270.09,"earning":315.11,"status":"Paid",
			 "payment_date":"2025-02-20","notes":null,"created_at":"2025-02-10T09:30:00.123456+00:00"}
		]`))
	})

	got, err := s.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)

	inv := got[0]
	assert.Equal(t, "INV-002", inv.InvoiceNumber)
	assert.Equal(t, invoice.StatusPaid, inv.Status)
	assert.True(t, decimal.RequireFromString("1500.5").Equal(inv.Amount))
	assert.Equal(t, time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC), inv.Date)
	require.NotNil(t, inv.PaymentDate)
	assert.Equal(t, 20, inv.PaymentDate.Day())
	assert.Empty(t, inv.Notes)
}

func TestStore_CreateInvoice(t *testing.T) {
	userID := uuid.New()
	newID := uuid.New()

	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var rows []map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		assert.Len(t, rows, 1)
		assert.Equal(t, userID.String(), rows[0]["user_id"])
		assert.Equal(t, "2025-03-01", rows[0]["date"])
		assert.NotContains(t, rows[0], "id")

		rows[0]["id"] = newID.String()
		rows[0]["created_at"] = "2025-03-01T10:00:00Z"

		w.WriteHeader(http.StatusCreated)
		assert.NoError(t, json.NewEncoder(w).Encode(rows))
	})

	inv := &invoice.Invoice{
		UserID:        userID,
		InvoiceNumber: "INV-003",
		ClientName:    "Acme",
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.NewFromInt(1000),
		VATAmount:     decimal.NewFromInt(180),
		Earning:       decimal.NewFromInt(210),
		Status:        invoice.StatusUnpaid,
	}

	require.NoError(t, s.CreateInvoice(context.Background(), inv))
	assert.Equal(t, newID, inv.ID)
	assert.False(t, inv.CreatedAt.IsZero())
	assert.True(t, decimal.NewFromInt(210).Equal(inv.Earning))
}

func TestStore_UpdateInvoice_ClearsPaymentDate(t *testing.T) {
	id := uuid.New()

	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq."+id.String(), r.URL.Query().Get("id"))

		var fields map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, "Unpaid", fields["status"])

		v, ok := fields["payment_date"]
		assert.True(t, ok)
		assert.Nil(t, v)

		w.WriteHeader(http.StatusNoContent)
	})

	err := s.UpdateInvoice(context.Background(), id, invoice.Patch{
		Status:           new(invoice.StatusUnpaid),
		ClearPaymentDate: true,
	})
	assert.NoError(t, err)
}
