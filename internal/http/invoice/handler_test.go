package invoice_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	invoiceHandler "github.com/MrJamesThe3rd/getrich/internal/http/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

func newRouter(t *testing.T) (http.Handler, *backend.MockIdentity, *invoice.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	identity := backend.NewMockIdentity(ctrl)
	repo := invoice.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/invoices", invoiceHandler.NewHandler(invoice.NewService(repo, identity, invoice.DefaultRates)).Routes)

	return r, identity, repo
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_List(t *testing.T) {
	h, identity, repo := newRouter(t)

	identity.EXPECT().IsConfigured().Return(true)
	repo.EXPECT().ListInvoices(gomock.Any()).Return([]*invoice.Invoice{{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		Date:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:        decimal.NewFromInt(1000),
		Status:        invoice.StatusUnpaid,
	}}, nil)

	rec := serve(h, http.MethodGet, "/invoices/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "INV-001", got[0]["invoice_number"])
	assert.Equal(t, "2026-03-01", got[0]["date"])
	assert.Equal(t, "1000", got[0]["amount"])
}

func TestHandler_List_NotConfigured(t *testing.T) {
	h, identity, _ := newRouter(t)

	identity.EXPECT().IsConfigured().Return(false)

	rec := serve(h, http.MethodGet, "/invoices/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Create(t *testing.T) {
	actor := uuid.New()

	tests := []struct {
		name       string
		body       string
		setupMock  func(id *backend.MockIdentity, repo *invoice.MockRepository)
		wantStatus int
	}{
		{
			name: "Success",
			body: `{"invoice_number":"INV-9","client_name":"Kigali Motors","date":"2026-03-02","amount":"1000"}`,
			setupMock: func(id *backend.MockIdentity, repo *invoice.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(actor, nil)
				repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, inv *invoice.Invoice) error {
						assert.Equal(t, actor, inv.UserID)
						assert.True(t, decimal.NewFromInt(180).Equal(inv.VATAmount))
						inv.ID = uuid.New()

						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "MissingClient",
			body:       `{"invoice_number":"INV-9","date":"2026-03-02","amount":"1000"}`,
			setupMock:  func(*backend.MockIdentity, *invoice.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadDate",
			body:       `{"invoice_number":"INV-9","client_name":"x","date":"02/03/2026","amount":"1000"}`,
			setupMock:  func(*backend.MockIdentity, *invoice.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "ZeroAmount",
			body:       `{"invoice_number":"INV-9","client_name":"x","date":"2026-03-02","amount":"0"}`,
			setupMock:  func(*backend.MockIdentity, *invoice.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "SignedOut",
			body: `{"invoice_number":"INV-9","client_name":"x","date":"2026-03-02","amount":"10"}`,
			setupMock: func(id *backend.MockIdentity, _ *invoice.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(uuid.Nil, backend.ErrNotAuthenticated)
			},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, identity, repo := newRouter(t)
			tt.setupMock(identity, repo)

			rec := serve(h, http.MethodPost, "/invoices/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Update_Rederive(t *testing.T) {
	h, identity, repo := newRouter(t)
	id := uuid.New()

	identity.EXPECT().IsConfigured().Return(true)
	repo.EXPECT().UpdateInvoice(gomock.Any(), id, gomock.Any()).DoAndReturn(
		func(_ any, _ uuid.UUID, p invoice.Patch) error {
			require.NotNil(t, p.VATAmount)
			assert.True(t, decimal.NewFromInt(360).Equal(*p.VATAmount))

			return nil
		})

	rec := serve(h, http.MethodPatch, "/invoices/"+id.String(), `{"amount":"2000","rederive":true}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_MarkPaid(t *testing.T) {
	h, identity, repo := newRouter(t)
	id := uuid.New()

	identity.EXPECT().IsConfigured().Return(true)
	repo.EXPECT().UpdateInvoice(gomock.Any(), id, gomock.Any()).DoAndReturn(
		func(_ any, _ uuid.UUID, p invoice.Patch) error {
			assert.Equal(t, invoice.StatusPaid, *p.Status)
			assert.Equal(t, "2026-03-15", p.PaymentDate.Format(time.DateOnly))

			return nil
		})

	rec := serve(h, http.MethodPost, "/invoices/"+id.String()+"/paid", `{"payment_date":"2026-03-15"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	h, identity, _ := newRouter(t)

	rec := serve(h, http.MethodDelete, "/invoices/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	identity.EXPECT().IsConfigured().Return(false)

	rec = serve(h, http.MethodDelete, "/invoices/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
