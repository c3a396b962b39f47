package transaction_test

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
	txHandler "github.com/MrJamesThe3rd/getrich/internal/http/transaction"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

func newRouter(t *testing.T) (http.Handler, *backend.MockIdentity, *transaction.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	identity := backend.NewMockIdentity(ctrl)
	repo := transaction.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/transactions", txHandler.NewHandler(transaction.NewService(repo, identity)).Routes)

	return r, identity, repo
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_List_Range(t *testing.T) {
	h, identity, repo := newRouter(t)

	identity.EXPECT().IsConfigured().Return(true)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, f transaction.ListFilter) ([]*transaction.Transaction, error) {
			require.NotNil(t, f.StartDate)
			require.NotNil(t, f.EndDate)
			assert.Equal(t, "2026-01-01", f.StartDate.Format(time.DateOnly))
			assert.Equal(t, "2026-01-31", f.EndDate.Format(time.DateOnly))

			return []*transaction.Transaction{{
				ID:       uuid.New(),
				Type:     transaction.TypeExpense,
				Category: "Travel",
				Amount:   decimal.RequireFromString("42.50"),
				Date:     time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
			}}, nil
		})

	rec := serve(h, http.MethodGet, "/transactions/?start_date=2026-01-01&end_date=2026-01-31", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "42.5", got[0]["amount"])
	assert.Equal(t, "2026-01-12", got[0]["date"])
}

func TestHandler_List_BadDate(t *testing.T) {
	h, _, _ := newRouter(t)

	rec := serve(h, http.MethodGet, "/transactions/?start_date=yesterday", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(id *backend.MockIdentity, repo *transaction.MockRepository)
		wantStatus int
	}{
		{
			name: "Success",
			body: `{"type":"Expense","category":"Travel","amount":"12.30","date":"2026-02-10","description":"Train"}`,
			setupMock: func(id *backend.MockIdentity, repo *transaction.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(uuid.New(), nil)
				repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ any, tx *transaction.Transaction) error {
						assert.Equal(t, "Travel", tx.Category)
						assert.Equal(t, "2026-02-10", tx.Date.Format(time.DateOnly))

						return nil
					})
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "UnknownCategory",
			body:       `{"type":"Expense","category":"Snacks","amount":"1","date":"2026-02-10"}`,
			setupMock:  func(*backend.MockIdentity, *transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadType",
			body:       `{"type":"Transfer","category":"Other","amount":"1","date":"2026-02-10"}`,
			setupMock:  func(*backend.MockIdentity, *transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NegativeAmount",
			body:       `{"type":"Income","category":"Other","amount":"-5","date":"2026-02-10"}`,
			setupMock:  func(*backend.MockIdentity, *transaction.MockRepository) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, identity, repo := newRouter(t)
			tt.setupMock(identity, repo)

			rec := serve(h, http.MethodPost, "/transactions/", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Update(t *testing.T) {
	h, identity, repo := newRouter(t)
	id := uuid.New()

	identity.EXPECT().IsConfigured().Return(true)
	repo.EXPECT().UpdateTransaction(gomock.Any(), id, gomock.Any()).DoAndReturn(
		func(_ any, _ uuid.UUID, p transaction.Patch) error {
			require.NotNil(t, p.Category)
			assert.Equal(t, "Marketing", *p.Category)
			assert.Nil(t, p.Amount)

			return nil
		})

	rec := serve(h, http.MethodPatch, "/transactions/"+id.String(), `{"category":"Marketing"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_Categories(t *testing.T) {
	h, _, _ := newRouter(t)

	rec := serve(h, http.MethodGet, "/transactions/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, transaction.Categories, got)
}
