package importcsv_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
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
	"github.com/MrJamesThe3rd/getrich/internal/http/importcsv"
	"github.com/MrJamesThe3rd/getrich/internal/importer"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

const statement = `Date;Description;Debit;Credit
05/03/2026;Office rent March;350000;
06/03/2026;Client deposit;;120000.50
`

func newRouter(t *testing.T) (http.Handler, *backend.MockIdentity, *transaction.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	identity := backend.NewMockIdentity(ctrl)
	repo := transaction.NewMockRepository(ctrl)

	h := importcsv.NewHandler(importer.NewService(nil), transaction.NewService(repo, identity))

	r := chi.NewRouter()
	r.Route("/import", h.Routes)

	return r, identity, repo
}

func upload(t *testing.T, h http.Handler, fields map[string]string, file string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if file != "" {
		fw, err := mw.CreateFormFile("file", "statement.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(file))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Import_Created(t *testing.T) {
	h, identity, repo := newRouter(t)

	identity.EXPECT().Actor(gomock.Any()).Return(uuid.New(), nil)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return(nil, nil)
	repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(2)).Return(nil)

	rec := upload(t, h, nil, statement)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.EqualValues(t, 2, got["imported"])
}

func TestHandler_Import_Conflict(t *testing.T) {
	h, identity, repo := newRouter(t)

	identity.EXPECT().Actor(gomock.Any()).Return(uuid.New(), nil)
	repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any()).Return([]*transaction.Transaction{{
		ID:          uuid.New(),
		Type:        transaction.TypeExpense,
		Category:    "Office Rent",
		Amount:      decimal.NewFromInt(350000),
		Date:        time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Description: "Office rent March",
	}}, nil)

	rec := upload(t, h, nil, statement)
	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

	var got struct {
		New       []map[string]any `json:"new"`
		Conflicts []map[string]any `json:"conflicts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got.New, 1)
	assert.Len(t, got.Conflicts, 1)
}

func TestHandler_Import_BadInput(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		file   string
	}{
		{name: "NoFile"},
		{name: "UnknownSource", fields: map[string]string{"source": "paypal"}, file: statement},
		{name: "UnknownFormat", file: "foo,bar\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newRouter(t)

			rec := upload(t, h, tt.fields, tt.file)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestHandler_Confirm(t *testing.T) {
	h, identity, repo := newRouter(t)

	identity.EXPECT().Actor(gomock.Any()).Return(uuid.New(), nil)
	repo.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, txs []*transaction.Transaction) error {
			require.Len(t, txs, 1)
			assert.Equal(t, transaction.CategoryOther, txs[0].Category)

			return nil
		})

	body := `{"params":[{"type":"Expense","category":"Snacks","amount":"10","date":"2026-03-05","description":"x"}]}`
	req := httptest.NewRequest(http.MethodPost, "/import/confirm", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}
