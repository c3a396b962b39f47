package invoice_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
)

func TestService_List(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(id *backend.MockIdentity, repo *invoice.MockRepository)
		wantLen   int
	}

	tests := []testCase{
		{
			name: "NotConfigured",
			setupMock: func(id *backend.MockIdentity, _ *invoice.MockRepository) {
				id.EXPECT().IsConfigured().Return(false)
			},
			wantLen: 0,
		},
		{
			name: "Success",
			setupMock: func(id *backend.MockIdentity, repo *invoice.MockRepository) {
				id.EXPECT().IsConfigured().Return(true)
				repo.EXPECT().
					ListInvoices(gomock.Any()).
					Return([]*invoice.Invoice{{ID: uuid.New()}, {ID: uuid.New()}}, nil)
			},
			wantLen: 2,
		},
		{
			name: "BackendError",
			setupMock: func(id *backend.MockIdentity, repo *invoice.MockRepository) {
				id.EXPECT().IsConfigured().Return(true)
				repo.EXPECT().
					ListInvoices(gomock.Any()).
					Return(nil, errors.New("connection refused"))
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			identity := backend.NewMockIdentity(ctrl)
			repo := invoice.NewMockRepository(ctrl)
			tt.setupMock(identity, repo)

			svc := invoice.NewService(repo, identity, invoice.DefaultRates)
			got := svc.List(context.Background())

			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Create(t *testing.T) {
	actor := uuid.New()

	type testCase struct {
		name      string
		setupMock func(id *backend.MockIdentity, repo *invoice.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(id *backend.MockIdentity, repo *invoice.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(actor, nil)
				repo.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, inv *invoice.Invoice) error {
						inv.ID = uuid.New()
						inv.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "NoActor",
			setupMock: func(id *backend.MockIdentity, _ *invoice.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(uuid.Nil, backend.ErrNotAuthenticated)
			},
			wantErr: backend.ErrNotAuthenticated,
		},
		{
			name: "RepoError",
			setupMock: func(id *backend.MockIdentity, repo *invoice.MockRepository) {
				id.EXPECT().Actor(gomock.Any()).Return(actor, nil)
				repo.EXPECT().
					CreateInvoice(gomock.Any(), gomock.Any()).
					Return(&backend.APIError{Status: 409, Code: "23505", Message: "duplicate key"})
			},
			wantErr: &backend.APIError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			identity := backend.NewMockIdentity(ctrl)
			repo := invoice.NewMockRepository(ctrl)
			tt.setupMock(identity, repo)

			svc := invoice.NewService(repo, identity, invoice.DefaultRates)
			got, err := svc.Create(context.Background(), invoice.CreateParams{
				InvoiceNumber: "INV-001",
				ClientName:    "Kigali Motors",
				Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
				Amount:        decimal.NewFromInt(1000),
			})

			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
				assert.NotEqual(t, uuid.Nil, got.ID)
				assert.Equal(t, actor, got.UserID)
				assert.Equal(t, invoice.StatusUnpaid, got.Status)
				assert.True(t, decimal.NewFromInt(180).Equal(got.VATAmount))
				assert.True(t, decimal.NewFromInt(210).Equal(got.Earning))
			case *backend.APIError:
				assert.ErrorAs(t, err, &want)
				assert.Nil(t, got)
			default:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("NotConfigured", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(false)

		svc := invoice.NewService(invoice.NewMockRepository(ctrl), identity, invoice.DefaultRates)

		err := svc.Update(context.Background(), id, invoice.Patch{Notes: new("late")})
		assert.ErrorIs(t, err, backend.ErrNotConfigured)
	})

	t.Run("ErrorPropagates", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := invoice.NewMockRepository(ctrl)
		repo.EXPECT().UpdateInvoice(gomock.Any(), id, gomock.Any()).Return(errors.New("timeout"))

		svc := invoice.NewService(repo, identity, invoice.DefaultRates)

		err := svc.Update(context.Background(), id, invoice.Patch{Notes: new("late")})
		assert.Error(t, err)
	})

	t.Run("AmountEditKeepsStoredSplit", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		identity := backend.NewMockIdentity(ctrl)
		identity.EXPECT().IsConfigured().Return(true)

		repo := invoice.NewMockRepository(ctrl)
		repo.EXPECT().
			UpdateInvoice(gomock.Any(), id, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, p invoice.Patch) error {
				assert.Nil(t, p.VATAmount)
				assert.Nil(t, p.Earning)
				return nil
			})

		svc := invoice.NewService(repo, identity, invoice.DefaultRates)

		err := svc.Update(context.Background(), id, invoice.Patch{Amount: new(decimal.NewFromInt(2000))})
		assert.NoError(t, err)
	})
}

func TestService_MarkPaid(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()
	paidAt := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC)

	identity := backend.NewMockIdentity(ctrl)
	identity.EXPECT().IsConfigured().Return(true)

	repo := invoice.NewMockRepository(ctrl)
	repo.EXPECT().
		UpdateInvoice(gomock.Any(), id, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, p invoice.Patch) error {
			require.NotNil(t, p.Status)
			assert.Equal(t, invoice.StatusPaid, *p.Status)
			assert.Equal(t, paidAt, *p.PaymentDate)
			return nil
		})

	svc := invoice.NewService(repo, identity, invoice.DefaultRates)
	assert.NoError(t, svc.MarkPaid(context.Background(), id, paidAt))
}

func TestService_Rederive(t *testing.T) {
	svc := invoice.NewService(nil, nil, invoice.DefaultRates)

	untouched := svc.Rederive(invoice.Patch{Notes: new("x")})
	assert.Nil(t, untouched.VATAmount)

	p := svc.Rederive(invoice.Patch{Amount: new(decimal.NewFromInt(500))})
	require.NotNil(t, p.VATAmount)
	assert.Equal(t, "90", p.VATAmount.String())
	assert.Equal(t, "105", p.Earning.String())
}

func TestDerive(t *testing.T) {
	vat, earning := invoice.Derive(decimal.RequireFromString("1234.56"), invoice.DefaultRates)

	assert.Equal(t, "222.22", vat.StringFixed(2))
	assert.Equal(t, "259.26", earning.StringFixed(2))
}
