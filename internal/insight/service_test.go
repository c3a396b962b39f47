package insight_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/insight"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type modelFunc func(ctx context.Context, prompt string) (string, error)

func (f modelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var sampleInvoices = []*invoice.Invoice{
	{Amount: decimal.NewFromInt(1000), Earning: decimal.NewFromInt(210), Status: invoice.StatusPaid},
	{Amount: decimal.NewFromInt(500), Earning: decimal.NewFromInt(105), Status: invoice.StatusUnpaid},
}

func TestService_Generate(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		err     error
		wantLen int
	}{
		{
			name: "Valid",
			answer: `[
				{"title":"Chase unpaid invoices","content":"500 RWF is pending.","type":"warning"},
				{"title":"Set aside VAT","content":"Reserve 18% of revenue.","type":"tip"}
			]`,
			wantLen: 2,
		},
		{
			name:    "FencedJSON",
			answer:  "```json\n[{\"title\":\"Grow\",\"content\":\"Raise prices.\",\"type\":\"suggestion\"}]\n```",
			wantLen: 1,
		},
		{
			name:    "NetworkError",
			err:     errors.New("dial tcp: connection refused"),
			wantLen: 0,
		},
		{
			name:    "NotJSON",
			answer:  "Here are some insights: be frugal.",
			wantLen: 0,
		},
		{
			name:    "UnknownType",
			answer:  `[{"title":"x","content":"y","type":"rant"}]`,
			wantLen: 0,
		},
		{
			name:    "MissingField",
			answer:  `[{"title":"x","type":"tip"}]`,
			wantLen: 0,
		},
		{
			name:    "Empty",
			answer:  "",
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := modelFunc(func(_ context.Context, _ string) (string, error) {
				return tt.answer, tt.err
			})

			svc := insight.NewService(model, insight.Options{BusinessName: "Test Co"})

			got := svc.Generate(context.Background(), sampleInvoices, nil, nil)

			require.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Generate_Timeout(t *testing.T) {
	model := modelFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	svc := insight.NewService(model, insight.Options{Timeout: 20 * time.Millisecond})

	got := svc.Generate(context.Background(), sampleInvoices, nil, nil)
	assert.Empty(t, got)
}

func TestService_Generate_Disabled(t *testing.T) {
	svc := insight.NewService(nil, insight.Options{})

	assert.False(t, svc.Enabled())
	assert.Empty(t, svc.Generate(context.Background(), sampleInvoices, nil, nil))
}

func TestService_Generate_SendsSummary(t *testing.T) {
	var prompt string

	model := modelFunc(func(_ context.Context, p string) (string, error) {
		prompt = p
		return "[]", nil
	})

	svc := insight.NewService(model, insight.Options{BusinessName: "Test Co"})

	got := svc.Generate(context.Background(), sampleInvoices, []*transaction.Transaction{
		{Type: transaction.TypeExpense, Amount: decimal.NewFromInt(1250000)},
	}, nil)

	assert.Empty(t, got)
	assert.Contains(t, prompt, "Test Co")
	assert.Contains(t, prompt, "Revenue (paid invoices): 1,000 RWF")
	assert.Contains(t, prompt, "Unpaid invoices: 1 (total pending: 500 RWF)")
	assert.Contains(t, prompt, "Expenses: 1,250,000 RWF")
	assert.Contains(t, prompt, "VAT, 18% standard")
}

func TestBuildPrompt_Renewals(t *testing.T) {
	due := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	p := &project.Project{Name: "Showroom site"}

	s := summary.Summary{
		Renewals: []project.Renewal{{Project: p, Kind: project.RenewalDomain, Due: due}},
	}

	got := insight.BuildPrompt(s, insight.Options{
		Currency:    "RWF",
		VATRate:     invoice.DefaultRates.VAT,
		EarningRate: invoice.DefaultRates.Earning,
	})

	assert.Contains(t, got, `domain renewal for project "Showroom site" due 2025-06-10`)
	assert.Contains(t, got, "Personal earnings (21% of paid invoices)")
}
