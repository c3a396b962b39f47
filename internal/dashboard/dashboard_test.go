package dashboard_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/insight"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/localstore"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type invoices []*invoice.Invoice

func (l invoices) Fetch(context.Context) ([]*invoice.Invoice, error) { return l, nil }

type transactions []*transaction.Transaction

func (l transactions) Fetch(context.Context) ([]*transaction.Transaction, error) { return l, nil }

type projects []*project.Project

func (l projects) Fetch(context.Context) ([]*project.Project, error) { return l, nil }

// flaky serves its records until down is set.
type flaky struct {
	down atomic.Bool
	invoices
}

func (f *flaky) Fetch(ctx context.Context) ([]*invoice.Invoice, error) {
	if f.down.Load() {
		return nil, errors.New("connection refused")
	}

	return f.invoices.Fetch(ctx)
}

type generator struct {
	calls atomic.Int32
	out   []insight.Insight
}

func (g *generator) Generate(
	_ context.Context,
	_ []*invoice.Invoice,
	_ []*transaction.Transaction,
	_ []*project.Project,
) []insight.Insight {
	g.calls.Add(1)
	return g.out
}

type notifier struct {
	got []insight.Insight
}

func (n *notifier) Notify(_ context.Context, in []insight.Insight) {
	n.got = in
}

var (
	sampleInvoices = invoices{
		{InvoiceNumber: "INV-1", Amount: decimal.NewFromInt(1000), Earning: decimal.NewFromInt(210), Status: invoice.StatusPaid},
		{InvoiceNumber: "INV-2", Amount: decimal.NewFromInt(500), Earning: decimal.NewFromInt(105), Status: invoice.StatusUnpaid},
	}
	sampleTransactions = transactions{
		{Type: transaction.TypeExpense, Amount: decimal.NewFromInt(300), Category: "Marketing"},
	}
	sampleProjects = projects{
		{Name: "Showroom", Status: project.StatusActive},
	}
)

func TestLoader_Records(t *testing.T) {
	gen := &generator{out: []insight.Insight{{Title: "t", Content: "c", Type: insight.TypeTip}}}
	l := dashboard.NewLoader(sampleInvoices, sampleTransactions, sampleProjects, gen, nil)

	snap := l.Records(context.Background())

	assert.Len(t, snap.Invoices, 2)
	assert.Len(t, snap.Transactions, 1)
	assert.Len(t, snap.Projects, 1)
	assert.True(t, decimal.NewFromInt(1000).Equal(snap.Summary.PaidTotal))
	assert.True(t, decimal.NewFromInt(500).Equal(snap.Summary.UnpaidTotal))
	assert.True(t, decimal.NewFromInt(300).Equal(snap.Summary.ExpenseTotal))
	assert.Equal(t, 1, snap.Summary.ActiveProjects)
	assert.NotNil(t, snap.Insights)
	assert.Empty(t, snap.Insights)
	assert.Zero(t, gen.calls.Load())
}

func TestLoader_Load(t *testing.T) {
	gen := &generator{out: []insight.Insight{{Title: "t", Content: "c", Type: insight.TypeTip}}}
	l := dashboard.NewLoader(sampleInvoices, sampleTransactions, sampleProjects, gen, nil)

	snap := l.Load(context.Background())

	assert.Len(t, snap.Insights, 1)
	assert.Equal(t, int32(1), gen.calls.Load())
}

func TestLoader_Load_NoGenerator(t *testing.T) {
	l := dashboard.NewLoader(invoices{}, transactions{}, projects{}, nil, nil)

	snap := l.Load(context.Background())

	assert.Empty(t, snap.Insights)
	assert.True(t, snap.Summary.PaidTotal.IsZero())
}

func TestLoader_Cached(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	l := dashboard.NewLoader(sampleInvoices, sampleTransactions, sampleProjects, nil, store)

	_, ok := l.Cached()
	assert.False(t, ok)

	l.Records(context.Background())

	snap, ok := l.Cached()
	require.True(t, ok)
	require.Len(t, snap.Invoices, 2)
	assert.Equal(t, "INV-1", snap.Invoices[0].InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1000).Equal(snap.Summary.PaidTotal))
	assert.Len(t, snap.Projects, 1)
}

func TestLoader_Cached_KeepsLastGoodLoad(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	inv := &flaky{invoices: sampleInvoices}
	l := dashboard.NewLoader(inv, sampleTransactions, sampleProjects, nil, store)

	l.Records(context.Background())

	inv.down.Store(true)

	snap := l.Records(context.Background())
	assert.Empty(t, snap.Invoices)
	assert.Len(t, snap.Transactions, 1)

	cached, ok := l.Cached()
	require.True(t, ok)
	require.Len(t, cached.Invoices, 2)
	assert.Equal(t, "INV-1", cached.Invoices[0].InvoiceNumber)
	assert.True(t, decimal.NewFromInt(1000).Equal(cached.Summary.PaidTotal))
}

type unconfigured struct{}

func (unconfigured) Fetch(context.Context) ([]*invoice.Invoice, error) {
	return nil, backend.ErrNotConfigured
}

func TestLoader_Records_UnconfiguredWritesNoCache(t *testing.T) {
	store, err := localstore.Open(t.TempDir())
	require.NoError(t, err)

	l := dashboard.NewLoader(unconfigured{}, transactions{}, projects{}, nil, store)

	snap := l.Records(context.Background())
	assert.NotNil(t, snap.Invoices)
	assert.Empty(t, snap.Invoices)

	var cached []*invoice.Invoice
	ok, err := store.LoadCache("invoices", &cached)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestScheduler_Refresh(t *testing.T) {
	gen := &generator{out: []insight.Insight{{Title: "Chase", Content: "500 pending", Type: insight.TypeWarning}}}
	n := &notifier{}

	s := dashboard.NewScheduler(
		dashboard.NewLoader(sampleInvoices, sampleTransactions, sampleProjects, gen, nil),
		n,
		0,
	)

	_, ok := s.Latest()
	assert.False(t, ok)

	snap := s.Refresh(context.Background())
	assert.Len(t, snap.Insights, 1)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, snap.Insights, latest.Insights)
	assert.Equal(t, gen.out, n.got)
}

func TestScheduler_Start_InvalidSpec(t *testing.T) {
	s := dashboard.NewScheduler(dashboard.NewLoader(invoices{}, transactions{}, projects{}, nil, nil), nil, 0)

	assert.Error(t, s.Start("not a schedule"))
}

func TestScheduler_StartStop(t *testing.T) {
	s := dashboard.NewScheduler(dashboard.NewLoader(invoices{}, transactions{}, projects{}, nil, nil), nil, 0)

	require.NoError(t, s.Start("0 0 8 * * *"))
	s.Stop()
}
