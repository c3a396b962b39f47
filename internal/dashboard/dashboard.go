// Package dashboard loads everything the main screen shows in one pass.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/insight"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	"github.com/MrJamesThe3rd/getrich/internal/summary"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
)

type InvoiceLister interface {
	Fetch(ctx context.Context) ([]*invoice.Invoice, error)
}

type TransactionLister interface {
	Fetch(ctx context.Context) ([]*transaction.Transaction, error)
}

type ProjectLister interface {
	Fetch(ctx context.Context) ([]*project.Project, error)
}

type InsightGenerator interface {
	Generate(
		ctx context.Context,
		invoices []*invoice.Invoice,
		transactions []*transaction.Transaction,
		projects []*project.Project,
	) []insight.Insight
}

const (
	kindInvoices     = "invoices"
	kindTransactions = "transactions"
	kindProjects     = "projects"
)

// Cache keeps the last loaded records for display before the backend answers.
type Cache interface {
	SaveCache(kind string, v any) error
	LoadCache(kind string, dest any) (bool, error)
}

type Snapshot struct {
	Invoices     []*invoice.Invoice
	Transactions []*transaction.Transaction
	Projects     []*project.Project
	Summary      summary.Summary
	Insights     []insight.Insight
	LoadedAt     time.Time
}

type Loader struct {
	invoices     InvoiceLister
	transactions TransactionLister
	projects     ProjectLister
	insights     InsightGenerator
	cache        Cache
	now          func() time.Time
}

// NewLoader wires the loader. insights and cache may be nil.
func NewLoader(
	invoices InvoiceLister,
	transactions TransactionLister,
	projects ProjectLister,
	insights InsightGenerator,
	cache Cache,
) *Loader {
	return &Loader{
		invoices:     invoices,
		transactions: transactions,
		projects:     projects,
		insights:     insights,
		cache:        cache,
		now:          time.Now,
	}
}

// Records fetches the three collections concurrently and summarizes them. A
// collection that fails to load is shown empty and leaves its cache entry alone.
func (l *Loader) Records(ctx context.Context) Snapshot {
	var (
		snap   Snapshot
		loaded = make(map[string]any, 3)
		mu     sync.Mutex
	)

	keep := func(kind string, v any, err error) {
		if err != nil {
			if !errors.Is(err, backend.ErrNotConfigured) {
				slog.Error("failed to load records", "kind", kind, "error", err)
			}

			return
		}

		mu.Lock()
		loaded[kind] = v
		mu.Unlock()
	}

	// Failures are per collection, so the group only joins.
	var g errgroup.Group

	g.Go(func() error {
		invoices, err := l.invoices.Fetch(ctx)
		snap.Invoices = orEmpty(invoices)
		keep(kindInvoices, snap.Invoices, err)

		return nil
	})

	g.Go(func() error {
		txs, err := l.transactions.Fetch(ctx)
		snap.Transactions = orEmpty(txs)
		keep(kindTransactions, snap.Transactions, err)

		return nil
	})

	g.Go(func() error {
		projects, err := l.projects.Fetch(ctx)
		snap.Projects = orEmpty(projects)
		keep(kindProjects, snap.Projects, err)

		return nil
	})

	_ = g.Wait()

	snap.LoadedAt = l.now()
	snap.Summary = summary.Compute(snap.Invoices, snap.Transactions, snap.Projects, snap.LoadedAt)
	snap.Insights = []insight.Insight{}

	l.store(loaded)

	return snap
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}

	return s
}

// Load is Records followed by insight generation.
func (l *Loader) Load(ctx context.Context) Snapshot {
	snap := l.Records(ctx)

	if l.insights != nil {
		snap.Insights = l.insights.Generate(ctx, snap.Invoices, snap.Transactions, snap.Projects)
	}

	return snap
}

// Cached returns the records saved by the last load.
func (l *Loader) Cached() (Snapshot, bool) {
	if l.cache == nil {
		return Snapshot{}, false
	}

	var snap Snapshot

	found := false

	for kind, dest := range map[string]any{
		kindInvoices:     &snap.Invoices,
		kindTransactions: &snap.Transactions,
		kindProjects:     &snap.Projects,
	} {
		ok, err := l.cache.LoadCache(kind, dest)
		if err != nil {
			slog.Warn("failed to read cache", "kind", kind, "error", err)
			continue
		}

		found = found || ok
	}

	if !found {
		return Snapshot{}, false
	}

	snap.Summary = summary.Compute(snap.Invoices, snap.Transactions, snap.Projects, l.now())

	return snap, true
}

func (l *Loader) store(loaded map[string]any) {
	if l.cache == nil {
		return
	}

	for kind, v := range loaded {
		if err := l.cache.SaveCache(kind, v); err != nil {
			slog.Warn("failed to write cache", "kind", kind, "error", err)
		}
	}
}
