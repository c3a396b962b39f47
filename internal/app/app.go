// Package app wires the services shared by the API server and the terminal UI.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/getrich/internal/backend"
	"github.com/MrJamesThe3rd/getrich/internal/config"
	"github.com/MrJamesThe3rd/getrich/internal/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/export"
	"github.com/MrJamesThe3rd/getrich/internal/importer"
	"github.com/MrJamesThe3rd/getrich/internal/insight"
	"github.com/MrJamesThe3rd/getrich/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/getrich/internal/invoice/store"
	"github.com/MrJamesThe3rd/getrich/internal/localstore"
	"github.com/MrJamesThe3rd/getrich/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/getrich/internal/matching/store"
	"github.com/MrJamesThe3rd/getrich/internal/notify"
	"github.com/MrJamesThe3rd/getrich/internal/project"
	projectStore "github.com/MrJamesThe3rd/getrich/internal/project/store"
	"github.com/MrJamesThe3rd/getrich/internal/readiness"
	"github.com/MrJamesThe3rd/getrich/internal/transaction"
	txStore "github.com/MrJamesThe3rd/getrich/internal/transaction/store"
)

type App struct {
	Config   *config.Config
	Store    *localstore.Store
	Accessor *backend.Accessor
	Tracker  *readiness.Tracker

	Invoices     *invoice.Service
	Projects     *project.Service
	Transactions *transaction.Service
	Categories   *matching.Service
	Importer     *importer.Service
	Export       *export.Service
	Insights     *insight.Service
	Notifier     *notify.Notifier
	Loader       *dashboard.Loader
	Scheduler    *dashboard.Scheduler
}

// New opens the local store and builds every service. Nothing here talks to
// the backend; the first handle is built on first use.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	dir, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}

	store, err := localstore.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("opening local store: %w", err)
	}

	vat, earning, err := cfg.Rates()
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Backend.Timeout}

	accessor := backend.NewAccessor(cfg.BackendOverride(), store, func(c backend.Config) backend.Handle {
		return backend.NewClient(c, backend.WithSessionStore(store), backend.WithHTTPClient(httpClient))
	})

	var model insight.Model

	if cfg.Gemini.APIKey != "" {
		g, err := insight.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.Endpoint)
		if err != nil {
			return nil, err
		}

		model = g
	} else {
		slog.Info("GEMINI_API_KEY not set, insights disabled")
	}

	a := &App{
		Config:   cfg,
		Store:    store,
		Accessor: accessor,
		Tracker:  readiness.NewTracker(),
	}

	a.Invoices = invoice.NewService(invoiceStore.New(accessor), accessor, invoice.Rates{VAT: vat, Earning: earning})
	a.Projects = project.NewService(projectStore.New(accessor), accessor)
	a.Transactions = transaction.NewService(txStore.New(accessor), accessor)
	a.Categories = matching.NewService(matchingStore.New(store))
	a.Importer = importer.NewService(a.Categories)
	a.Export = export.NewService(a.Invoices, a.Transactions, cfg.Business.Currency)
	a.Insights = insight.NewService(model, insight.Options{
		BusinessName: cfg.Business.Name,
		Currency:     cfg.Business.Currency,
		VATRate:      vat,
		EarningRate:  earning,
		Timeout:      cfg.Insights.Timeout,
	})
	a.Notifier = notify.New(notify.Config{
		AppName:    cfg.App.Name,
		Desktop:    cfg.Notify.Desktop,
		WebhookURL: cfg.Notify.WebhookURL,
	})
	a.Loader = dashboard.NewLoader(a.Invoices, a.Transactions, a.Projects, a.Insights, store)
	a.Scheduler = dashboard.NewScheduler(a.Loader, a.Notifier, cfg.Insights.Timeout+cfg.Backend.Timeout)

	return a, nil
}

// SaveConnection persists cfg, rebuilds the backend handle and restarts the
// readiness evaluation.
func (a *App) SaveConnection(cfg backend.Config) (backend.Handle, error) {
	if err := a.Store.SaveConnection(cfg); err != nil {
		return nil, fmt.Errorf("saving connection: %w", err)
	}

	handle := a.Accessor.Reinitialize()
	a.Tracker.Reset()

	return handle, nil
}
