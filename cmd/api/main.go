package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/getrich/internal/app"
	"github.com/MrJamesThe3rd/getrich/internal/config"
	getrichHttp "github.com/MrJamesThe3rd/getrich/internal/http"
	"github.com/MrJamesThe3rd/getrich/internal/http/account"
	dashboardHandler "github.com/MrJamesThe3rd/getrich/internal/http/dashboard"
	exportHandler "github.com/MrJamesThe3rd/getrich/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/getrich/internal/http/importcsv"
	invoiceHandler "github.com/MrJamesThe3rd/getrich/internal/http/invoice"
	matchingHandler "github.com/MrJamesThe3rd/getrich/internal/http/matching"
	projectHandler "github.com/MrJamesThe3rd/getrich/internal/http/project"
	"github.com/MrJamesThe3rd/getrich/internal/http/ratelimit"
	txHandler "github.com/MrJamesThe3rd/getrich/internal/http/transaction"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	limiter, err := ratelimit.New(cfg.Insights.Rate)
	if err != nil {
		slog.Error("invalid INSIGHTS_RATE", "error", err)
		os.Exit(1)
	}

	if a.Insights.Enabled() && cfg.Insights.Schedule != "" {
		if err := a.Scheduler.Start(cfg.Insights.Schedule); err != nil {
			slog.Error("failed to schedule insights", "error", err)
			os.Exit(1)
		}
		defer a.Scheduler.Stop()
	}

	accountH := account.NewHandler(a.Accessor, a.Tracker, a.Store, a.Insights)
	defer accountH.Close()

	router := getrichHttp.New(getrichHttp.Handlers{
		Account:      accountH,
		Invoices:     invoiceHandler.NewHandler(a.Invoices),
		Projects:     projectHandler.NewHandler(a.Projects),
		Transactions: txHandler.NewHandler(a.Transactions),
		Dashboard:    dashboardHandler.NewHandler(a.Loader, a.Scheduler, ratelimit.Middleware(limiter)),
		Import:       importHandler.NewHandler(a.Importer, a.Transactions),
		Categories:   matchingHandler.NewHandler(a.Categories),
		Export:       exportHandler.NewHandler(a.Export),
	}, cfg.Server.CORSOrigins)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout + cfg.Insights.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "addr", srv.Addr, "configured", a.Accessor.IsConfigured())

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
