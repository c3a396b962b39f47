package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/getrich/internal/http/account"
	"github.com/MrJamesThe3rd/getrich/internal/http/dashboard"
	"github.com/MrJamesThe3rd/getrich/internal/http/export"
	"github.com/MrJamesThe3rd/getrich/internal/http/importcsv"
	"github.com/MrJamesThe3rd/getrich/internal/http/invoice"
	"github.com/MrJamesThe3rd/getrich/internal/http/matching"
	"github.com/MrJamesThe3rd/getrich/internal/http/project"
	"github.com/MrJamesThe3rd/getrich/internal/http/transaction"
)

type Handlers struct {
	Account      *account.Handler
	Invoices     *invoice.Handler
	Projects     *project.Handler
	Transactions *transaction.Handler
	Dashboard    *dashboard.Handler
	Import       *importcsv.Handler
	Categories   *matching.Handler
	Export       *export.Handler
}

func New(h Handlers, corsOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(h.Account.TrackAuthFailures)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Account.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Dashboard.Routes(r)
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Invoices.Routes(r)
		})

		r.Route("/projects", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Projects.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/import", h.Import.Routes)

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Categories.Routes(r)
		})

		r.Route("/export", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Export.Routes(r)
		})
	})

	return router
}
