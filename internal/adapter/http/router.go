package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nusabooks/nusabooks/internal/adapter/http/handler"
	"github.com/nusabooks/nusabooks/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler  *handler.AccountHandler
	TemplateHandler *handler.TemplateHandler
	ScheduleHandler *handler.ScheduleHandler
	ReportHandler   *handler.ReportHandler
	HealthHandler   *handler.HealthHandler
	Logger          zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Get("/accounts", cfg.AccountHandler.List)

		// Templates
		r.Route("/templates", func(r chi.Router) {
			r.Get("/", cfg.TemplateHandler.List)
			r.Post("/{id}/execute", cfg.TemplateHandler.Execute)
			r.Post("/{id}/preview", cfg.TemplateHandler.Preview)
		})

		// Schedules
		r.Route("/schedules", func(r chi.Router) {
			r.Post("/autopost", cfg.ScheduleHandler.AutoPost)
			r.Post("/{id}/post-all", cfg.ScheduleHandler.PostAllPending)
		})
		r.Route("/schedule-entries", func(r chi.Router) {
			r.Post("/{id}/post", cfg.ScheduleHandler.PostEntry)
			r.Post("/{id}/skip", cfg.ScheduleHandler.SkipEntry)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/general-ledger", cfg.ReportHandler.GeneralLedger)
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/aging", cfg.ReportHandler.Aging)
			r.Get("/tax-summary", cfg.ReportHandler.TaxSummary)
			r.Get("/net-vat", cfg.ReportHandler.NetVAT)
		})
	})

	return r
}
