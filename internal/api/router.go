// Package api assembles the HTTP surface of the report service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/spending-reports/internal/api/handlers"
	"github.com/dvloznov/spending-reports/internal/api/middleware"
)

// RouterConfig carries the handlers and limits for NewRouter.
type RouterConfig struct {
	Reports *handlers.ReportsHandler
	Jobs    *handlers.JobsHandler
	Log     zerolog.Logger

	// RateLimit is requests per second for /api; zero disables limiting.
	RateLimit float64
	Burst     int
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(cfg.Log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Log))
	r.Use(middleware.CORS)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			burst := cfg.Burst
			if burst <= 0 {
				burst = 1
			}
			r.Use(middleware.RateLimit(cfg.RateLimit, burst))
		}

		r.Get("/reports/home", cfg.Reports.Home)
		r.Get("/reports/mobile", cfg.Reports.Mobile)
		r.Get("/reports/weekday", cfg.Reports.Weekday)

		if cfg.Jobs != nil {
			r.Post("/reports/weekday/jobs", cfg.Jobs.EnqueueWeekdayReport)
			r.Get("/jobs", cfg.Jobs.ListJobs)
			r.Get("/jobs/{id}", cfg.Jobs.GetJob)
		}
	})

	return r
}
