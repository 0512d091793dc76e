package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"contentforge/internal/http/handlers"
	"contentforge/internal/infra"
	"contentforge/internal/middleware"
)

// NewRouter assembles the public API surface: enqueue and read endpoints
// behind the identity middleware, plus health and metrics.
func NewRouter(app *handlers.App, cfg *infra.Config, logger zerolog.Logger, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.RateLimit(cfg.RateLimitPerMin, time.Minute),
		middleware.CORS(cfg.CORSAllowedOrigins),
		middleware.I18N(lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Identity)

		r.Route("/v1/jobs", func(r chi.Router) {
			r.Post("/", app.JobsEnqueue)
			r.Get("/{job_id}", app.JobStatus)
			r.Get("/{job_id}/artifacts.zip", app.JobArtifacts)
		})
		r.Get("/v1/contents/{content_id}", app.ContentByID)
		r.Get("/v1/providers", app.ProvidersList)
		r.Route("/v1/wallet", func(r chi.Router) {
			r.Get("/", app.WalletBalance)
			r.Get("/transactions", app.WalletTransactions)
			r.Post("/topup", app.WalletTopup)
		})
	})

	return r
}

// NewWorkerRouter assembles the worker's internal surface: the per-job
// process endpoint, health, and metrics. No identity middleware; the
// endpoint is reachable only inside the deployment boundary.
func NewWorkerRouter(app *handlers.App, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestID,
		middleware.Logger(logger),
	)

	r.Get("/v1/healthz", app.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/internal/jobs/process", app.ProcessJob)

	return r
}
