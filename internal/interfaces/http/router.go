// Package http wires the chi route tree and the HTTP server of the EVA API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/razinkele/marbefes-eva-app/internal/infrastructure/monitoring/logging"
	"github.com/razinkele/marbefes-eva-app/internal/interfaces/http/handlers"
	"github.com/razinkele/marbefes-eva-app/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	AssessmentHandler *handlers.AssessmentHandler
	ComponentHandler  *handlers.ComponentHandler
	HealthHandler     *handlers.HealthHandler

	// MetricsHandler serves the Prometheus scrape endpoint; nil disables it.
	MetricsHandler http.Handler

	// RequestMetrics feeds per-request observations; nil disables them.
	RequestMetrics middleware.RequestMetrics

	Logger      logging.Logger
	CORSOrigins []string
	MaxBodySize int64
}

// NewRouter constructs the complete HTTP route tree: global middleware,
// public health endpoints, the metrics endpoint, and the /api/v1 resource
// groups.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if cfg.MaxBodySize > 0 {
		r.Use(limitBodySize(cfg.MaxBodySize))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.RequestMetrics, middleware.DefaultLoggingConfig()))

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		if h := cfg.AssessmentHandler; h != nil {
			api.Post("/assessments", h.Run)
			api.Get("/methodology", h.Methodology)
		}
		if h := cfg.ComponentHandler; h != nil {
			api.Get("/aggregate", h.Aggregate)
			api.Route("/components", func(cr chi.Router) {
				cr.Get("/", h.List)
				cr.Put("/{name}", h.Save)
				cr.Get("/{idOrName}", h.Get)
				cr.Delete("/{idOrName}", h.Delete)
			})
		}
	})

	return r
}

// limitBodySize caps request bodies so oversized datasets fail early.
func limitBodySize(max int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, max)
			next.ServeHTTP(w, r)
		})
	}
}
