// Package api serves the process's HTTP surface: liveness and readiness
// probes, a read-only view of the scheduler and Prometheus metrics.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// RouterOption customises NewRouter.
type RouterOption func(*routerConfig)

type routerConfig struct {
	metrics      http.Handler
	ready        func(context.Context) error
	schedulerAPI bool
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) RouterOption {
	return func(c *routerConfig) { c.metrics = h }
}

// WithReadiness mounts /api/ready backed by check.
func WithReadiness(check func(context.Context) error) RouterOption {
	return func(c *routerConfig) { c.ready = check }
}

// WithSchedulerAPI toggles the /api/scheduler routes.
func WithSchedulerAPI(enabled bool) RouterOption {
	return func(c *routerConfig) { c.schedulerAPI = enabled }
}

func NewRouter(h *Handlers, log zerolog.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{schedulerAPI: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()
	r.Use(hlog.NewHandler(log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-Id"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, took time.Duration) {
		hlog.FromRequest(r).Debug().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("took", took).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	// Health
	r.Get("/api/health", h.health)
	if cfg.ready != nil {
		r.Get("/api/ready", h.readiness(cfg.ready))
	}

	// ===== Scheduler =====
	if cfg.schedulerAPI {
		r.Route("/api/scheduler", func(r chi.Router) {
			r.Get("/", h.schedulerStatus)
			r.Get("/jobs", h.listJobs)
			r.Get("/jobs/{id}", h.getJob)
		})
	}

	if cfg.metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.metrics)
	}

	return r
}
