package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mackflow-bridge/internal/common/logger"
)

// NewRouter wires the HTTP surface: the channel webhook, the direct triage
// endpoint, the admin smoke check, health and metrics.
func NewRouter(h *Handler, log logger.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id", "X-Admin-Key"},
	}))
	r.Use(RequestID)
	r.Use(RequestLogger(log))

	r.Post("/zpro/incoming", h.HandleZproIncoming)
	r.Post("/triage", h.HandleTriage)
	r.Get("/admin/smoke", h.HandleSmoke)
	r.Get("/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
