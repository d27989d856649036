/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the scheduling frontend

ROUTE GROUPS:
  /api/workers/*      Workers, patterns, exception submission, resolution
  /api/exceptions/*   Pending queue and decisions
  /api/team/*         Snapshots and available-worker filters

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Get("/{id}/patterns", h.ListPatterns)
			r.Put("/{id}/patterns", h.UpsertPattern)
			r.Post("/{id}/patterns/preset", h.ApplyPreset)
			r.Post("/{id}/overrides", h.SubmitOverride)
			r.Post("/{id}/time-off", h.CreateTimeOff)
			r.Get("/{id}/availability", h.ResolveWorker)
		})

		r.Route("/exceptions", func(r chi.Router) {
			r.Get("/pending", h.ListPending)
			r.Post("/{kind}/{id}/decide", h.Decide)
		})

		r.Route("/team", func(r chi.Router) {
			r.Get("/snapshot", h.TeamSnapshot)
			r.Get("/week", h.TeamWeek)
			r.Get("/available", h.AvailableWorkers)
		})
	})

	return r
}
