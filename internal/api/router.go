package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/features", func(r chi.Router) {
			r.Get("/", s.handleListFeatures)

			r.Route("/{feature}", func(r chi.Router) {
				r.Get("/", s.handleGetValue)
				r.Put("/", s.handleSetValue)
				r.Get("/space", s.handleValueSpace)
			})
		})
	})

	return r
}
