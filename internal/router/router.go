// Package router sets up the HTTP routes and middleware chain for the
// StandPress cover editor API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"standpress/internal/handlers"
	"standpress/internal/middleware"
	"standpress/internal/session"
)

// New creates the configured Chi router. uploadLimiter may be nil, in which
// case uploads are not rate limited.
func New(sessions middleware.SessionGetter, api *handlers.API, allowedOrigins []string, uploadLimiter *middleware.RateLimiter) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Language", "Content-Type", "X-Request-Id", session.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.LoadSession(sessions))

	// Health check, no session.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RequireSession)

		var uploads []func(http.Handler) http.Handler
		if uploadLimiter != nil {
			uploads = append(uploads, uploadLimiter.Middleware)
		}
		api.Mount(r, uploads...)
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
