package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"property-listings-api/internal/calculator"
	"property-listings-api/internal/handlers"
	"property-listings-api/internal/observability"
	"property-listings-api/internal/portal"
	"property-listings-api/internal/ratelimit"
)

// Deps are the collaborators the router mounts. Limiter, Portal and
// ReadyChecks are optional.
//
// TrustProxyHeaders takes the client address from X-Forwarded-For and
// X-Real-IP. Only set it when a trusted proxy overwrites those headers,
// since the rate limiter keys on the resulting address.
type Deps struct {
	Calculator        *calculator.Handler
	Limiter           *ratelimit.Limiter
	Portal            http.Handler
	ReadyChecks       map[string]handlers.Pinger
	TrustProxyHeaders bool
}

func NewRouter(deps Deps) http.Handler {

	r := chi.NewRouter()

	if deps.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(deps.ReadyChecks))

	r.Handle("/metrics", observability.PrometheusHandler())

	var limit func(http.Handler) http.Handler
	if deps.Limiter != nil {
		limit = ratelimit.Middleware(deps.Limiter)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		deps.Calculator.RegisterRoutes(r, limit)
	})

	if deps.Portal != nil {
		r.Mount(portal.Prefix, deps.Portal)
	}

	return r
}
