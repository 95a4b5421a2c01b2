package calculator

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the mortgage and currency endpoints. limit wraps the
// compute-heavy routes; pass nil to leave them unthrottled.
//
// PUT /currency/rates/{code} is unauthenticated. Deployments expose it only
// behind an admin gateway.
func (h *Handler) RegisterRoutes(r chi.Router, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/mortgage", func(r chi.Router) {
		r.Get("/terms", h.Terms)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/calculate", h.Calculate)
			r.Post("/schedule", h.Schedule)
			r.Post("/compare", h.Compare)
		})
	})

	r.Route("/currency", func(r chi.Router) {
		r.Get("/rates", h.Rates)
		r.Put("/rates/{code}", h.SetRate)
		r.With(limit).Post("/convert", h.Convert)
	})
}
