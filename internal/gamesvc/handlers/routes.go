package handlers

import (
	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Get("/games/{id}", h.GameDetails)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
			r.Get("/admin/games", h.ListGames)
			r.Get("/admin/results", h.RecentResults)
		})
	})
}
