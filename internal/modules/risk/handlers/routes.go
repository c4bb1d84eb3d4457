package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all risk routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/risk/{id}", func(r chi.Router) {
		r.Post("/appetite", func(w http.ResponseWriter, r *http.Request) {
			h.HandleCalculateAppetite(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/portfolio", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePortfolioConstraints(w, r, chi.URLParam(r, "id"))
		})
	})
}
