package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all evolution routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evolution/{id}", func(r chi.Router) {
		r.Post("/process", func(w http.ResponseWriter, r *http.Request) {
			h.HandleProcess(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/history", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetHistory(w, r, chi.URLParam(r, "id"))
		})
		r.Get("/milestones", func(w http.ResponseWriter, r *http.Request) {
			h.HandleGetMilestones(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/predictions", func(w http.ResponseWriter, r *http.Request) {
			h.HandlePredictions(w, r, chi.URLParam(r, "id"))
		})
		r.Post("/simulate", func(w http.ResponseWriter, r *http.Request) {
			h.HandleSimulate(w, r, chi.URLParam(r, "id"))
		})
	})
}
