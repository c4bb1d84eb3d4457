package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all variance routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/variance", func(r chi.Router) {
		r.Post("/apply", h.HandleApplyVariance)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/profile", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetProfile(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetMetrics(w, r, chi.URLParam(r, "id"))
			})
			r.Post("/validate", func(w http.ResponseWriter, r *http.Request) {
				h.HandleValidate(w, r, chi.URLParam(r, "id"))
			})
			r.Post("/weekend", func(w http.ResponseWriter, r *http.Request) {
				h.HandleWeekendDecision(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/executions", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetHistory(w, r, chi.URLParam(r, "id"))
			})
			r.Post("/executions/{recordID}", func(w http.ResponseWriter, r *http.Request) {
				h.HandleRecordOutcome(w, r, chi.URLParam(r, "id"), chi.URLParam(r, "recordID"))
			})
		})
	})
}
