package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all personality routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/personalities", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Post("/", h.HandleGenerate)
		r.Post("/diverse", h.HandleGenerateDiverse)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGet(w, r, chi.URLParam(r, "id"))
			})
			r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
				h.HandleDelete(w, r, chi.URLParam(r, "id"))
			})
			r.Get("/traits", func(w http.ResponseWriter, r *http.Request) {
				h.HandleGetTraits(w, r, chi.URLParam(r, "id"))
			})
		})
	})
}
