package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all debt report routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/debt", func(r chi.Router) {
		r.Get("/report", h.HandleGetReport)
		r.Get("/history", h.HandleGetHistory)
	})
}
