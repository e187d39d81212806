package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all catalog routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/clients", h.HandleGetClients)
		r.Get("/products", h.HandleGetProducts)
	})
}
