// Package handlers provides HTTP handlers for the client and product catalog.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// Handler handles catalog HTTP requests
type Handler struct {
	catalog      snapshots.Catalog
	defaultAlias string
	now          func() time.Time
	log          zerolog.Logger
}

// NewHandler creates a new catalog handler
func NewHandler(catalog snapshots.Catalog, defaultAlias string, log zerolog.Logger) *Handler {
	return &Handler{
		catalog:      catalog,
		defaultAlias: defaultAlias,
		now:          time.Now,
		log:          log.With().Str("handler", "catalog").Logger(),
	}
}

// HandleGetClients handles GET /api/catalog/clients
func (h *Handler) HandleGetClients(w http.ResponseWriter, r *http.Request) {
	alias := strings.TrimSpace(r.URL.Query().Get("alias"))
	if alias == "" {
		alias = h.defaultAlias
	}

	clients, err := h.catalog.Clients(r.Context(), alias)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"alias":   alias,
			"clients": clients,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetProducts handles GET /api/catalog/products
// Query params: alias, year, month, clients
func (h *Handler) HandleGetProducts(w http.ResponseWriter, r *http.Request) {
	q, err := snapshots.ParseQueryParams(r.URL.Query(), h.defaultAlias, h.now())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, err := h.catalog.Products(r.Context(), q)
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"alias":    q.Alias,
			"year":     q.Year,
			"month":    q.Month,
			"products": products,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeCatalogError(w http.ResponseWriter, err error) {
	if errors.Is(err, snapshots.ErrMissingAlias) || errors.Is(err, snapshots.ErrInvalidPeriod) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.log.Error().Err(err).Msg("Failed to query catalog")
	h.writeError(w, http.StatusInternalServerError, "failed to query catalog")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
