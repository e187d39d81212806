// Package handlers provides HTTP handlers for portfolio allocation breakdowns.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/modules/allocation"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler handles allocation HTTP requests
type Handler struct {
	service      *allocation.Service
	defaultAlias string
	now          func() time.Time
	log          zerolog.Logger
}

// NewHandler creates a new allocation handler
func NewHandler(service *allocation.Service, defaultAlias string, log zerolog.Logger) *Handler {
	return &Handler{
		service:      service,
		defaultAlias: defaultAlias,
		now:          time.Now,
		log:          log.With().Str("handler", "allocation").Logger(),
	}
}

// RegisterRoutes registers all allocation routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/allocation", h.HandleGetAllocation)
}

// HandleGetAllocation handles GET /api/allocation
// Query params: alias, year, month, top (products kept before folding into "Otros")
func (h *Handler) HandleGetAllocation(w http.ResponseWriter, r *http.Request) {
	q, err := snapshots.ParseQueryParams(r.URL.Query(), h.defaultAlias, h.now())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	top := 0
	if v := strings.TrimSpace(r.URL.Query().Get("top")); v != "" {
		top, err = strconv.Atoi(v)
		if err != nil || top < 0 {
			h.writeError(w, http.StatusBadRequest, "top must be a non-negative integer")
			return
		}
	}

	breakdown, err := h.service.Breakdown(r.Context(), q)
	if err != nil {
		if errors.Is(err, snapshots.ErrInvalidPeriod) || errors.Is(err, snapshots.ErrMissingAlias) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to build allocation")
		h.writeError(w, http.StatusInternalServerError, "failed to build allocation")
		return
	}
	if breakdown.IsEmpty() {
		h.writeError(w, http.StatusNotFound, "no holdings for the selected period")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"alias":          breakdown.Alias,
			"statistic_date": breakdown.StatisticDate.Format("2006-01-02"),
			"total":          breakdown.Total,
			"by_asset_class": breakdown.ByAssetClass,
			"by_product":     allocation.TopN(breakdown.ByProduct, top),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
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
