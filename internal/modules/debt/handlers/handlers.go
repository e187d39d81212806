// Package handlers provides HTTP handlers for debt portfolio reports.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/debtfolio/internal/modules/debt"
	"github.com/aristath/debtfolio/internal/modules/rates"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

const maxHistoryMonths = 60

// Handler handles debt report HTTP requests
type Handler struct {
	service       *debt.Service
	defaultAlias  string
	historyMonths int
	now           func() time.Time
	log           zerolog.Logger
}

// NewHandler creates a new debt report handler
func NewHandler(service *debt.Service, defaultAlias string, historyMonths int, log zerolog.Logger) *Handler {
	if historyMonths < 1 {
		historyMonths = 12
	}
	return &Handler{
		service:       service,
		defaultAlias:  defaultAlias,
		historyMonths: historyMonths,
		now:           time.Now,
		log:           log.With().Str("handler", "debt").Logger(),
	}
}

// HandleGetReport handles GET /api/debt/report
// Query params: alias, year, month, clients, products, inflation, q (row filter)
func (h *Handler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	q, opts, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.Report(r.Context(), q, opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"id":               report.ID,
			"alias":            report.Alias,
			"cutoff_date":      formatDate(report.CutoffDate),
			"inflation_annual": report.InflationAnnual,
			"kpis":             report.KPIs,
			"summary":          report.Summary,
			"rows":             report.Filter(r.URL.Query().Get("q")),
			"composition": map[string]interface{}{
				"paper_type":      report.CompositionByPaperType(),
				"instrument_type": report.CompositionByInstrumentType(),
			},
			"risk_by_rating": report.RiskByRating(),
		},
		"metadata": map[string]interface{}{
			"timestamp": report.GeneratedAt.Format(time.RFC3339),
			"period":    fmt.Sprintf("%04d-%02d", q.Year, q.Month),
			"positions": len(report.Lines),
		},
	})
}

// HandleGetHistory handles GET /api/debt/history
// Query params: as the report, plus months (trailing window ending at year/month)
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	q, opts, err := h.parseRequest(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	months := h.historyMonths
	if v := r.URL.Query().Get("months"); v != "" {
		months, err = strconv.Atoi(strings.TrimSpace(v))
		if err != nil || months < 1 || months > maxHistoryMonths {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be between 1 and %d", maxHistoryMonths))
			return
		}
	}

	points, err := h.service.History(r.Context(), q, months, opts)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"alias":  q.Alias,
			"months": months,
			"points": points,
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) parseRequest(r *http.Request) (snapshots.Query, debt.Options, error) {
	values := r.URL.Query()
	q, err := snapshots.ParseQueryParams(values, h.defaultAlias, h.now())
	if err != nil {
		return q, debt.Options{}, err
	}

	var opts debt.Options
	if v := strings.TrimSpace(values.Get("inflation")); v != "" {
		inflation := rates.ParseRate(v)
		if inflation == nil {
			return q, opts, fmt.Errorf("%w: inflation %q", snapshots.ErrInvalidParam, v)
		}
		opts.InflationAnnual = inflation
	}
	return q, opts, nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, debt.ErrNoData):
		h.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, snapshots.ErrInvalidPeriod),
		errors.Is(err, snapshots.ErrMissingAlias),
		errors.Is(err, snapshots.ErrInvalidParam):
		h.writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg("Failed to build debt report")
		h.writeError(w, http.StatusInternalServerError, "failed to build debt report")
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
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
