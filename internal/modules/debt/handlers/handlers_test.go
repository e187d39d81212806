package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/debt"
	testhelpers "github.com/aristath/debtfolio/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHandler(t *testing.T) (*Handler, *testhelpers.MockSource) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	source := testhelpers.NewMockSource()
	source.SetSnapshot(2025, 1, &domain.Snapshot{
		Alias:      "UNIB",
		CutoffDate: testhelpers.Date(2025, time.January, 31),
		Positions:  testhelpers.NewPositionFixtures(),
	})
	inflation := 0.035
	handler := NewHandler(debt.NewService(source, &inflation, logger), "UNIB", 3, logger)
	handler.now = func() time.Time { return time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC) }
	return handler, source
}

func serve(t *testing.T, h *Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	router := chi.NewRouter()
	router.Route("/api", h.RegisterRoutes)
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHandleGetReport(t *testing.T) {
	handler, _ := setupTestHandler(t)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		validate       func(*testing.T, map[string]interface{})
	}{
		{
			name:           "defaults to current month",
			target:         "/api/debt/report",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "UNIB", data["alias"])
				assert.Equal(t, "2025-01-31", data["cutoff_date"])
				assert.Equal(t, 0.035, data["inflation_annual"])

				rows := data["rows"].([]interface{})
				require.Len(t, rows, 5)
				last := rows[4].(map[string]interface{})
				assert.Equal(t, "TOTAL", last["instrument"])
				assert.Equal(t, "100.00%", last["weight"])

				composition := data["composition"].(map[string]interface{})
				assert.Len(t, composition["paper_type"], 2)
				assert.NotEmpty(t, data["risk_by_rating"])

				kpis := data["kpis"].(map[string]interface{})
				assert.Equal(t, float64(4), kpis["instrument_count"])
			},
		},
		{
			name:           "row filter and inflation",
			target:         "/api/debt/report?year=2025&month=1&q=bimbo&inflation=4.5%25",
			expectedStatus: http.StatusOK,
			validate: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Len(t, data["rows"], 2)
				assert.InDelta(t, 0.045, data["inflation_annual"], 1e-12)
			},
		},
		{
			name:           "empty month",
			target:         "/api/debt/report?year=2024&month=6",
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid month",
			target:         "/api/debt/report?month=14",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid inflation",
			target:         "/api/debt/report?inflation=abc",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid client list",
			target:         "/api/debt/report?clients=1,a",
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, handler, tt.target)
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			response := decode(t, w)
			if tt.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, response["error"])
				return
			}
			if tt.validate != nil {
				tt.validate(t, response)
			}
		})
	}
}

func TestHandleGetReport_SourceFailure(t *testing.T) {
	handler, source := setupTestHandler(t)
	source.SetError(errors.New("warehouse unavailable"))

	w := serve(t, handler, "/api/debt/report")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "failed to build debt report", decode(t, w)["error"])
}

func TestHandleGetHistory(t *testing.T) {
	handler, source := setupTestHandler(t)

	w := serve(t, handler, "/api/debt/history?year=2025&month=2")
	require.Equal(t, http.StatusOK, w.Code)

	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, float64(3), data["months"])
	points := data["points"].([]interface{})
	require.Len(t, points, 1)
	assert.Equal(t, float64(1), points[0].(map[string]interface{})["month"])
	assert.Len(t, source.Calls(), 3)

	w = serve(t, handler, "/api/debt/history?months=0")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(t, handler, "/api/debt/history?months=61")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterRoutes(t *testing.T) {
	handler, _ := setupTestHandler(t)
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		handler.RegisterRoutes(router)
	})

	patterns := []string{}
	_ = chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		patterns = append(patterns, method+" "+route)
		return nil
	})
	assert.ElementsMatch(t, []string{"GET /debt/report", "GET /debt/history"}, patterns)
}
