package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/debtfolio/internal/modules/allocation"
	testhelpers "github.com/aristath/debtfolio/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReader struct {
	holdings map[string][]allocation.Holding
}

func (s *stubReader) Holdings(_ context.Context, _ string, date time.Time) ([]allocation.Holding, error) {
	return s.holdings[date.Format("2006-01-02")], nil
}

func setupRouter() chi.Router {
	reader := &stubReader{holdings: map[string][]allocation.Holding{
		"2025-01-31": {
			{ProductID: 10, Description: "Deuda", AssetClassID: testhelpers.Int(1), Amount: decimal.NewFromInt(700)},
			{ProductID: 11, Description: "Acciones", AssetClassID: testhelpers.Int(2), Amount: decimal.NewFromInt(200)},
			{ProductID: 12, Description: "Fibras", AssetClassID: testhelpers.Int(4), Amount: decimal.NewFromInt(100)},
		},
	}}
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	handler := NewHandler(allocation.NewService(reader, nil, logger), "UNIB", logger)
	handler.now = func() time.Time { return time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC) }

	router := chi.NewRouter()
	router.Route("/api", handler.RegisterRoutes)
	return router
}

func TestHandleGetAllocation(t *testing.T) {
	router := setupRouter()

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		products       int
	}{
		{"current month", "/api/allocation", http.StatusOK, 3},
		{"top two", "/api/allocation?top=1", http.StatusOK, 2},
		{"no holdings", "/api/allocation?year=2024&month=5", http.StatusNotFound, 0},
		{"bad top", "/api/allocation?top=-1", http.StatusBadRequest, 0},
		{"bad month", "/api/allocation?month=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.target, nil))
			require.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedStatus != http.StatusOK {
				assert.NotEmpty(t, response["error"])
				return
			}

			data := response["data"].(map[string]interface{})
			assert.Equal(t, "2025-01-31", data["statistic_date"])
			assert.Equal(t, "1000", data["total"])
			assert.Len(t, data["by_product"], tt.products)
			assert.Len(t, data["by_asset_class"], 3)
		})
	}
}
