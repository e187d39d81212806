package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/di"
	testhelpers "github.com/aristath/debtfolio/internal/testing"
)

func newTestServer(t *testing.T) (*Server, *di.Container) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:              dir,
		WarehouseDBPath:      filepath.Join(dir, "warehouse.db"),
		CacheDBPath:          filepath.Join(dir, "cache.db"),
		Port:                 0,
		LogLevel:             "info",
		DefaultAlias:         "UNIB",
		SnapshotCacheTTL:     time.Minute,
		CacheCleanupSchedule: "0 */30 * * * *",
		WarmupSchedule:       "0 0 6 * * *",
		HistoryMonths:        3,
	}

	log := zerolog.New(nil).Level(zerolog.Disabled)
	container, jobs, err := di.Wire(cfg, log)
	require.NoError(t, err)
	t.Cleanup(container.Close)

	s := New(Config{
		Log:       log,
		Config:    cfg,
		Container: container,
		Jobs:      jobs,
		Version:   "test",
	})
	s.systemHandlers.hostStats = func() (float64, float64) { return 12.5, 40 }

	return s, container
}

func seedWarehouse(t *testing.T, container *di.Container) {
	testhelpers.NewWarehouse(t, container.WarehouseDB.Conn()).
		Contract(7, "UNIB").
		Product(10, "Deuda Gubernamental").
		Issuer(testhelpers.IssuerRow{
			IssuerID:       100,
			IssuerName:     "MBONO",
			Series:         "261203",
			PaperType:      "Gubernamental",
			InstrumentType: "Tasa Fija",
			MaturityDate:   "2026-12-03",
			RatingSP:       "mxAAA",
		}).
		Position(testhelpers.PositionRow{
			ClientID:    7,
			ProductID:   10,
			IssuerID:    100,
			RecordedAt:  "2025-01-31",
			RawYield:    "9.85%",
			MarketValue: testhelpers.Float(1000),
		}).
		Statistic(testhelpers.StatisticRow{
			ClientID:      7,
			Alias:         "UNIB",
			ProductID:     10,
			AssetClassID:  testhelpers.Int(1),
			StatisticDate: "2025-01-31",
			TotalPosition: 1000,
		})
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestSystemStatus(t *testing.T) {
	s, container := newTestServer(t)
	container.Scheduler.Start()
	defer container.Scheduler.Stop()

	w := get(t, s, "/api/system/status")
	require.Equal(t, http.StatusOK, w.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
	assert.Equal(t, 12.5, resp.CPUPercent)
	assert.Equal(t, 40.0, resp.MemoryPercent)
	require.Len(t, resp.Databases, 2)
	assert.Equal(t, "warehouse", resp.Databases[0].Name)
	assert.Equal(t, "cache", resp.Databases[1].Name)
	assert.True(t, resp.Databases[0].Healthy)

	require.Len(t, resp.Jobs, 2)
	assert.Equal(t, "query_cache_cleanup", resp.Jobs[0].Name)
	assert.Equal(t, "snapshot_warmup", resp.Jobs[1].Name)
	assert.NotEmpty(t, resp.Jobs[0].NextRun)
}

func TestDatabaseStats(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(t, s, "/api/system/database/stats")
	require.Equal(t, http.StatusOK, w.Code)

	var resp DatabaseStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Databases, 2)
	assert.Greater(t, resp.TotalSizeBytes, int64(0))
	assert.NotEmpty(t, resp.TotalSize)
}

func TestTriggerJob(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		job        string
		wantStatus int
	}{
		{"cache cleanup", "query_cache_cleanup", http.StatusOK},
		{"warm-up on empty warehouse", "snapshot_warmup", http.StatusOK},
		{"unknown job", "nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/system/jobs/"+tt.job, nil)
			w := httptest.NewRecorder()
			s.Router().ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestModuleRoutes(t *testing.T) {
	s, container := newTestServer(t)
	seedWarehouse(t, container)

	tests := []struct {
		name       string
		target     string
		wantStatus int
	}{
		{"debt report", "/api/debt/report?year=2025&month=1", http.StatusOK},
		{"debt report empty month", "/api/debt/report?year=2025&month=2", http.StatusNotFound},
		{"debt report bad month", "/api/debt/report?year=2025&month=13", http.StatusBadRequest},
		{"debt history", "/api/debt/history?year=2025&month=2&months=2", http.StatusOK},
		{"allocation", "/api/allocation?year=2025&month=1", http.StatusOK},
		{"allocation empty", "/api/allocation?year=2024&month=1", http.StatusNotFound},
		{"catalog clients", "/api/catalog/clients", http.StatusOK},
		{"catalog products", "/api/catalog/products?year=2025&month=1", http.StatusOK},
		{"unknown route", "/api/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, tt.target)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/debt/report", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
