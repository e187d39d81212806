package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/debtfolio/internal/database"
	"github.com/aristath/debtfolio/internal/di"
	"github.com/aristath/debtfolio/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	version     string
	startupTime time.Time
	databases   []*database.DB
	scheduler   *scheduler.Scheduler
	jobs        map[string]scheduler.Job
	hostStats   func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, version string, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		version:     version,
		startupTime: time.Now(),
		scheduler:   container.Scheduler,
		jobs:        make(map[string]scheduler.Job),
	}
	h.hostStats = h.getSystemStats

	for _, db := range []*database.DB{container.WarehouseDB, container.CacheDB} {
		if db != nil {
			h.databases = append(h.databases, db)
		}
	}

	if jobs != nil {
		if jobs.CacheCleanup != nil {
			h.jobs[jobs.CacheCleanup.Name()] = jobs.CacheCleanup
		}
		if jobs.Warmup != nil {
			h.jobs[jobs.Warmup.Name()] = jobs.Warmup
		}
	}

	return h
}

// DBInfo describes one database in status responses
type DBInfo struct {
	Name      string `json:"name"`
	Path      string `json:"path"`
	Profile   string `json:"profile"`
	Healthy   bool   `json:"healthy"`
	SizeBytes int64  `json:"size_bytes"`
	WALBytes  int64  `json:"wal_size_bytes"`
	Size      string `json:"size"`
	Error     string `json:"error,omitempty"`
}

// JobInfo describes one scheduled job
type JobInfo struct {
	Name    string `json:"name"`
	NextRun string `json:"next_run,omitempty"`
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status        string    `json:"status"` // "healthy" or "degraded"
	Version       string    `json:"version"`
	Uptime        string    `json:"uptime"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent"`
	Databases     []DBInfo  `json:"databases"`
	Jobs          []JobInfo `json:"jobs"`
}

// DatabaseStatsResponse represents database statistics
type DatabaseStatsResponse struct {
	Databases      []DBInfo `json:"databases"`
	TotalSizeBytes int64    `json:"total_size_bytes"`
	TotalSize      string   `json:"total_size"`
	LastChecked    string   `json:"last_checked"`
}

// HandleSystemStatus returns host, database and scheduler status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	dbs := h.databaseInfo(r.Context())

	status := "healthy"
	for _, db := range dbs {
		if !db.Healthy {
			status = "degraded"
		}
	}

	cpuPct, memPct := h.hostStats()
	uptime := time.Since(h.startupTime)

	h.writeJSON(w, SystemStatusResponse{
		Status:        status,
		Version:       h.version,
		Uptime:        strings.TrimSpace(humanize.RelTime(h.startupTime, time.Now(), "", "")),
		UptimeSeconds: int64(uptime.Seconds()),
		CPUPercent:    cpuPct,
		MemoryPercent: memPct,
		Databases:     dbs,
		Jobs:          h.jobInfo(),
	})
}

// HandleDatabaseStats returns database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	dbs := h.databaseInfo(r.Context())
	var total int64
	for _, db := range dbs {
		total += db.SizeBytes + db.WALBytes
	}

	h.writeJSON(w, DatabaseStatsResponse{
		Databases:      dbs,
		TotalSizeBytes: total,
		TotalSize:      humanize.IBytes(uint64(total)),
		LastChecked:    time.Now().Format(time.RFC3339),
	})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	job, ok := h.jobs[name]
	if !ok {
		h.writeStatus(w, http.StatusNotFound, map[string]interface{}{
			"status":  "error",
			"message": "unknown job: " + name,
		})
		return
	}

	start := time.Now()
	var err error
	if h.scheduler != nil {
		err = h.scheduler.RunNow(job)
	} else {
		err = job.Run()
	}
	if err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manual job run failed")
		h.writeStatus(w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"status":   "success",
		"job":      name,
		"duration": time.Since(start).String(),
	})
}

func (h *SystemHandlers) databaseInfo(ctx context.Context) []DBInfo {
	out := make([]DBInfo, 0, len(h.databases))
	for _, db := range h.databases {
		info := DBInfo{
			Name:    db.Name(),
			Path:    db.Path(),
			Profile: string(db.Profile()),
			Healthy: true,
		}

		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := db.QuickCheck(checkCtx); err != nil {
			info.Healthy = false
			info.Error = err.Error()
		}
		cancel()

		if stats, err := db.GetStats(); err == nil {
			info.SizeBytes = stats.SizeBytes
			info.WALBytes = stats.WALSizeBytes
		} else {
			h.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to read database stats")
		}
		info.Size = humanize.IBytes(uint64(info.SizeBytes + info.WALBytes))

		out = append(out, info)
	}
	return out
}

func (h *SystemHandlers) jobInfo() []JobInfo {
	out := make([]JobInfo, 0, len(h.jobs))
	for name := range h.jobs {
		info := JobInfo{Name: name}
		if h.scheduler != nil {
			if next := h.scheduler.NextRun(name); !next.IsZero() {
				info.NextRun = next.Format(time.RFC3339)
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// getSystemStats calculates CPU and RAM usage percentages
// Samples CPU over 100ms so the status call stays fast
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	h.writeStatus(w, http.StatusOK, data)
}

func (h *SystemHandlers) writeStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
