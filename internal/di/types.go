// Package di provides dependency injection type definitions.
package di

import (
	"github.com/aristath/debtfolio/internal/database"
	"github.com/aristath/debtfolio/internal/modules/allocation"
	"github.com/aristath/debtfolio/internal/modules/debt"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/internal/querycache"
	"github.com/aristath/debtfolio/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// Databases: warehouse (read-mostly positions, rates, statistics) and cache
// (expiring query results). Repositories read the warehouse; services build
// reports on top of the cached snapshot source.
type Container struct {
	// Databases
	WarehouseDB *database.DB
	CacheDB     *database.DB

	// Repositories
	SnapshotRepo   *snapshots.Repository
	AllocationRepo *allocation.Repository
	CacheRepo      *querycache.Repository

	// Services
	SnapshotSource    *snapshots.CachedSource
	Catalog           *snapshots.CachedCatalog
	DebtService       *debt.Service
	AllocationService *allocation.Service

	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered background jobs so callers can trigger
// them outside their schedule.
type JobInstances struct {
	CacheCleanup *querycache.CleanupJob
	Warmup       *snapshots.WarmupJob // nil when warm-up is disabled
}

// Close closes every open database. Safe to call on a partially built
// container.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.CacheDB != nil {
		_ = c.CacheDB.Close()
	}
	if c.WarehouseDB != nil {
		_ = c.WarehouseDB.Close()
	}
}
