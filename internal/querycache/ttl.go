package querycache

import "time"

// Default TTLs per table. Snapshot entries use the configured
// SNAPSHOT_CACHE_TTL instead when it is set.
const (
	// Month snapshots only change when the warehouse reloads.
	TTLSnapshot = 15 * time.Minute

	// Client and product catalogs change rarely.
	TTLCatalog = time.Hour

	TTLAllocation = 15 * time.Minute
)
