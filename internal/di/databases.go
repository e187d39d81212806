package di

import (
	"fmt"

	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/database"
	"github.com/rs/zerolog"
)

// InitializeDatabases opens the warehouse and cache databases and applies
// their schemas.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// 1. warehouse.db - positions, issuers, reference rates, client statistics
	warehouseDB, err := database.New(database.Config{
		Path:    cfg.WarehouseDBPath,
		Profile: database.ProfileWarehouse,
		Name:    database.NameWarehouse,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize warehouse database: %w", err)
	}
	container.WarehouseDB = warehouseDB

	// 2. cache.db - expiring snapshots, catalogs and allocations
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath,
		Profile: database.ProfileCache,
		Name:    database.NameCache,
	})
	if err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{warehouseDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply %s schema: %w", db.Name(), err)
		}
		log.Debug().
			Str("database", db.Name()).
			Str("path", db.Path()).
			Str("profile", string(db.Profile())).
			Msg("Database ready")
	}

	return container, nil
}
