package di

import (
	"github.com/aristath/debtfolio/internal/modules/allocation"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/internal/querycache"
	"github.com/rs/zerolog"
)

// InitializeRepositories creates the data access layer over the opened
// databases.
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	container.SnapshotRepo = snapshots.NewRepository(container.WarehouseDB.Conn(), log)
	container.AllocationRepo = allocation.NewRepository(container.WarehouseDB.Conn(), log)
	container.CacheRepo = querycache.NewRepository(container.CacheDB.Conn())

	log.Debug().Msg("Repositories initialized")
	return nil
}
