package di

import (
	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/modules/allocation"
	"github.com/aristath/debtfolio/internal/modules/debt"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/rs/zerolog"
)

// InitializeServices builds the business layer. Reports and catalogs read
// through the query cache.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.SnapshotSource = snapshots.NewCachedSource(
		container.SnapshotRepo,
		container.CacheRepo,
		cfg.SnapshotCacheTTL,
		log,
	)
	container.Catalog = snapshots.NewCachedCatalog(container.SnapshotRepo, container.CacheRepo, log)
	container.DebtService = debt.NewService(container.SnapshotSource, cfg.InflationAnnual, log)
	container.AllocationService = allocation.NewService(container.AllocationRepo, container.CacheRepo, log)

	log.Debug().Msg("Services initialized")
	return nil
}
