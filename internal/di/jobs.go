package di

import (
	"fmt"

	"github.com/aristath/debtfolio/internal/config"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/internal/querycache"
	"github.com/aristath/debtfolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// RegisterJobs creates the background jobs and registers them with a new
// scheduler on container.Scheduler. The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	sched := scheduler.New(log)
	instances := &JobInstances{}

	instances.CacheCleanup = querycache.NewCleanupJob(container.CacheRepo, log)
	if err := sched.AddJob(cfg.CacheCleanupSchedule, instances.CacheCleanup); err != nil {
		return nil, fmt.Errorf("failed to register cache cleanup job: %w", err)
	}

	if cfg.WarmupSchedule != "" {
		instances.Warmup = snapshots.NewWarmupJob(container.SnapshotSource, cfg.DefaultAlias, log)
		if err := sched.AddJob(cfg.WarmupSchedule, instances.Warmup); err != nil {
			return nil, fmt.Errorf("failed to register snapshot warm-up job: %w", err)
		}
	}

	container.Scheduler = sched
	return instances, nil
}
