package snapshots

import (
	"context"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/rs/zerolog"
)

// Refresher reloads a snapshot and stores it in the cache.
type Refresher interface {
	Refresh(ctx context.Context, q Query) (*domain.Snapshot, error)
}

// WarmupJob pre-loads the current month snapshot of an alias so the first
// report request of the day is served from the cache.
type WarmupJob struct {
	refresher Refresher
	alias     string
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewWarmupJob creates a snapshot warm-up job for alias.
func NewWarmupJob(refresher Refresher, alias string, log zerolog.Logger) *WarmupJob {
	return &WarmupJob{
		refresher: refresher,
		alias:     alias,
		timeout:   2 * time.Minute,
		now:       time.Now,
		log:       log.With().Str("job", "snapshot_warmup").Logger(),
	}
}

// Run refreshes the current and previous month.
func (j *WarmupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	current := CurrentMonth(j.alias, j.now())
	for _, q := range []Query{current.ShiftMonths(-1), current} {
		snap, err := j.refresher.Refresh(ctx, q)
		if err != nil {
			j.log.Error().Err(err).Str("query", q.Key()).Msg("Failed to warm snapshot cache")
			return err
		}
		j.log.Info().
			Str("query", q.Key()).
			Int("positions", len(snap.Positions)).
			Msg("Warmed snapshot cache")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *WarmupJob) Name() string {
	return "snapshot_warmup"
}
