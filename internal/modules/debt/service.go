package debt

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// maxHistoryWorkers bounds concurrent snapshot loads for a history request.
const maxHistoryWorkers = 4

// Service loads snapshots and builds debt reports.
type Service struct {
	source    snapshots.Source
	inflation *float64
	log       zerolog.Logger
}

// NewService creates a debt report service. inflation is the default annual
// inflation used when a request does not supply one; it may be nil.
func NewService(source snapshots.Source, inflation *float64, log zerolog.Logger) *Service {
	return &Service{
		source:    source,
		inflation: inflation,
		log:       log.With().Str("service", "debt").Logger(),
	}
}

// Report loads the snapshot for q and builds its report.
func (s *Service) Report(ctx context.Context, q snapshots.Query, opts Options) (*Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if opts.InflationAnnual == nil {
		opts.InflationAnnual = s.inflation
	}

	snap, err := s.source.Snapshot(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	report, err := Build(snap, opts)
	if errors.Is(err, ErrNoData) {
		s.log.Info().
			Str("alias", q.Alias).
			Int("year", q.Year).
			Int("month", q.Month).
			Msg("No debt positions for period")
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	event := s.log.Debug().
		Str("report_id", report.ID.String()).
		Str("alias", q.Alias).
		Int("positions", len(report.Lines)).
		Float64("weighted_carry_pct", report.Summary.WeightedCarryPct)
	if report.CutoffDate != nil {
		event = event.Time("cutoff", *report.CutoffDate)
	}
	event.Msg("Built debt report")

	if report.Summary.UndefinedCarryCount > 0 {
		s.log.Warn().
			Str("report_id", report.ID.String()).
			Int("count", report.Summary.UndefinedCarryCount).
			Msg("Positions without a usable yield contribute zero carry")
	}

	return report, nil
}

// History builds one independent report for each of the trailing months
// ending at q's month, oldest first. Months without positions are skipped.
func (s *Service) History(ctx context.Context, q snapshots.Query, months int, opts Options) ([]HistoryPoint, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if months < 1 {
		return nil, fmt.Errorf("months must be positive, got %d", months)
	}

	points := make([]*HistoryPoint, months)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxHistoryWorkers)
	for i := 0; i < months; i++ {
		i := i
		mq := q.ShiftMonths(i - months + 1)
		g.Go(func() error {
			report, err := s.Report(gctx, mq, opts)
			if errors.Is(err, ErrNoData) || errors.Is(err, snapshots.ErrInvalidPeriod) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%04d-%02d: %w", mq.Year, mq.Month, err)
			}
			points[i] = &HistoryPoint{
				Year:                   mq.Year,
				Month:                  mq.Month,
				CutoffDate:             report.CutoffDate,
				WeightedCarryPct:       report.Summary.WeightedCarryPct,
				WeightedDaysToMaturity: report.Summary.WeightedDaysToMaturity,
				WeightedDurationDays:   report.Summary.WeightedDurationDays,
				MarketValue:            report.Summary.TotalMarketValue.InexactFloat64(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]HistoryPoint, 0, months)
	for _, p := range points {
		if p != nil {
			out = append(out, *p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}
