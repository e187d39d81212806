package allocation

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/internal/querycache"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HoldingsReader loads month-end holdings.
type HoldingsReader interface {
	Holdings(ctx context.Context, alias string, date time.Time) ([]Holding, error)
}

// Service builds allocation breakdowns, optionally through the query cache.
type Service struct {
	reader HoldingsReader
	cache  *querycache.Repository
	log    zerolog.Logger
}

// NewService creates an allocation service. cache may be nil.
func NewService(reader HoldingsReader, cache *querycache.Repository, log zerolog.Logger) *Service {
	return &Service{
		reader: reader,
		cache:  cache,
		log:    log.With().Str("service", "allocation").Logger(),
	}
}

// Breakdown returns the allocation of the query's alias at its month end.
// Client and product filters are not applied.
func (s *Service) Breakdown(ctx context.Context, q snapshots.Query) (*Breakdown, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	date := q.MonthEnd()
	key := fmt.Sprintf("%s|%s", q.Alias, date.Format("2006-01-02"))

	if s.cache != nil {
		var cached Breakdown
		ok, err := s.cache.GetIfFresh(querycache.TableAllocations, key, &cached)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to read allocation cache")
		} else if ok {
			cached.StatisticDate = cached.StatisticDate.UTC()
			return &cached, nil
		}
	}

	holdings, err := s.reader.Holdings(ctx, q.Alias, date)
	if err != nil {
		return nil, err
	}
	b := Build(q.Alias, date, holdings)

	if s.cache != nil {
		if err := s.cache.Store(querycache.TableAllocations, key, b, querycache.TTLAllocation); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("Failed to store allocation in cache")
		}
	}
	return b, nil
}

// Build groups holdings by asset class and by product. Slices are sorted by
// descending amount and carry their share of the total rounded to 2 decimals.
func Build(alias string, date time.Time, holdings []Holding) *Breakdown {
	total := decimal.Zero
	byClass := newGrouper()
	byProduct := newGrouper()
	for _, h := range holdings {
		total = total.Add(h.Amount)
		byClass.add(domain.AssetClassLabel(h.AssetClassID), h.Amount)

		label := h.Description
		if label == "" {
			label = strconv.FormatInt(h.ProductID, 10)
		}
		byProduct.add(label, h.Amount)
	}

	return &Breakdown{
		Alias:         alias,
		StatisticDate: date,
		Total:         total,
		ByAssetClass:  byClass.slices(total),
		ByProduct:     byProduct.slices(total),
	}
}

type grouper struct {
	order  []string
	amount map[string]decimal.Decimal
}

func newGrouper() *grouper {
	return &grouper{amount: make(map[string]decimal.Decimal)}
}

func (g *grouper) add(label string, amount decimal.Decimal) {
	if _, ok := g.amount[label]; !ok {
		g.order = append(g.order, label)
	}
	g.amount[label] = g.amount[label].Add(amount)
}

func (g *grouper) slices(total decimal.Decimal) []Slice {
	out := make([]Slice, 0, len(g.order))
	hundred := decimal.NewFromInt(100)
	for _, label := range g.order {
		s := Slice{Label: label, Amount: g.amount[label]}
		if total.IsPositive() {
			s.Pct = s.Amount.Div(total).Mul(hundred).Round(2).InexactFloat64()
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}
