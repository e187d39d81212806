package snapshots_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aristath/debtfolio/internal/database"
	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/debt"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
	"github.com/aristath/debtfolio/internal/querycache"
	testhelpers "github.com/aristath/debtfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheRepo(t *testing.T) *querycache.Repository {
	t.Helper()
	db, cleanup := testhelpers.NewTestDB(t, database.NameCache)
	t.Cleanup(cleanup)
	return querycache.NewRepository(db.Conn())
}

func januarySnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Alias:      "UNIB",
		CutoffDate: testhelpers.Date(2025, time.January, 31),
		Positions:  testhelpers.NewPositionFixtures(),
	}
}

func TestCachedSource_ServesFreshEntries(t *testing.T) {
	source := testhelpers.NewMockSource()
	source.SetSnapshot(2025, 1, januarySnapshot())
	cached := snapshots.NewCachedSource(source, newCacheRepo(t), time.Minute, zerolog.Nop())

	q := snapshots.Query{Alias: "UNIB", Year: 2025, Month: 1}
	first, err := cached.Snapshot(context.Background(), q)
	require.NoError(t, err)
	second, err := cached.Snapshot(context.Background(), q)
	require.NoError(t, err)

	assert.Len(t, source.Calls(), 1)
	require.Len(t, second.Positions, len(first.Positions))
	assert.Equal(t, first.Positions[0].IssuerName, second.Positions[0].IssuerName)
	assert.Equal(t, "9.85%", second.Positions[0].RawYield)
	assert.InDelta(t, *first.Positions[0].MarketValue, *second.Positions[0].MarketValue, 1e-9)
	assert.True(t, first.CutoffDate.Equal(*second.CutoffDate))
}

func TestCachedSource_StaleFallback(t *testing.T) {
	source := testhelpers.NewMockSource()
	source.SetSnapshot(2025, 1, januarySnapshot())
	cached := snapshots.NewCachedSource(source, newCacheRepo(t), time.Minute, zerolog.Nop())
	q := snapshots.Query{Alias: "UNIB", Year: 2025, Month: 1}

	_, err := cached.Snapshot(context.Background(), q)
	require.NoError(t, err)

	source.SetError(errors.New("warehouse down"))

	snap, err := cached.Refresh(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, snap.Positions, 4)

	_, err = cached.Snapshot(context.Background(), snapshots.Query{Alias: "UNIB", Year: 2025, Month: 2})
	assert.EqualError(t, err, "warehouse down")
}

func TestCachedSource_InvalidQuery(t *testing.T) {
	source := testhelpers.NewMockSource()
	cached := snapshots.NewCachedSource(source, newCacheRepo(t), 0, zerolog.Nop())

	_, err := cached.Snapshot(context.Background(), snapshots.Query{Year: 2025, Month: 1})
	assert.ErrorIs(t, err, snapshots.ErrMissingAlias)
	assert.Empty(t, source.Calls())
}

type fakeCatalog struct {
	mu       sync.Mutex
	clients  []snapshots.Client
	products []snapshots.Product
	err      error
	calls    int
}

func (f *fakeCatalog) Clients(context.Context, string) ([]snapshots.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.clients, f.err
}

func (f *fakeCatalog) Products(context.Context, snapshots.Query) ([]snapshots.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.products, f.err
}

func TestCachedCatalog(t *testing.T) {
	fake := &fakeCatalog{
		clients:  []snapshots.Client{{ID: 1, Label: "Cliente 1"}},
		products: []snapshots.Product{{ID: 10, Description: "Deuda Gubernamental", AssetClass: "Deuda"}},
	}
	catalog := snapshots.NewCachedCatalog(fake, newCacheRepo(t), zerolog.Nop())
	ctx := context.Background()
	q := snapshots.Query{Alias: "UNIB", Year: 2025, Month: 1}

	clients, err := catalog.Clients(ctx, "UNIB")
	require.NoError(t, err)
	assert.Equal(t, fake.clients, clients)

	clients, err = catalog.Clients(ctx, "UNIB")
	require.NoError(t, err)
	assert.Equal(t, fake.clients, clients)

	products, err := catalog.Products(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, fake.products, products)
	assert.Equal(t, 2, fake.calls)

	fake.err = errors.New("boom")
	_, err = catalog.Clients(ctx, "OTRO")
	assert.Error(t, err)

	_, err = catalog.Products(ctx, snapshots.Query{Alias: "UNIB", Year: 1999, Month: 1})
	assert.ErrorIs(t, err, snapshots.ErrInvalidPeriod)
}

func TestCachedSource_DatesStayOnCalendarDayBehindUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("CST", -6*60*60)
	defer func() { time.Local = local }()

	source := testhelpers.NewMockSource()
	source.SetSnapshot(2025, 1, januarySnapshot())
	cached := snapshots.NewCachedSource(source, newCacheRepo(t), time.Minute, zerolog.Nop())
	q := snapshots.Query{Alias: "UNIB", Year: 2025, Month: 1}

	var reports []*debt.Report
	for i := 0; i < 2; i++ {
		snap, err := cached.Snapshot(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, "2025-01-31", snap.CutoffDate.Format("2006-01-02"))
		for _, p := range snap.Positions {
			if p.MaturityDate != nil {
				assert.Equal(t, time.UTC, p.MaturityDate.Location())
			}
		}

		report, err := debt.Build(snap, debt.Options{})
		require.NoError(t, err)
		reports = append(reports, report)
	}
	assert.Len(t, source.Calls(), 1)

	require.Len(t, reports[1].Rows, len(reports[0].Rows))
	var maturities []string
	for i := range reports[0].Rows {
		assert.Equal(t, reports[0].Rows[i].MaturityDate, reports[1].Rows[i].MaturityDate)
		assert.Equal(t, reports[0].Rows[i].DaysToMaturity, reports[1].Rows[i].DaysToMaturity)
		maturities = append(maturities, reports[1].Rows[i].MaturityDate)
	}
	assert.Contains(t, maturities, "2026-12-03")
	assert.Contains(t, maturities, "2028-06-15")
}

func TestCachedSource_StaleEntryInUTC(t *testing.T) {
	local := time.Local
	time.Local = time.FixedZone("CST", -6*60*60)
	defer func() { time.Local = local }()

	source := testhelpers.NewMockSource()
	source.SetSnapshot(2025, 1, januarySnapshot())
	cached := snapshots.NewCachedSource(source, newCacheRepo(t), time.Minute, zerolog.Nop())
	q := snapshots.Query{Alias: "UNIB", Year: 2025, Month: 1}

	_, err := cached.Snapshot(context.Background(), q)
	require.NoError(t, err)
	source.SetError(errors.New("warehouse down"))

	stale, err := cached.Refresh(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-31", stale.CutoffDate.Format("2006-01-02"))
}
