package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/aristath/debtfolio/internal/database"
	testhelpers "github.com/aristath/debtfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositoryHoldings(t *testing.T) {
	db, cleanup := testhelpers.NewTestDB(t, database.NameWarehouse)
	defer cleanup()

	w := testhelpers.NewWarehouse(t, db.Conn())
	w.Product(10, "Deuda Gubernamental")
	for _, s := range []testhelpers.StatisticRow{
		{ClientID: 1, Alias: "UNIB", ProductID: 10, AssetClassID: testhelpers.Int(1), StatisticDate: "2025-01-31", TotalPosition: 400},
		{ClientID: 2, Alias: "unib", ProductID: 10, AssetClassID: testhelpers.Int(1), StatisticDate: "2025-01-31", TotalPosition: 200},
		{ClientID: 2, Alias: "UNIB", ProductID: 11, StatisticDate: "2025-01-31 00:00:00", TotalPosition: 50},
		{ClientID: 1, Alias: "UNIB", ProductID: 10, AssetClassID: testhelpers.Int(1), StatisticDate: "2024-12-31", TotalPosition: 999},
		{ClientID: 3, Alias: "OTRO", ProductID: 10, AssetClassID: testhelpers.Int(1), StatisticDate: "2025-01-31", TotalPosition: 999},
	} {
		w.Statistic(s)
	}

	repo := NewRepository(db.Conn(), zerolog.Nop())
	holdings, err := repo.Holdings(context.Background(), "UNIB", time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, int64(10), holdings[0].ProductID)
	assert.Equal(t, "Deuda Gubernamental", holdings[0].Description)
	assert.Equal(t, "600", holdings[0].Amount.String())
	require.NotNil(t, holdings[0].AssetClassID)
	assert.Equal(t, int64(1), *holdings[0].AssetClassID)

	assert.Equal(t, "SIN_DESCRIPCION", holdings[1].Description)
	assert.Nil(t, holdings[1].AssetClassID)
}
