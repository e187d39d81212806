package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *DB, table string) bool {
	var name string
	err := db.Conn().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	require.NoError(t, err)
	return true
}

func TestMigrate_Warehouse(t *testing.T) {
	db := newTestDB(t, NameWarehouse, ProfileWarehouse)
	require.NoError(t, db.Migrate())

	for _, table := range []string{"contracts", "products", "issuers", "position_history", "reference_rates", "client_statistics"} {
		assert.True(t, tableExists(t, db, table), table)
	}

	// idempotent
	require.NoError(t, db.Migrate())
}

func TestMigrate_Cache(t *testing.T) {
	db := newTestDB(t, NameCache, ProfileCache)
	require.NoError(t, db.Migrate())

	for _, table := range []string{"snapshots", "catalog_clients", "catalog_products", "allocations"} {
		assert.True(t, tableExists(t, db, table), table)
	}
}

func TestMigrate_UnknownName(t *testing.T) {
	db := newTestDB(t, "scratch", "")
	require.NoError(t, db.Migrate())
	assert.Equal(t, ProfileStandard, db.Profile())
	assert.False(t, tableExists(t, db, "contracts"))
}

func TestSchema(t *testing.T) {
	schema, ok := Schema(NameWarehouse)
	require.True(t, ok)
	assert.Contains(t, schema, "position_history")

	_, ok = Schema("nope")
	assert.False(t, ok)
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "tx", ProfileStandard)
	_, err := db.Conn().Exec("CREATE TABLE t (v INTEGER)")
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO t (v) VALUES (1)")
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			if _, err := tx.Exec("INSERT INTO t (v) VALUES (2)"); err != nil {
				return err
			}
			return errors.New("boom")
		})
		assert.Error(t, err)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec("INSERT INTO t (v) VALUES (3)")
			panic("bad")
		})
		assert.ErrorContains(t, err, "panic")
	})

	var count int
	require.NoError(t, db.Conn().QueryRow("SELECT COUNT(*) FROM t").Scan(&count))
	assert.Equal(t, 1, count)

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestQuickCheckAndStats(t *testing.T) {
	db := newTestDB(t, NameCache, ProfileCache)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.QuickCheck(context.Background()))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
	assert.Equal(t, NameCache, db.Name())
	assert.NotEmpty(t, db.Path())
}
