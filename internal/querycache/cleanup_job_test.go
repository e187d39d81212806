package querycache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Equal(t, "query_cache_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewRepository(db)
	job := NewCleanupJob(repo, zerolog.Nop())

	now := time.Now()
	insertRaw(t, db, TableSnapshots, "expired", now.Add(-time.Hour).Unix())
	insertRaw(t, db, TableSnapshots, "fresh", now.Add(time.Hour).Unix())
	insertRaw(t, db, TableClients, "expired", now.Add(-time.Hour).Unix())

	require.NoError(t, job.Run())

	var count int
	require.NoError(t, db.QueryRow("SELECT (SELECT COUNT(*) FROM snapshots) + (SELECT COUNT(*) FROM catalog_clients)").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCleanupJobRun_Empty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.NoError(t, job.Run())
}

func TestCleanupJobRun_MissingTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.Exec("DROP TABLE allocations")
	require.NoError(t, err)

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Error(t, job.Run())
}
