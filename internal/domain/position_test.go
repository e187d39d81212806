package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotInUTC(t *testing.T) {
	zone := time.FixedZone("CST", -6*60*60)
	cutoff := time.Date(2025, time.January, 30, 18, 0, 0, 0, zone)
	maturity := time.Date(2025, time.February, 26, 18, 0, 0, 0, zone)

	snap := &Snapshot{
		CutoffDate: &cutoff,
		Positions: []Position{
			{SnapshotDate: &cutoff, MaturityDate: &maturity},
			{IssuerName: "REPO"},
		},
	}

	got := snap.InUTC()
	require.Same(t, snap, got)
	assert.Equal(t, "2025-01-31", got.CutoffDate.Format("2006-01-02"))
	assert.Equal(t, time.UTC, got.CutoffDate.Location())
	assert.Equal(t, "2025-01-31", got.Positions[0].SnapshotDate.Format("2006-01-02"))
	assert.Equal(t, "2025-02-27", got.Positions[0].MaturityDate.Format("2006-01-02"))
	assert.Nil(t, got.Positions[1].MaturityDate)
	assert.True(t, cutoff.Equal(*got.CutoffDate))

	var empty *Snapshot
	assert.Nil(t, empty.InUTC())
}
