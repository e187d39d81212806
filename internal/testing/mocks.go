package testing

import (
	"context"
	"sync"

	"github.com/aristath/debtfolio/internal/domain"
	"github.com/aristath/debtfolio/internal/modules/snapshots"
)

// MockSource is an in-memory snapshots.Source keyed by query period.
type MockSource struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.Snapshot
	err       error
	calls     []snapshots.Query
}

// NewMockSource creates an empty mock source. Unknown periods return an
// empty snapshot.
func NewMockSource() *MockSource {
	return &MockSource{snapshots: make(map[string]*domain.Snapshot)}
}

func periodKey(year, month int) string {
	return snapshots.Query{Year: year, Month: month}.Key()
}

// SetSnapshot sets the snapshot returned for a year and month.
func (m *MockSource) SetSnapshot(year, month int, snap *domain.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[periodKey(year, month)] = snap
}

// SetError sets the error to return
func (m *MockSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Snapshot returns the configured snapshot for the query period.
func (m *MockSource) Snapshot(_ context.Context, q snapshots.Query) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, q)
	if m.err != nil {
		return nil, m.err
	}
	if snap, ok := m.snapshots[periodKey(q.Year, q.Month)]; ok {
		return snap, nil
	}
	return &domain.Snapshot{Alias: q.Alias}, nil
}

// Calls returns the queries received so far.
func (m *MockSource) Calls() []snapshots.Query {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]snapshots.Query(nil), m.calls...)
}
