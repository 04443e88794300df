package snapshot

import (
	"sort"
	"sync"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// MockStore is an in-memory SnapshotStore for testing.
type MockStore struct {
	mu      sync.Mutex
	series  map[string]schema.Series
	records map[string]map[[2]string]schema.Revision // seriesID -> (obs, vintage) -> record
	access  []schema.SeriesRank
	closed  bool
}

var _ contract.SnapshotStore = &MockStore{} // Compile-time check

// NewMockStore returns an empty in-memory store.
func NewMockStore() *MockStore {
	return &MockStore{
		series:  make(map[string]schema.Series),
		records: make(map[string]map[[2]string]schema.Revision),
	}
}

// SaveSeries upserts series metadata.
func (m *MockStore) SaveSeries(meta schema.Series) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[meta.ID] = meta
	return nil
}

// LoadSeries returns every saved series sorted by ID.
func (m *MockStore) LoadSeries() ([]schema.Series, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]schema.Series, 0, len(m.series))
	for _, meta := range m.series {
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// SaveRecords upserts revision triples.
func (m *MockStore) SaveRecords(seriesID string, records []schema.Revision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	bucket, ok := m.records[seriesID]
	if !ok {
		bucket = make(map[[2]string]schema.Revision)
		m.records[seriesID] = bucket
	}
	for _, rec := range records {
		key := [2]string{rec.ObservationDate.Format(schema.DateFormat), rec.VintageDate.Format(schema.DateFormat)}
		bucket[key] = rec
	}
	return nil
}

// LoadRecords returns saved triples sorted by observation then vintage date.
func (m *MockStore) LoadRecords(seriesID string) ([]schema.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schema.Revision
	for _, rec := range m.records[seriesID] {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ObservationDate.Equal(out[j].ObservationDate) {
			return out[i].ObservationDate.Before(out[j].ObservationDate)
		}
		return out[i].VintageDate.Before(out[j].VintageDate)
	})
	return out, nil
}

// SaveAccessCounts replaces the counters.
func (m *MockStore) SaveAccessCounts(ranks []schema.SeriesRank) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access = append([]schema.SeriesRank(nil), ranks...)
	return nil
}

// LoadAccessCounts returns the stored counters in saved order.
func (m *MockStore) LoadAccessCounts() ([]schema.SeriesRank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]schema.SeriesRank(nil), m.access...), nil
}

// GetStatus reports in-memory counts.
func (m *MockStore) GetStatus() (schema.SnapshotStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := schema.SnapshotStatus{Backend: "mock", Location: "memory", SeriesCount: len(m.series), SizeBytes: -1}
	for _, bucket := range m.records {
		status.RevisionCount += int64(len(bucket))
	}
	return status, nil
}

// Clear drops everything.
func (m *MockStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series = make(map[string]schema.Series)
	m.records = make(map[string]map[[2]string]schema.Revision)
	m.access = nil
	return nil
}

// Close marks the store closed.
func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MockManager wraps a MockStore as a SnapshotManager.
type MockManager struct {
	Store contract.SnapshotStore
}

// GetStore returns the wrapped store.
func (m *MockManager) GetStore() contract.SnapshotStore {
	return m.Store
}
