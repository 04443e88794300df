package core

import (
	"sort"
	"sync"

	"github.com/vintlab/vint/schema"
)

// PopularSeriesTracker counts series lookups within one process. Counters are
// ephemeral; a caller that wants them to survive restarts persists and
// restores them itself. Construct one tracker explicitly and pass it around;
// there is no implicit singleton, so tests get a fresh instance each.
type PopularSeriesTracker struct {
	mu    sync.Mutex
	hits  map[string]int
	order []string // first-seen order, the tiebreak for equal counts
}

// NewPopularSeriesTracker returns an empty tracker.
func NewPopularSeriesTracker() *PopularSeriesTracker {
	return &PopularSeriesTracker{hits: make(map[string]int)}
}

// RecordAccess increments the counter for a series.
func (t *PopularSeriesTracker) RecordAccess(seriesID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.hits[seriesID]; !ok {
		t.order = append(t.order, seriesID)
	}
	t.hits[seriesID]++
}

// Restore seeds the tracker with previously persisted counts, preserving the
// given slice order as the first-seen order.
func (t *PopularSeriesTracker) Restore(ranks []schema.SeriesRank) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range ranks {
		if _, ok := t.hits[r.SeriesID]; !ok {
			t.order = append(t.order, r.SeriesID)
		}
		t.hits[r.SeriesID] += r.Hits
	}
}

// Top returns the n most-accessed series, descending by count with ties
// broken by first-seen order. Fewer than n tracked series returns them all.
func (t *PopularSeriesTracker) Top(n int) ([]schema.SeriesRank, error) {
	if n <= 0 {
		return nil, schema.InvalidArgument("top count must be positive, got %d", n)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	ranks := make([]schema.SeriesRank, len(t.order))
	pos := make(map[string]int, len(t.order))
	for i, id := range t.order {
		ranks[i] = schema.SeriesRank{SeriesID: id, Hits: t.hits[id]}
		pos[id] = i
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Hits != ranks[j].Hits {
			return ranks[i].Hits > ranks[j].Hits
		}
		return pos[ranks[i].SeriesID] < pos[ranks[j].SeriesID]
	})
	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks, nil
}

// Counts returns a copy of every counter in first-seen order, for callers
// that persist tracker state.
func (t *PopularSeriesTracker) Counts() []schema.SeriesRank {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]schema.SeriesRank, len(t.order))
	for i, id := range t.order {
		out[i] = schema.SeriesRank{SeriesID: id, Hits: t.hits[id]}
	}
	return out
}
