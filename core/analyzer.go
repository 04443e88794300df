package core

import (
	"fmt"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"github.com/dgraph-io/ristretto"
	"github.com/vintlab/vint/schema"

	"github.com/vintlab/vint/internal/contract"
)

// RevisionAnalyzer computes revision deltas, release-lag statistics and
// vintage comparisons from a VintageStore. Every result is a pure function of
// store state; as-of views are memoized per (series, generation, vintage)
// since the same vintage dates recur across calls.
type RevisionAnalyzer struct {
	store *VintageStore
	memo  *ristretto.Cache
}

// NewRevisionAnalyzer returns an analyzer reading from the given store.
func NewRevisionAnalyzer(store *VintageStore) *RevisionAnalyzer {
	// Cache sizing follows the ristretto README rule of thumb: counters at
	// 10x the expected live entries. A miss only costs an uncached view.
	memo, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 14,
		MaxCost:     1 << 24,
		BufferItems: 64,
	})
	if err != nil {
		memo = nil
	}
	return &RevisionAnalyzer{store: store, memo: memo}
}

// Close releases the memo cache and its background goroutines. The analyzer
// keeps working afterwards, just without memoization. Safe to call twice.
func (a *RevisionAnalyzer) Close() {
	if a.memo != nil {
		a.memo.Close()
		a.memo = nil
	}
}

// RevisionDelta returns the ordered revision history for one observation
// date, with each entry carrying its change from the previous vintage. The
// first entry has a nil delta: there is nothing before it to differ from.
func (a *RevisionAnalyzer) RevisionDelta(seriesID string, observationDate time.Time) ([]schema.RevisionDelta, error) {
	history, err := a.store.History(seriesID, observationDate)
	if err != nil {
		return nil, err
	}
	out := make([]schema.RevisionDelta, len(history))
	for i, p := range history {
		out[i] = schema.RevisionDelta{VintageDate: p.VintageDate, Value: p.Value}
		if i > 0 {
			d := p.Value - history[i-1].Value
			out[i].Delta = &d
		}
	}
	return out, nil
}

// ReleaseLag summarizes how promptly the series is first published: the
// distribution of (first vintage date − observation date) in days across all
// observation dates, with DDSketch percentiles.
func (a *RevisionAnalyzer) ReleaseLag(seriesID string) (schema.LagStats, error) {
	records, err := a.store.Records(seriesID)
	if err != nil {
		return schema.LagStats{}, err
	}
	if len(records) == 0 {
		return schema.LagStats{}, schema.InsufficientData("series %s has no records", seriesID)
	}

	sketch, err := ddsketch.NewDefaultDDSketch(contract.LagSketchAccuracy)
	if err != nil {
		return schema.LagStats{}, fmt.Errorf("create lag sketch: %w", err)
	}

	stats := schema.LagStats{SeriesID: seriesID}
	var sum float64
	seen := make(map[time.Time]bool)
	for _, rec := range records {
		if seen[rec.ObservationDate] {
			continue // records are sorted by vintage; only the first release counts
		}
		seen[rec.ObservationDate] = true
		lag := rec.VintageDate.Sub(rec.ObservationDate).Hours() / 24
		// DDSketch cannot hold zero or negative values directly; shift by one
		// day so a same-day release maps to 1 and unshift on the way out.
		if err := sketch.Add(lag + 1); err != nil {
			return schema.LagStats{}, fmt.Errorf("add lag sample: %w", err)
		}
		sum += lag
		if stats.Count == 0 || lag < stats.MinDays {
			stats.MinDays = lag
		}
		if stats.Count == 0 || lag > stats.MaxDays {
			stats.MaxDays = lag
		}
		stats.Count++
	}

	stats.MeanDays = sum / float64(stats.Count)
	if p50, err := sketch.GetValueAtQuantile(0.5); err == nil {
		stats.P50Days = p50 - 1
	}
	if p90, err := sketch.GetValueAtQuantile(0.9); err == nil {
		stats.P90Days = p90 - 1
	}
	return stats, nil
}

// CompareVintages diffs the as-of views at two vintage dates, one row per
// observation date present in either view. Diff is ValueB − ValueA and is nil
// wherever either release had no value yet.
func (a *RevisionAnalyzer) CompareVintages(seriesID string, vintageA, vintageB time.Time, rng schema.ObservationRange) ([]schema.VintageDiff, error) {
	viewA, err := a.AsOf(seriesID, rng, vintageA)
	if err != nil {
		return nil, err
	}
	viewB, err := a.AsOf(seriesID, rng, vintageB)
	if err != nil {
		return nil, err
	}

	// Both views cover the same observation dates in the same order; the
	// store emits every in-range date whether or not a value was known.
	out := make([]schema.VintageDiff, len(viewA))
	for i, obsA := range viewA {
		diff := schema.VintageDiff{Date: obsA.Date, ValueA: obsA.Value, ValueB: viewB[i].Value}
		if diff.ValueA != nil && diff.ValueB != nil {
			d := *diff.ValueB - *diff.ValueA
			diff.Diff = &d
		}
		out[i] = diff
	}
	return out, nil
}

// AsOf is the memoized point-in-time view used by analyzer and detector
// queries. The store generation in the key keeps stale views from surviving
// an ingest.
func (a *RevisionAnalyzer) AsOf(seriesID string, rng schema.ObservationRange, vintage time.Time) ([]schema.Observation, error) {
	if a.memo == nil {
		return a.store.AsOf(seriesID, rng, vintage)
	}
	gen, err := a.store.Generation(seriesID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%d|%d|%d", seriesID, gen, vintage.Unix(), rng.Start.Unix(), rng.End.Unix())
	if cached, ok := a.memo.Get(key); ok {
		return cached.([]schema.Observation), nil
	}
	view, err := a.store.AsOf(seriesID, rng, vintage)
	if err != nil {
		return nil, err
	}
	a.memo.Set(key, view, int64(len(view)+1))
	return view, nil
}
