// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/vintlab/vint/schema"
)

// SourceAdapter supplies raw revision triples for a series. The core treats
// adapters as opaque suppliers: API-backed, file-backed and test doubles are
// interchangeable. Adapters wrap their failures in schema.ErrSourceUnavailable
// and own any retry policy; the core surfaces failures unchanged.
type SourceAdapter interface {
	// Describe returns the series metadata the source knows about, used to
	// register the series before its first ingest.
	Describe(ctx context.Context, seriesID string) (schema.Series, error)

	// Fetch returns the finite set of revision records for a series, bounded
	// by the observation range (zero bounds mean unbounded).
	Fetch(ctx context.Context, seriesID string, rng schema.ObservationRange) ([]schema.Revision, error)
}

// SnapshotStore persists vintage matrices and popularity counters between
// runs. This allows mocking the store for testing.
type SnapshotStore interface {
	// SaveSeries upserts series metadata.
	SaveSeries(meta schema.Series) error

	// LoadSeries returns every persisted series definition.
	LoadSeries() ([]schema.Series, error)

	// SaveRecords upserts revision triples for a series.
	SaveRecords(seriesID string, records []schema.Revision) error

	// LoadRecords returns every persisted triple for a series, sorted by
	// observation date then vintage date.
	LoadRecords(seriesID string) ([]schema.Revision, error)

	// SaveAccessCounts replaces the persisted popularity counters.
	SaveAccessCounts(ranks []schema.SeriesRank) error

	// LoadAccessCounts returns the persisted popularity counters in
	// first-seen order.
	LoadAccessCounts() ([]schema.SeriesRank, error)

	// GetStatus returns status information about the snapshot store.
	GetStatus() (schema.SnapshotStatus, error)

	// Clear drops all persisted data.
	Clear() error

	// Close closes the underlying connection.
	Close() error
}

// SnapshotManager hands out the process-wide snapshot store. It exists so the
// persistence layer can be swapped for a mock in tests.
type SnapshotManager interface {
	GetStore() SnapshotStore
}
