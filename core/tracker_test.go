package core

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/schema"
)

// TestTrackerTop tests access counting and ranking.
func TestTrackerTop(t *testing.T) {
	tracker := NewPopularSeriesTracker()
	tracker.RecordAccess("UNRATE")
	tracker.RecordAccess("GDPC1")
	tracker.RecordAccess("UNRATE")
	tracker.RecordAccess("UNRATE")

	t.Run("ranked by count descending", func(t *testing.T) {
		ranks, err := tracker.Top(2)
		require.NoError(t, err)
		require.Len(t, ranks, 2)
		assert.Equal(t, schema.SeriesRank{SeriesID: "UNRATE", Hits: 3}, ranks[0])
		assert.Equal(t, schema.SeriesRank{SeriesID: "GDPC1", Hits: 1}, ranks[1])
	})

	t.Run("n beyond tracked series returns all", func(t *testing.T) {
		ranks, err := tracker.Top(50)
		require.NoError(t, err)
		assert.Len(t, ranks, 2)
	})

	t.Run("ties break by first access", func(t *testing.T) {
		tied := NewPopularSeriesTracker()
		tied.RecordAccess("B")
		tied.RecordAccess("A")
		ranks, err := tied.Top(2)
		require.NoError(t, err)
		assert.Equal(t, "B", ranks[0].SeriesID)
		assert.Equal(t, "A", ranks[1].SeriesID)
	})

	t.Run("non-positive n rejected", func(t *testing.T) {
		_, err := tracker.Top(0)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
		_, err = tracker.Top(-3)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("empty tracker", func(t *testing.T) {
		ranks, err := NewPopularSeriesTracker().Top(5)
		require.NoError(t, err)
		assert.Empty(t, ranks)
	})
}

// TestTrackerRestore tests round-tripping counters through persistence.
func TestTrackerRestore(t *testing.T) {
	tracker := NewPopularSeriesTracker()
	tracker.RecordAccess("UNRATE")
	tracker.RecordAccess("GDPC1")
	tracker.RecordAccess("UNRATE")

	t.Run("counts round-trip", func(t *testing.T) {
		restored := NewPopularSeriesTracker()
		restored.Restore(tracker.Counts())
		assert.Equal(t, tracker.Counts(), restored.Counts())
	})

	t.Run("restore merges with live counts", func(t *testing.T) {
		restored := NewPopularSeriesTracker()
		restored.RecordAccess("UNRATE")
		restored.Restore([]schema.SeriesRank{{SeriesID: "UNRATE", Hits: 2}})
		ranks, err := restored.Top(1)
		require.NoError(t, err)
		assert.Equal(t, 3, ranks[0].Hits)
	})
}

// TestTrackerConcurrency tests that parallel access keeps counts exact.
func TestTrackerConcurrency(t *testing.T) {
	tracker := NewPopularSeriesTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.RecordAccess("UNRATE")
			}
		}()
	}
	wg.Wait()

	ranks, err := tracker.Top(1)
	require.NoError(t, err)
	assert.Equal(t, 800, ranks[0].Hits)
}
