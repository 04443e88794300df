package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/schema"
)

// TestRevisionDelta tests release-by-release history with deltas.
func TestRevisionDelta(t *testing.T) {
	store := newQuarterlyGDP(t)
	analyzer := NewRevisionAnalyzer(store)

	t.Run("first release has no delta", func(t *testing.T) {
		deltas, err := analyzer.RevisionDelta("GDPC1", day(2023, 1, 1))
		require.NoError(t, err)
		require.Len(t, deltas, 3)
		assert.Nil(t, deltas[0].Delta)
		assert.Equal(t, 150000.0, deltas[0].Value)
	})

	t.Run("deltas track consecutive releases", func(t *testing.T) {
		deltas, err := analyzer.RevisionDelta("GDPC1", day(2023, 1, 1))
		require.NoError(t, err)
		require.NotNil(t, deltas[1].Delta)
		assert.Equal(t, -2000.0, *deltas[1].Delta)
		require.NotNil(t, deltas[2].Delta)
		assert.Equal(t, 500.0, *deltas[2].Delta)
	})

	t.Run("vintages in release order", func(t *testing.T) {
		deltas, err := analyzer.RevisionDelta("GDPC1", day(2023, 1, 1))
		require.NoError(t, err)
		for i := 1; i < len(deltas); i++ {
			assert.True(t, deltas[i-1].VintageDate.Before(deltas[i].VintageDate))
		}
	})

	t.Run("unrevised observation", func(t *testing.T) {
		_, err := analyzer.RevisionDelta("GDPC1", day(2024, 1, 1))
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})
}

// TestCompareVintages tests the diff of two point-in-time views.
func TestCompareVintages(t *testing.T) {
	store := newQuarterlyGDP(t)
	require.NoError(t, store.Ingest("GDPC1", []schema.Revision{
		{ObservationDate: day(2023, 4, 1), VintageDate: day(2023, 7, 27), Value: 152000},
	}))
	analyzer := NewRevisionAnalyzer(store)

	t.Run("value change surfaces in diff", func(t *testing.T) {
		diffs, err := analyzer.CompareVintages("GDPC1", day(2023, 4, 30), day(2023, 5, 30), schema.ObservationRange{})
		require.NoError(t, err)
		require.Len(t, diffs, 2)
		require.NotNil(t, diffs[0].Diff)
		assert.Equal(t, -2000.0, *diffs[0].Diff)
	})

	t.Run("observation unknown at either vintage has nil diff", func(t *testing.T) {
		diffs, err := analyzer.CompareVintages("GDPC1", day(2023, 4, 30), day(2023, 5, 30), schema.ObservationRange{})
		require.NoError(t, err)
		// Q2 was first published 2023-07-27, after both vintages.
		assert.Nil(t, diffs[1].ValueA)
		assert.Nil(t, diffs[1].ValueB)
		assert.Nil(t, diffs[1].Diff)
	})

	t.Run("identical vintages produce zero diffs", func(t *testing.T) {
		diffs, err := analyzer.CompareVintages("GDPC1", day(2023, 8, 1), day(2023, 8, 1), schema.ObservationRange{})
		require.NoError(t, err)
		for _, d := range diffs {
			require.NotNil(t, d.Diff)
			assert.Zero(t, *d.Diff)
		}
	})

	t.Run("unknown series", func(t *testing.T) {
		_, err := analyzer.CompareVintages("NOPE", day(2023, 4, 30), day(2023, 5, 30), schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrUnknownSeries)
	})
}

// TestReleaseLag tests the first-release lag distribution.
func TestReleaseLag(t *testing.T) {
	store := NewVintageStore()
	require.NoError(t, store.Register(schema.Series{ID: "UNRATE", Frequency: schema.Monthly}))
	// First releases 40, 42 and 38 days after the observation date; later
	// revisions must not affect lag.
	require.NoError(t, store.Ingest("UNRATE", []schema.Revision{
		{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 2, 10), Value: 3.4},
		{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 3, 10), Value: 3.5},
		{ObservationDate: day(2023, 2, 1), VintageDate: day(2023, 3, 15), Value: 3.6},
		{ObservationDate: day(2023, 3, 1), VintageDate: day(2023, 4, 8), Value: 3.5},
	}))
	analyzer := NewRevisionAnalyzer(store)

	t.Run("summary statistics", func(t *testing.T) {
		stats, err := analyzer.ReleaseLag("UNRATE")
		require.NoError(t, err)
		assert.Equal(t, int64(3), stats.Count)
		assert.Equal(t, 38.0, stats.MinDays)
		assert.Equal(t, 42.0, stats.MaxDays)
		assert.InDelta(t, 40.0, stats.MeanDays, 1e-9)
	})

	t.Run("percentiles within sketch accuracy", func(t *testing.T) {
		// Ten first releases with lags 30..39 days. The sketch interpolates
		// quantiles over ranks q*(n-1), so p50 lands on the 5th sorted lag
		// (34) and p90 on the 9th (38).
		require.NoError(t, store.Register(schema.Series{ID: "PAYEMS", Frequency: schema.Monthly}))
		recs := make([]schema.Revision, 10)
		for i := range recs {
			obs := day(2023, time.Month(i+1), 1)
			recs[i] = schema.Revision{
				ObservationDate: obs,
				VintageDate:     obs.AddDate(0, 0, 30+i),
				Value:           float64(150000 + i),
			}
		}
		require.NoError(t, store.Ingest("PAYEMS", recs))

		stats, err := analyzer.ReleaseLag("PAYEMS")
		require.NoError(t, err)
		assert.Equal(t, int64(10), stats.Count)
		assert.InDelta(t, 34.0, stats.P50Days, 34.0*0.02+1)
		assert.InDelta(t, 38.0, stats.P90Days, 38.0*0.02+1)
	})

	t.Run("empty series", func(t *testing.T) {
		require.NoError(t, store.Register(schema.Series{ID: "EMPTY", Frequency: schema.Daily}))
		_, err := analyzer.ReleaseLag("EMPTY")
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})

	t.Run("same-day release", func(t *testing.T) {
		require.NoError(t, store.Register(schema.Series{ID: "FAST", Frequency: schema.Daily}))
		require.NoError(t, store.Ingest("FAST", []schema.Revision{
			{ObservationDate: day(2023, 1, 2), VintageDate: day(2023, 1, 2), Value: 1},
		}))
		stats, err := analyzer.ReleaseLag("FAST")
		require.NoError(t, err)
		assert.Equal(t, 0.0, stats.MinDays)
	})
}

// TestAnalyzerAsOf tests that the memoized view stays correct across ingests.
func TestAnalyzerAsOf(t *testing.T) {
	store := newQuarterlyGDP(t)
	analyzer := NewRevisionAnalyzer(store)

	t.Run("matches the store view", func(t *testing.T) {
		want, err := store.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		got, err := analyzer.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("repeated calls stay stable", func(t *testing.T) {
		first, err := analyzer.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		second, err := analyzer.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("queries still work after close", func(t *testing.T) {
		closed := NewRevisionAnalyzer(store)
		closed.Close()
		got, err := closed.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		want, err := store.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 5, 1))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		a := NewRevisionAnalyzer(store)
		a.Close()
		assert.NotPanics(t, func() { a.Close() })
	})

	t.Run("ingest invalidates the memoized view", func(t *testing.T) {
		before, err := analyzer.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 12, 31))
		require.NoError(t, err)
		require.NotNil(t, before[0].Value)
		assert.Equal(t, 148500.0, *before[0].Value)

		require.NoError(t, store.Ingest("GDPC1", []schema.Revision{
			{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 9, 28), Value: 149000},
		}))
		after, err := analyzer.AsOf("GDPC1", schema.ObservationRange{}, day(2023, 12, 31))
		require.NoError(t, err)
		require.NotNil(t, after[0].Value)
		assert.Equal(t, 149000.0, *after[0].Value)
	})
}
