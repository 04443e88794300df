package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/schema"
)

// newDailyLevelSeries builds a flat daily series with one spike at the end.
func newDailyLevelSeries(t *testing.T) *VintageStore {
	t.Helper()
	store := NewVintageStore()
	require.NoError(t, store.Register(schema.Series{ID: "ICSA", Frequency: schema.Daily}))

	var records []schema.Revision
	base := day(2023, 1, 1)
	for i := 0; i < 12; i++ {
		records = append(records, schema.Revision{
			ObservationDate: base.AddDate(0, 0, i),
			VintageDate:     base.AddDate(0, 0, i+7),
			Value:           100,
		})
	}
	records = append(records, schema.Revision{
		ObservationDate: base.AddDate(0, 0, 12),
		VintageDate:     base.AddDate(0, 0, 19),
		Value:           1000,
	})
	require.NoError(t, store.Ingest("ICSA", records))
	return store
}

// TestLevelOutliers tests trailing-window anomaly detection.
func TestLevelOutliers(t *testing.T) {
	t.Run("spike after a flat window is flagged once", func(t *testing.T) {
		store := newDailyLevelSeries(t)
		detector := NewOutlierDetector(store)
		flags, err := detector.LevelOutliers("ICSA", schema.ObservationRange{}, time.Time{})
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.Equal(t, day(2023, 1, 13), flags[0].Date)
		assert.Equal(t, 1000.0, flags[0].Value)
		assert.Equal(t, schema.LevelFlag, flags[0].Reason)
		assert.Greater(t, flags[0].Score, detector.Threshold)
	})

	t.Run("uniform series has no flags", func(t *testing.T) {
		store := NewVintageStore()
		require.NoError(t, store.Register(schema.Series{ID: "FLAT", Frequency: schema.Daily}))
		var records []schema.Revision
		for i := 0; i < 20; i++ {
			records = append(records, schema.Revision{
				ObservationDate: day(2023, 1, 1).AddDate(0, 0, i),
				VintageDate:     day(2023, 2, 1),
				Value:           5,
			})
		}
		require.NoError(t, store.Ingest("FLAT", records))
		flags, err := NewOutlierDetector(store).LevelOutliers("FLAT", schema.ObservationRange{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("windows shorter than the minimum are skipped", func(t *testing.T) {
		store := NewVintageStore()
		require.NoError(t, store.Register(schema.Series{ID: "SHORT", Frequency: schema.Daily}))
		require.NoError(t, store.Ingest("SHORT", []schema.Revision{
			{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 1, 8), Value: 100},
			{ObservationDate: day(2023, 1, 2), VintageDate: day(2023, 1, 9), Value: 9000},
		}))
		flags, err := NewOutlierDetector(store).LevelOutliers("SHORT", schema.ObservationRange{}, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("vintage pins the scanned view", func(t *testing.T) {
		store := newDailyLevelSeries(t)
		detector := NewOutlierDetector(store)
		// Before the spike's vintage date, the view ends at the flat stretch.
		flags, err := detector.LevelOutliers("ICSA", schema.ObservationRange{}, day(2023, 1, 18))
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("non-positive threshold rejected", func(t *testing.T) {
		store := newDailyLevelSeries(t)
		detector := NewOutlierDetector(store)
		detector.Threshold = 0
		_, err := detector.LevelOutliers("ICSA", schema.ObservationRange{}, time.Time{})
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("unknown series", func(t *testing.T) {
		store := NewVintageStore()
		_, err := NewOutlierDetector(store).LevelOutliers("NOPE", schema.ObservationRange{}, time.Time{})
		assert.ErrorIs(t, err, schema.ErrUnknownSeries)
	})
}

// TestRevisionOutliers tests anomalous vintage transition detection.
func TestRevisionOutliers(t *testing.T) {
	// newRevisedSeries builds a monthly series where each observation gets one
	// small revision, except one that is revised by a large amount.
	newRevisedSeries := func(t *testing.T, bigDelta float64) *VintageStore {
		t.Helper()
		store := NewVintageStore()
		require.NoError(t, store.Register(schema.Series{ID: "PAYEMS", Frequency: schema.Monthly}))
		var records []schema.Revision
		for i := 0; i < 10; i++ {
			obs := day(2023, time.Month(i+1), 1)
			first := obs.AddDate(0, 1, 4)
			records = append(records,
				schema.Revision{ObservationDate: obs, VintageDate: first, Value: 100},
				schema.Revision{ObservationDate: obs, VintageDate: first.AddDate(0, 1, 0), Value: 100.1},
			)
		}
		obs := day(2023, 11, 1)
		first := obs.AddDate(0, 1, 4)
		records = append(records,
			schema.Revision{ObservationDate: obs, VintageDate: first, Value: 100},
			schema.Revision{ObservationDate: obs, VintageDate: first.AddDate(0, 1, 0), Value: 100 + bigDelta},
		)
		require.NoError(t, store.Ingest("PAYEMS", records))
		return store
	}

	t.Run("large revision is flagged", func(t *testing.T) {
		store := newRevisedSeries(t, 50)
		flags, err := NewOutlierDetector(store).RevisionOutliers("PAYEMS")
		require.NoError(t, err)
		require.Len(t, flags, 1)
		assert.Equal(t, day(2024, 1, 5), flags[0].Date, "flag carries the vintage date of the transition")
		assert.Equal(t, 50.0, flags[0].Value, "flag value is the delta")
		assert.Equal(t, schema.RevisionFlag, flags[0].Reason)
	})

	t.Run("typical revisions pass", func(t *testing.T) {
		store := newRevisedSeries(t, 0.1)
		flags, err := NewOutlierDetector(store).RevisionOutliers("PAYEMS")
		require.NoError(t, err)
		assert.Empty(t, flags)
	})

	t.Run("too few revisions is a verdictless error", func(t *testing.T) {
		store := newQuarterlyGDP(t)
		detector := NewOutlierDetector(store)
		detector.MinRevisions = 5
		_, err := detector.RevisionOutliers("GDPC1")
		assert.ErrorIs(t, err, schema.ErrInsufficientData)
	})

	t.Run("identical deltas yield no flags", func(t *testing.T) {
		store := NewVintageStore()
		require.NoError(t, store.Register(schema.Series{ID: "UNIFORM", Frequency: schema.Daily}))
		var records []schema.Revision
		for i := 0; i < 5; i++ {
			obs := day(2023, 1, 1).AddDate(0, 0, i)
			records = append(records,
				schema.Revision{ObservationDate: obs, VintageDate: obs.AddDate(0, 0, 7), Value: 10},
				schema.Revision{ObservationDate: obs, VintageDate: obs.AddDate(0, 0, 14), Value: 11},
			)
		}
		require.NoError(t, store.Ingest("UNIFORM", records))
		flags, err := NewOutlierDetector(store).RevisionOutliers("UNIFORM")
		require.NoError(t, err)
		assert.Empty(t, flags)
	})
}

// TestMeanStddev tests the statistics helpers.
func TestMeanStddev(t *testing.T) {
	t.Run("sample standard deviation", func(t *testing.T) {
		mean, sd := meanStddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
		assert.InDelta(t, 5.0, mean, 1e-9)
		assert.InDelta(t, 2.138, sd, 1e-3)
	})

	t.Run("degenerate inputs", func(t *testing.T) {
		mean, sd := meanStddev(nil)
		assert.Zero(t, mean)
		assert.Zero(t, sd)
		mean, sd = meanStddev([]float64{3})
		assert.Equal(t, 3.0, mean)
		assert.Zero(t, sd)
	})

	t.Run("floor keeps flat-window scores finite", func(t *testing.T) {
		assert.Greater(t, stddevFloor(0, 100), 0.0)
		assert.Equal(t, 5.0, stddevFloor(5, 100))
	})
}
