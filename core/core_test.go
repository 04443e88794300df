package core

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/internal/snapshot"
	"github.com/vintlab/vint/schema"
)

// stubAdapter serves canned metadata and records for executor tests.
type stubAdapter struct {
	series  map[string]schema.Series
	records map[string][]schema.Revision
}

func (a *stubAdapter) Describe(_ context.Context, seriesID string) (schema.Series, error) {
	meta, ok := a.series[seriesID]
	if !ok {
		return schema.Series{}, schema.UnknownSeries(seriesID)
	}
	return meta, nil
}

func (a *stubAdapter) Fetch(_ context.Context, seriesID string, rng schema.ObservationRange) ([]schema.Revision, error) {
	var out []schema.Revision
	for _, rec := range a.records[seriesID] {
		if rng.Contains(rec.ObservationDate) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func newStubAdapter() *stubAdapter {
	return &stubAdapter{
		series: map[string]schema.Series{
			"UNRATE": {ID: "UNRATE", Title: "Unemployment Rate", Frequency: schema.Monthly, Units: "Percent"},
			"GDPC1":  {ID: "GDPC1", Title: "Real GDP", Frequency: schema.Quarterly, Units: "Billions"},
		},
		records: map[string][]schema.Revision{
			"UNRATE": {
				{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 2, 10), Value: 3.4},
				{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 3, 10), Value: 3.5},
			},
			"GDPC1": {
				{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 4, 27), Value: 150000},
				{ObservationDate: day(2023, 1, 1), VintageDate: day(2023, 5, 25), Value: 148000},
			},
		},
	}
}

func newMockManager() *snapshot.MockManager {
	return &snapshot.MockManager{Store: snapshot.NewMockStore()}
}

// TestExecuteIngest tests fetching through an adapter into the snapshot.
func TestExecuteIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("multiple series land in the snapshot", func(t *testing.T) {
		mgr := newMockManager()
		cfg := &contract.Config{SeriesID: "UNRATE, GDPC1"}
		require.NoError(t, ExecuteIngest(ctx, cfg, mgr, newStubAdapter()))

		metas, err := mgr.GetStore().LoadSeries()
		require.NoError(t, err)
		assert.Len(t, metas, 2)

		records, err := mgr.GetStore().LoadRecords("UNRATE")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("re-ingest is idempotent", func(t *testing.T) {
		mgr := newMockManager()
		cfg := &contract.Config{SeriesID: "UNRATE"}
		require.NoError(t, ExecuteIngest(ctx, cfg, mgr, newStubAdapter()))
		require.NoError(t, ExecuteIngest(ctx, cfg, mgr, newStubAdapter()))

		records, err := mgr.GetStore().LoadRecords("UNRATE")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("unknown series from the adapter fails", func(t *testing.T) {
		mgr := newMockManager()
		cfg := &contract.Config{SeriesID: "NOPE"}
		err := ExecuteIngest(ctx, cfg, mgr, newStubAdapter())
		assert.ErrorIs(t, err, schema.ErrUnknownSeries)
	})

	t.Run("blank series list rejected", func(t *testing.T) {
		mgr := newMockManager()
		cfg := &contract.Config{SeriesID: " , "}
		err := ExecuteIngest(ctx, cfg, mgr, newStubAdapter())
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}

// TestQueryResults tests the snapshot-backed query paths.
func TestQueryResults(t *testing.T) {
	ctx := context.Background()
	mgr := newMockManager()
	require.NoError(t, ExecuteIngest(ctx, &contract.Config{SeriesID: "UNRATE,GDPC1"}, mgr, newStubAdapter()))

	t.Run("as-of honors the vintage", func(t *testing.T) {
		cfg := &contract.Config{SeriesID: "GDPC1", Vintage: day(2023, 5, 1)}
		view, err := GetAsOfResults(cfg, mgr)
		require.NoError(t, err)
		require.Len(t, view, 1)
		require.NotNil(t, view[0].Value)
		assert.Equal(t, 150000.0, *view[0].Value)
	})

	t.Run("as-of without vintage rejected", func(t *testing.T) {
		_, err := GetAsOfResults(&contract.Config{SeriesID: "GDPC1"}, mgr)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("latest reflects all vintages", func(t *testing.T) {
		view, err := GetLatestResults(&contract.Config{SeriesID: "GDPC1"}, mgr)
		require.NoError(t, err)
		require.Len(t, view, 1)
		require.NotNil(t, view[0].Value)
		assert.Equal(t, 148000.0, *view[0].Value)
	})

	t.Run("revision history with deltas", func(t *testing.T) {
		cfg := &contract.Config{SeriesID: "UNRATE", ObservationDate: day(2023, 1, 1)}
		deltas, err := GetRevisionResults(cfg, mgr)
		require.NoError(t, err)
		require.Len(t, deltas, 2)
		assert.Nil(t, deltas[0].Delta)
		require.NotNil(t, deltas[1].Delta)
		assert.InDelta(t, 0.1, *deltas[1].Delta, 1e-9)
	})

	t.Run("compare needs both vintages", func(t *testing.T) {
		cfg := &contract.Config{SeriesID: "GDPC1", Vintage: day(2023, 5, 1)}
		_, err := GetCompareResults(cfg, mgr)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("repeated queries do not accumulate goroutines", func(t *testing.T) {
		lagCfg := &contract.Config{SeriesID: "GDPC1"}
		_, err := GetLagResults(lagCfg, mgr)
		require.NoError(t, err)

		baseline := runtime.NumGoroutine()
		for i := 0; i < 50; i++ {
			_, err := GetLagResults(lagCfg, mgr)
			require.NoError(t, err)
		}
		// Each call builds and closes its own analyzer cache, so the
		// goroutine count should settle back near the baseline.
		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= baseline+5
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("queries feed the popularity ranking", func(t *testing.T) {
		ranks, err := GetTopResults(&contract.Config{ResultLimit: 10}, mgr)
		require.NoError(t, err)
		require.NotEmpty(t, ranks)
		assert.Equal(t, "GDPC1", ranks[0].SeriesID, "GDPC1 was queried most in this test")
	})
}

// TestSnapshotRoundTrip tests export and import through matrix files.
func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()

	export := func(t *testing.T, name string) (string, *snapshot.MockManager) {
		t.Helper()
		mgr := newMockManager()
		require.NoError(t, ExecuteIngest(ctx, &contract.Config{SeriesID: "GDPC1"}, mgr, newStubAdapter()))
		path := filepath.Join(t.TempDir(), name)
		cfg := &contract.Config{SeriesID: "GDPC1", OutputFile: path}
		require.NoError(t, ExecuteSnapshotExport(ctx, cfg, mgr))
		return path, mgr
	}

	t.Run("wide CSV round trip", func(t *testing.T) {
		path, _ := export(t, "gdp.csv")

		dest := newMockManager()
		cfg := &contract.Config{SeriesID: "GDPC1", Frequency: schema.Quarterly}
		require.NoError(t, ExecuteSnapshotImport(ctx, cfg, dest, path))

		records, err := dest.GetStore().LoadRecords("GDPC1")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("parquet round trip carries the series ID", func(t *testing.T) {
		path, _ := export(t, "gdp.parquet")

		dest := newMockManager()
		require.NoError(t, ExecuteSnapshotImport(ctx, &contract.Config{Frequency: schema.Quarterly}, dest, path))

		records, err := dest.GetStore().LoadRecords("GDPC1")
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("export requires an output file", func(t *testing.T) {
		mgr := newMockManager()
		require.NoError(t, ExecuteIngest(ctx, &contract.Config{SeriesID: "GDPC1"}, mgr, newStubAdapter()))
		err := ExecuteSnapshotExport(ctx, &contract.Config{SeriesID: "GDPC1"}, mgr)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("CSV import without a series ID rejected", func(t *testing.T) {
		path, _ := export(t, "gdp.csv")
		dest := newMockManager()
		err := ExecuteSnapshotImport(ctx, &contract.Config{}, dest, path)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}
