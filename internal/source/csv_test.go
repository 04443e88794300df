package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/schema"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func writeTripleFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCSVAdapterDescribe(t *testing.T) {
	path := writeTripleFile(t, "UNRATE.csv", "observation_date,vintage_date,value\n")

	t.Run("explicit series ID", func(t *testing.T) {
		a := NewCSVAdapter(path, schema.Monthly, "Percent", "Unemployment Rate")
		meta, err := a.Describe(context.Background(), "UNRATE")
		require.NoError(t, err)
		assert.Equal(t, "UNRATE", meta.ID)
		assert.Equal(t, schema.Monthly, meta.Frequency)
		assert.Equal(t, "Percent", meta.Units)
		assert.Equal(t, "Unemployment Rate", meta.Title)
	})

	t.Run("ID defaults to file stem", func(t *testing.T) {
		a := NewCSVAdapter(path, schema.Monthly, "", "")
		meta, err := a.Describe(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, "UNRATE", meta.ID)
	})

	t.Run("frequency defaults to daily", func(t *testing.T) {
		a := NewCSVAdapter(path, "", "", "")
		meta, err := a.Describe(context.Background(), "UNRATE")
		require.NoError(t, err)
		assert.Equal(t, schema.Daily, meta.Frequency)
	})
}

func TestCSVAdapterFetch(t *testing.T) {
	body := `observation_date,vintage_date,value
2023-01-01, 2023-02-03, 3.4
2023-01-01,2023-03-10,3.5
2023-02-01,2023-03-10,.
2023-03-01,2023-04-07,3.6
`
	path := writeTripleFile(t, "UNRATE.csv", body)
	a := NewCSVAdapter(path, schema.Monthly, "Percent", "")

	t.Run("parses triples and skips missing values", func(t *testing.T) {
		records, err := a.Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, day(2023, 1, 1), records[0].ObservationDate)
		assert.Equal(t, day(2023, 2, 3), records[0].VintageDate)
		assert.Equal(t, 3.4, records[0].Value)
		assert.Equal(t, 3.6, records[2].Value)
	})

	t.Run("range filters on observation date", func(t *testing.T) {
		rng := schema.ObservationRange{Start: day(2023, 2, 1), End: day(2023, 3, 1)}
		records, err := a.Fetch(context.Background(), "UNRATE", rng)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, day(2023, 3, 1), records[0].ObservationDate)
	})

	t.Run("headerless file still parses", func(t *testing.T) {
		bare := writeTripleFile(t, "bare.csv", "2023-01-01,2023-02-03,3.4\n")
		records, err := NewCSVAdapter(bare, schema.Monthly, "", "").Fetch(context.Background(), "X", schema.ObservationRange{})
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("missing file", func(t *testing.T) {
		a := NewCSVAdapter(filepath.Join(t.TempDir(), "nope.csv"), schema.Monthly, "", "")
		_, err := a.Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("empty file", func(t *testing.T) {
		empty := writeTripleFile(t, "empty.csv", "")
		_, err := NewCSVAdapter(empty, schema.Monthly, "", "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("short row", func(t *testing.T) {
		bad := writeTripleFile(t, "short.csv", "observation_date,vintage_date,value\n2023-01-01,2023-02-03\n")
		_, err := NewCSVAdapter(bad, schema.Monthly, "", "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("bad value", func(t *testing.T) {
		bad := writeTripleFile(t, "badval.csv", "2023-01-01,2023-02-03,abc\n")
		_, err := NewCSVAdapter(bad, schema.Monthly, "", "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("bad vintage date", func(t *testing.T) {
		bad := writeTripleFile(t, "baddate.csv", "2023-01-01,not-a-date,3.4\n")
		_, err := NewCSVAdapter(bad, schema.Monthly, "", "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := a.Fetch(ctx, "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})
}
