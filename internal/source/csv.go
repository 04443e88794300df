package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// missingValue is the provider convention for an absent cell.
const missingValue = "."

// CSVAdapter reads revision triples from a local file with the header
// observation_date,vintage_date,value. Rows with a missing value marker are
// skipped, not zeroed.
type CSVAdapter struct {
	path      string
	frequency schema.Frequency
	units     string
	title     string
}

var _ contract.SourceAdapter = &CSVAdapter{} // Compile-time check

// NewCSVAdapter returns an adapter over one triple file. Frequency, units and
// title stand in for the metadata a remote API would supply.
func NewCSVAdapter(path string, frequency schema.Frequency, units, title string) *CSVAdapter {
	return &CSVAdapter{path: path, frequency: frequency, units: units, title: title}
}

// Describe synthesizes series metadata from the adapter's configuration. The
// series ID defaults to the file stem when the caller passes an empty one.
func (a *CSVAdapter) Describe(_ context.Context, seriesID string) (schema.Series, error) {
	if seriesID == "" {
		seriesID = strings.TrimSuffix(filepath.Base(a.path), filepath.Ext(a.path))
	}
	freq := a.frequency
	if freq == "" {
		freq = schema.Daily
	}
	return schema.Series{ID: seriesID, Title: a.title, Frequency: freq, Units: a.units}, nil
}

// Fetch parses the file and returns the in-range triples.
func (a *CSVAdapter) Fetch(ctx context.Context, seriesID string, rng schema.ObservationRange) ([]schema.Revision, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, schema.SourceUnavailable(seriesID, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, schema.SourceUnavailable(seriesID, err)
	}
	if len(rows) == 0 {
		return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("%s is empty", a.path))
	}

	var records []schema.Revision
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, schema.SourceUnavailable(seriesID, err)
		}
		if i == 0 && isHeader(row) {
			continue
		}
		if len(row) < 3 {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("row %d has %d columns, want 3", i+1, len(row)))
		}
		if strings.TrimSpace(row[2]) == missingValue {
			continue
		}
		obs, err := time.Parse(schema.DateFormat, strings.TrimSpace(row[0]))
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("row %d: %w", i+1, err))
		}
		vin, err := time.Parse(schema.DateFormat, strings.TrimSpace(row[1]))
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("row %d: %w", i+1, err))
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("row %d: %w", i+1, err))
		}
		if !rng.Contains(schema.Day(obs)) {
			continue
		}
		records = append(records, schema.Revision{ObservationDate: obs, VintageDate: vin, Value: value})
	}
	return records, nil
}

// isHeader guesses whether the first row is a header rather than data.
func isHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	_, err := time.Parse(schema.DateFormat, strings.TrimSpace(row[0]))
	return err != nil
}
