// Package parquet provides data structures and functions for exporting and
// importing vintage matrices as Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/vintlab/vint/schema"
)

// RevisionRow is one revision record in the flat columnar layout. One file
// holds one series.
type RevisionRow struct {
	// SeriesID is the series the record belongs to
	SeriesID string `parquet:"series_id,snappy"`

	// ObservationDate is the period the value describes (day precision)
	ObservationDate time.Time `parquet:"observation_date,snappy"`

	// VintageDate is the publication date of this value (day precision)
	VintageDate time.Time `parquet:"vintage_date,snappy"`

	// Value is the published figure
	Value float64 `parquet:"value,snappy"`
}

// WriteRevisionsParquet writes a series' revision records to a Parquet file.
func WriteRevisionsParquet(seriesID string, records []schema.Revision, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	rows := make([]RevisionRow, len(records))
	for i, rec := range records {
		rows[i] = RevisionRow{
			SeriesID:        seriesID,
			ObservationDate: rec.ObservationDate,
			VintageDate:     rec.VintageDate,
			Value:           rec.Value,
		}
	}

	// The schema is derived from the RevisionRow struct tags.
	writer := parquet.NewGenericWriter[RevisionRow](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ReadRevisionsParquet loads a series' revision records back from a Parquet
// file, returning the series ID found in the rows.
func ReadRevisionsParquet(inputPath string) (string, []schema.Revision, error) {
	rows, err := parquet.ReadFile[RevisionRow](inputPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read parquet file: %w", err)
	}

	var seriesID string
	records := make([]schema.Revision, len(rows))
	for i, row := range rows {
		if seriesID == "" {
			seriesID = row.SeriesID
		} else if row.SeriesID != seriesID {
			return "", nil, fmt.Errorf("parquet file mixes series %s and %s", seriesID, row.SeriesID)
		}
		records[i] = schema.Revision{
			ObservationDate: schema.Day(row.ObservationDate),
			VintageDate:     schema.Day(row.VintageDate),
			Value:           row.Value,
		}
	}
	return seriesID, records, nil
}
