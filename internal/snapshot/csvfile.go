package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/vintlab/vint/schema"
)

// The wide CSV snapshot lays the matrix out with one row per observation
// date and one column per vintage date. A cell is filled only where a
// revision record exists at exactly that (observation, vintage) pair, so a
// reload reconstructs the same sparse matrix and every as-of view with it.

// obsHeader names the first column of the wide layout.
const obsHeader = "observation_date"

// WriteMatrixCSV writes revision records in the wide layout.
func WriteMatrixCSV(w io.Writer, records []schema.Revision) error {
	vintageSet := make(map[time.Time]struct{})
	byObs := make(map[time.Time]map[time.Time]float64)
	for _, rec := range records {
		vintageSet[rec.VintageDate] = struct{}{}
		row, ok := byObs[rec.ObservationDate]
		if !ok {
			row = make(map[time.Time]float64)
			byObs[rec.ObservationDate] = row
		}
		row[rec.VintageDate] = rec.Value
	}

	vintages := make([]time.Time, 0, len(vintageSet))
	for v := range vintageSet {
		vintages = append(vintages, v)
	}
	sort.Slice(vintages, func(i, j int) bool { return vintages[i].Before(vintages[j]) })
	observations := make([]time.Time, 0, len(byObs))
	for o := range byObs {
		observations = append(observations, o)
	}
	sort.Slice(observations, func(i, j int) bool { return observations[i].Before(observations[j]) })

	writer := csv.NewWriter(w)
	header := make([]string, 0, len(vintages)+1)
	header = append(header, obsHeader)
	for _, v := range vintages {
		header = append(header, v.Format(schema.DateFormat))
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, obs := range observations {
		row := make([]string, 0, len(vintages)+1)
		row = append(row, obs.Format(schema.DateFormat))
		for _, v := range vintages {
			if value, ok := byObs[obs][v]; ok {
				row = append(row, strconv.FormatFloat(value, 'g', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadMatrixCSV parses the wide layout back into revision records.
func ReadMatrixCSV(r io.Reader) ([]schema.Revision, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 || rows[0][0] != obsHeader {
		return nil, fmt.Errorf("not a matrix snapshot: missing %q header", obsHeader)
	}

	vintages := make([]time.Time, len(rows[0])-1)
	for i, cell := range rows[0][1:] {
		v, err := time.Parse(schema.DateFormat, cell)
		if err != nil {
			return nil, fmt.Errorf("bad vintage column %q: %w", cell, err)
		}
		vintages[i] = v
	}

	var records []schema.Revision
	for n, row := range rows[1:] {
		if len(row) != len(vintages)+1 {
			return nil, fmt.Errorf("row %d has %d cells, want %d", n+2, len(row), len(vintages)+1)
		}
		obs, err := time.Parse(schema.DateFormat, row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: bad observation date %q: %w", n+2, row[0], err)
		}
		for i, cell := range row[1:] {
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad value %q: %w", n+2, cell, err)
			}
			records = append(records, schema.Revision{
				ObservationDate: obs,
				VintageDate:     vintages[i],
				Value:           value,
			})
		}
	}
	return records, nil
}

// ExportMatrixCSV writes one series' matrix to a file.
func ExportMatrixCSV(path string, records []schema.Revision) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteMatrixCSV(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ImportMatrixCSV reads one series' matrix from a file.
func ImportMatrixCSV(path string) ([]schema.Revision, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadMatrixCSV(f)
}
