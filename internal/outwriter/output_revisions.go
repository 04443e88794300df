package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// WriteRevisionDeltas outputs one observation date's revision history,
// dispatching based on the output format configured.
func WriteRevisionDeltas(deltas []schema.RevisionDelta, caption string, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, deltas)
		}, "Wrote JSON revisions")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"vintage_date", "value", "delta"}, func(cw *csv.Writer) error {
				for _, d := range deltas {
					row := []string{
						d.VintageDate.Format(schema.DateFormat),
						fmtFloat(d.Value),
						formatOptional(d.Delta, fmtFloat),
					}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV revisions")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDeltaTable(deltas, caption, fmtFloat, cfg, w)
		}, "Wrote table")
	}
}

// writeDeltaTable generates the human-readable revision table.
func writeDeltaTable(deltas []schema.RevisionDelta, caption string, fmtFloat func(float64) string, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Release", "Vintage", "Value", "Delta"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, d := range deltas {
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			d.VintageDate.Format(schema.DateFormat),
			fmtFloat(d.Value),
			formatOptional(d.Delta, fmtFloat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %d releases\n", caption, len(deltas))
	return err
}

// WriteVintageDiffs outputs the comparison of two as-of views, dispatching
// based on the output format configured.
func WriteVintageDiffs(diffs []schema.VintageDiff, caption string, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, diffs)
		}, "Wrote JSON comparison")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "value_a", "value_b", "diff"}, func(cw *csv.Writer) error {
				for _, d := range diffs {
					row := []string{
						d.Date.Format(schema.DateFormat),
						formatOptional(d.ValueA, fmtFloat),
						formatOptional(d.ValueB, fmtFloat),
						formatOptional(d.Diff, fmtFloat),
					}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV comparison")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDiffTable(diffs, caption, fmtFloat, cfg, w)
		}, "Wrote table")
	}
}

// writeDiffTable generates the human-readable comparison table.
func writeDiffTable(diffs []schema.VintageDiff, caption string, fmtFloat func(float64) string, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Vintage A", "Vintage B", "Diff"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	changed := 0
	for _, d := range diffs {
		if d.Diff != nil && *d.Diff != 0 {
			changed++
		}
		data = append(data, []string{
			d.Date.Format(schema.DateFormat),
			formatOptional(d.ValueA, fmtFloat),
			formatOptional(d.ValueB, fmtFloat),
			formatOptional(d.Diff, fmtFloat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %d dates, %d changed\n", caption, len(diffs), changed)
	return err
}
