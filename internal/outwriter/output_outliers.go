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

// WriteOutliers outputs detector flags, dispatching based on the output
// format configured.
func WriteOutliers(flags []schema.OutlierFlag, caption string, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, flags)
		}, "Wrote JSON outliers")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "value", "score", "reason", "label"}, func(cw *csv.Writer) error {
				for _, f := range flags {
					row := []string{
						f.Date.Format(schema.DateFormat),
						fmtFloat(f.Value),
						fmtFloat(f.Score),
						string(f.Reason),
						contract.GetPlainLabel(f.Score, cfg.Threshold),
					}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV outliers")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeOutlierTable(flags, caption, fmtFloat, cfg, w)
		}, "Wrote table")
	}
}

// writeOutlierTable generates the human-readable outlier table.
func writeOutlierTable(flags []schema.OutlierFlag, caption string, fmtFloat func(float64) string, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Value", "Score", "Reason", "Label"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, f := range flags {
		label := contract.GetPlainLabel(f.Score, cfg.Threshold)
		if cfg.UseColors {
			label = contract.GetColorLabel(f.Score, cfg.Threshold)
		}
		data = append(data, []string{
			f.Date.Format(schema.DateFormat),
			fmtFloat(f.Value),
			fmtFloat(f.Score),
			string(f.Reason),
			label,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %d flagged (threshold %.1f sd)\n", caption, len(flags), cfg.Threshold)
	return err
}

// WriteLagStats outputs release-lag statistics, dispatching based on the
// output format configured.
func WriteLagStats(stats schema.LagStats, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON lag stats")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"series_id", "count", "mean_days", "p50_days", "p90_days", "min_days", "max_days"}, func(cw *csv.Writer) error {
				return cw.Write([]string{
					stats.SeriesID,
					fmt.Sprintf("%d", stats.Count),
					fmtFloat(stats.MeanDays),
					fmtFloat(stats.P50Days),
					fmtFloat(stats.P90Days),
					fmtFloat(stats.MinDays),
					fmtFloat(stats.MaxDays),
				})
			})
		}, "Wrote CSV lag stats")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLagTable(stats, fmtFloat, cfg, w)
		}, "Wrote table")
	}
}

// writeLagTable generates the human-readable lag summary.
func writeLagTable(stats schema.LagStats, fmtFloat func(float64) string, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Days"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Mean", fmtFloat(stats.MeanDays)},
		{"P50", fmtFloat(stats.P50Days)},
		{"P90", fmtFloat(stats.P90Days)},
		{"Min", fmtFloat(stats.MinDays)},
		{"Max", fmtFloat(stats.MaxDays)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s: release lag over %d observations\n", stats.SeriesID, stats.Count)
	return err
}
