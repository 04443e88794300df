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

// WriteObservations outputs a point-in-time or latest view, dispatching based
// on the output format configured. The caption names the view, e.g.
// "UNRATE as of 2023-02-15".
func WriteObservations(view []schema.Observation, caption string, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, view)
		}, "Wrote JSON observations")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"date", "value"}, func(cw *csv.Writer) error {
				for _, obs := range view {
					row := []string{obs.Date.Format(schema.DateFormat), formatOptional(obs.Value, fmtFloat)}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV observations")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeObservationTable(view, caption, fmtFloat, cfg, w)
		}, "Wrote table")
	}
}

// writeObservationTable generates the human-readable table.
func writeObservationTable(view []schema.Observation, caption string, fmtFloat func(float64) string, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Date", "Value"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, obs := range view {
		data = append(data, []string{
			obs.Date.Format(schema.DateFormat),
			formatOptional(obs.Value, fmtFloat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "%s: %d observations\n", caption, len(view))
	return err
}
