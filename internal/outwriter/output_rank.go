package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// WriteRanks outputs the popularity ranking, dispatching based on the output
// format configured.
func WriteRanks(ranks []schema.SeriesRank, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, ranks)
		}, "Wrote JSON ranking")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, []string{"rank", "series_id", "hits"}, func(cw *csv.Writer) error {
				for i, r := range ranks {
					row := []string{strconv.Itoa(i + 1), r.SeriesID, strconv.Itoa(r.Hits)}
					if err := cw.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV ranking")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRankTable(ranks, cfg, w)
		}, "Wrote table")
	}
}

// writeRankTable generates the human-readable ranking table.
func writeRankTable(ranks []schema.SeriesRank, cfg *contract.Config, w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Series", "Hits"})
	table.Configure(func(tc *tablewriter.Config) {
		tc.MaxWidth = GetTerminalWidth(cfg)
		tc.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range ranks {
		data = append(data, []string{strconv.Itoa(i + 1), r.SeriesID, strconv.Itoa(r.Hits)})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteStatus outputs snapshot store status, dispatching based on the output
// format configured.
func WriteStatus(status schema.SnapshotStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON status")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			_, err := fmt.Fprintf(w, "Backend:   %s\nLocation:  %s\nSeries:    %d\nRevisions: %d\n",
				status.Backend, status.Location, status.SeriesCount, status.RevisionCount)
			if err != nil {
				return err
			}
			if status.SizeBytes >= 0 {
				_, err = fmt.Fprintf(w, "Size:      %d bytes\n", status.SizeBytes)
			}
			return err
		}, "Wrote status")
	}
}
