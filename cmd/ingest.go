package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/internal/source"
	"github.com/vintlab/vint/schema"
)

// ingestCmd pulls revision records from a source into the snapshot.
var ingestCmd = &cobra.Command{
	Use:   "ingest <series-id>[,<series-id>...]",
	Short: "Fetch series vintages from a source and store them.",
	Long: `Fetch the full revision history of one or more series and merge it
into the local snapshot.

Each record carries the observation date, the vintage date it was published
on, and the value as published. Re-running ingest is safe: identical records
are absorbed, newer vintages are merged in.

Sources:
  csv  - a local CSV file with observation_date,vintage_date,value rows
  http - an ALFRED-style vintage API

Examples:
  # Load a series from a revision CSV
  vint ingest UNRATE --source csv --csv-path unrate.csv --frequency monthly

  # Pull several series from a vintage API in one go
  vint ingest UNRATE,GDPC1 --source http --source-url https://api.example.org --api-key $KEY

  # Restrict the fetch to a date range
  vint ingest GDPC1 --source http --source-url https://api.example.org --start 2015-01-01`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		adapter, err := buildAdapter(cfg)
		if err != nil {
			contract.LogFatal("Cannot build source adapter", err)
		}
		if err := core.ExecuteIngest(rootCtx, cfg, snapshotManager, adapter); err != nil {
			contract.LogFatal("Cannot ingest series", err)
		}
	},
}

// buildAdapter picks the source adapter from the validated config.
func buildAdapter(cfg *contract.Config) (contract.SourceAdapter, error) {
	switch cfg.Source {
	case "", "csv":
		if cfg.CSVPath == "" {
			return nil, schema.InvalidArgument("--csv-path is required for the csv source")
		}
		freq := cfg.Frequency
		if freq == "" {
			freq = schema.Monthly
		}
		return source.NewCSVAdapter(cfg.CSVPath, freq, cfg.Units, cfg.Title), nil
	case "http":
		if cfg.SourceURL == "" {
			return nil, schema.InvalidArgument("--source-url is required for the http source")
		}
		return source.NewHTTPAdapter(cfg.SourceURL, cfg.APIKey), nil
	default:
		return nil, schema.InvalidArgument("--source must be csv or http")
	}
}
