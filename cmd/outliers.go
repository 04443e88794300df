package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
)

// outliersCmd flags anomalous observations and revisions.
var outliersCmd = &cobra.Command{
	Use:   "outliers <series-id>",
	Short: "Flag anomalous values and unusually large revisions.",
	Long: `Scan a series for two kinds of anomalies:

  level    - values far from their trailing-window mean, scored as a z-score
             against the window's standard deviation
  revision - release-to-release deltas far larger than is typical for the
             series

Scores above the threshold are flagged and labeled by severity. The level scan
runs against the latest view unless --vintage pins an older one.

Examples:
  # Scan with defaults (threshold 3, 12-point window, both kinds)
  vint outliers ICSA

  # Only large revisions, with a stricter threshold
  vint outliers GDPC1 --kind revision --threshold 4

  # Level outliers as they would have appeared mid-2020
  vint outliers ICSA --kind level --vintage 2020-07-01`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteOutliers(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot detect outliers", err)
		}
	},
}

// topCmd ranks series by how often they are queried.
var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most frequently accessed series.",
	Long: `Rank series by how many times they have been queried through asof,
latest, revisions, compare, lag and outliers. Counters persist in the snapshot
backend, so the ranking survives restarts.

Examples:
  # The ten most popular series
  vint top

  # Top three only
  vint top --limit 3`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTop(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot rank series", err)
		}
	},
}
