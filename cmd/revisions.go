package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
)

// revisionsCmd walks the revision history of a single observation.
var revisionsCmd = &cobra.Command{
	Use:   "revisions <series-id> <observation-date>",
	Short: "Show how one observation was revised across releases.",
	Long: `List every published value for a single observation date, in release
order, with the delta from the previous release. The first release has no
delta.

Examples:
  # How Q1 2023 GDP changed from advance estimate to final
  vint revisions GDPC1 2023-01-01

  # Same history as JSON for scripting
  vint revisions GDPC1 2023-01-01 --output json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRevisions(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot list revisions", err)
		}
	},
}

// compareCmd diffs two point-in-time views.
var compareCmd = &cobra.Command{
	Use:   "compare <series-id>",
	Short: "Diff a series between two vintage dates.",
	Long: `Compare the point-in-time views of a series at two vintage dates and
show, for each observation, the value at each vintage and the difference.
Observations that are identical in both views still appear; the footer counts
how many actually changed.

Examples:
  # What the annual benchmark revision did to payrolls
  vint compare PAYEMS --vintage 2024-01-15 --vintage-b 2024-02-15

  # Focus the diff on 2023
  vint compare PAYEMS --vintage 2024-01-15 --vintage-b 2024-02-15 --start 2023-01-01 --end 2023-12-31`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot compare vintages", err)
		}
	},
}

// lagCmd summarizes publication delay.
var lagCmd = &cobra.Command{
	Use:   "lag <series-id>",
	Short: "Show release-lag statistics for a series.",
	Long: `Measure how long after each observation date its first value was
published, and summarize the distribution: mean, median, 90th percentile,
minimum and maximum lag in days.

Examples:
  # How quickly is the unemployment rate published?
  vint lag UNRATE`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLag(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot compute release lag", err)
		}
	},
}
