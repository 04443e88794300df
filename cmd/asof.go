package cmd

import (
	"github.com/spf13/cobra"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
)

// asofCmd shows a series exactly as it looked on a past date.
var asofCmd = &cobra.Command{
	Use:   "asof <series-id>",
	Short: "Show a series as it was known on a given vintage date.",
	Long: `Reconstruct the point-in-time view of a series: for every observation
date, the value that was current on the vintage date. Values published after
the vintage date never leak in; observations that had no published value yet
show as missing.

Examples:
  # Unemployment as an analyst saw it on 2020-03-15
  vint asof UNRATE --vintage 2020-03-15

  # The same view, restricted to 2019 and exported as CSV
  vint asof UNRATE --vintage 2020-03-15 --start 2019-01-01 --end 2019-12-31 --output csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAsOf(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot build as-of view", err)
		}
	},
}

// latestCmd shows the most current view of a series.
var latestCmd = &cobra.Command{
	Use:   "latest <series-id>",
	Short: "Show the most current values of a series.",
	Long: `Show the latest known value for every observation date, i.e. the view
using all vintages ingested so far.

Examples:
  # Current revision of quarterly GDP
  vint latest GDPC1

  # Just the pandemic quarters
  vint latest GDPC1 --start 2020-01-01 --end 2021-12-31`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLatest(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot build latest view", err)
		}
	},
}
