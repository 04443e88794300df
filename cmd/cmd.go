// Package cmd defines the command-line interface for vint.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(asofCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(revisionsCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(lagCmd)
	rootCmd.AddCommand(outliersCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the snapshot subcommands to the parent snapshot command
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
	snapshotCmd.AddCommand(snapshotMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("start", "", "Start of the observation date range (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("end", "", "End of the observation date range (YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("vintage", "", "Vintage date for point-in-time queries (YYYY-MM-DD)")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().String("backend", string(schema.SQLiteBackend), "Snapshot backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of ingestCmd to Viper
	ingestCmd.Flags().String("source", "csv", "Source adapter: csv or http")
	ingestCmd.Flags().String("csv-path", "", "Path to a revision CSV file (csv source)")
	ingestCmd.Flags().String("source-url", "", "Base URL of the vintage API (http source)")
	ingestCmd.Flags().String("api-key", "", "API key for the vintage API (http source)")
	ingestCmd.Flags().String("frequency", "", "Series frequency for csv sources: daily, weekly, monthly, quarterly or annual")
	ingestCmd.Flags().String("units", "", "Series units for csv sources")
	ingestCmd.Flags().String("title", "", "Series title for csv sources")
	if err := viper.BindPFlags(ingestCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ingest flags", err)
	}

	// Bind all flags of outliersCmd to Viper
	outliersCmd.Flags().Float64("threshold", contract.DefaultThreshold, "Robust z-score above which a point is flagged")
	outliersCmd.Flags().Int("window", contract.DefaultWindow, "Trailing window size for level outlier detection")
	outliersCmd.Flags().Int("min-revisions", contract.DefaultMinRevisions, "Minimum revision count for revision outlier detection")
	outliersCmd.Flags().String("kind", "both", "Detection kind: level, revision or both")
	if err := viper.BindPFlags(outliersCmd.Flags()); err != nil {
		contract.LogFatal("Error binding outliers flags", err)
	}

	// Bind all flags of compareCmd to Viper
	compareCmd.Flags().String("vintage-b", "", "Second vintage date to compare against (YYYY-MM-DD)")
	if err := viper.BindPFlags(compareCmd.Flags()); err != nil {
		contract.LogFatal("Error binding compare flags", err)
	}

	// Bind all flags of snapshotMigrateCmd to Viper
	snapshotMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(snapshotMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot migrate flags", err)
	}
}
