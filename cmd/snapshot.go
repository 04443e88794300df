package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vintlab/vint/core"
	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/internal/outwriter"
	"github.com/vintlab/vint/internal/snapshot"
	"github.com/vintlab/vint/schema"
)

// snapshotSetup loads minimal configuration needed for snapshot maintenance.
// This is used by commands that need store access without full shared setup.
func snapshotSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get snapshot-related config values
	backend := schema.DatabaseBackend(viper.GetString("backend"))
	connStr := viper.GetString("db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	if err := snapshot.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize snapshot store: %w", err)
	}

	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.Output = schema.OutputMode(viper.GetString("output"))

	return nil
}

// snapshotCmd groups snapshot maintenance commands.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the persisted vintage snapshot",
	Long: `Manage the snapshot database that holds every ingested vintage.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  export  - Write one series' vintage matrix to a CSV or Parquet file
  import  - Load a vintage matrix file into the snapshot
  status  - Show snapshot statistics and connection info
  clear   - Remove all stored series, revisions and counters
  migrate - Move the snapshot schema to a specific version

Examples:
  # Check what the snapshot holds
  vint snapshot status

  # Move a series between machines
  vint snapshot export UNRATE --output-file unrate.parquet
  vint snapshot import unrate.parquet`,
}

// snapshotExportCmd writes one series to a portable file.
var snapshotExportCmd = &cobra.Command{
	Use:   "export <series-id>",
	Short: "Write a series' full vintage matrix to a file",
	Long: `Export every (observation date, vintage date, value) record of a series.

The file format follows the extension or --output: a wide CSV with one column
per vintage date, or Parquet with one row per record.

Examples:
  # Wide CSV, one vintage per column
  vint snapshot export UNRATE --output-file unrate.csv

  # Parquet for columnar tooling
  vint snapshot export UNRATE --output-file unrate.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSnapshotExport(rootCtx, cfg, snapshotManager); err != nil {
			contract.LogFatal("Cannot export snapshot", err)
		}
	},
}

// snapshotImportCmd loads a matrix file into the snapshot.
var snapshotImportCmd = &cobra.Command{
	Use:   "import <path> [series-id]",
	Short: "Load a vintage matrix file into the snapshot",
	Long: `Import the records of an exported matrix file.

Parquet files carry the series ID; CSV files don't, so CSV imports need the
series ID argument and, for a series not yet registered, --frequency.

Examples:
  # Round-trip a Parquet export
  vint snapshot import unrate.parquet

  # Import a wide CSV into a new monthly series
  vint snapshot import unrate.csv UNRATE --frequency monthly`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// args[0] is the file path; only the optional series ID goes
		// through the shared positional handling.
		return sharedSetup(cmd, args[1:])
	},
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteSnapshotImport(rootCtx, cfg, snapshotManager, args[0]); err != nil {
			contract.LogFatal("Cannot import snapshot", err)
		}
	},
}

// snapshotStatusCmd shows snapshot statistics.
var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display snapshot statistics and connection details",
	Long: `Show detailed information about the vintage snapshot.

Displays:
- Backend type and location
- Number of stored series
- Total number of revision records
- Snapshot database size

Examples:
  # Check snapshot status
  vint snapshot status`,
	PreRunE: snapshotSetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := snapshot.Manager.GetStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get snapshot status", err)
		}
		if err := outwriter.WriteStatus(status, cfg); err != nil {
			contract.LogFatal("Failed to write snapshot status", err)
		}
	},
}

// snapshotClearCmd wipes the snapshot.
var snapshotClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored vintage data",
	Long: `Delete all series, revision records and access counters from the
configured backend.

Use this when:
- A source republished its full history and you want a clean re-ingest
- The snapshot may be stale or corrupted
- Testing ingest behavior from scratch

Examples:
  # Clear the default SQLite snapshot
  vint snapshot clear

  # Clear a PostgreSQL snapshot (connection via env variable)
  VINT_BACKEND=postgresql VINT_DB_CONNECT="..." vint snapshot clear`,
	PreRunE: snapshotSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := snapshot.Manager.GetStore().Clear(); err != nil {
			contract.LogFatal("Failed to clear snapshot", err)
		}
		fmt.Println("Snapshot cleared successfully.")
	},
}

// snapshotMigrateCmd moves the schema to a specific version.
var snapshotMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the snapshot schema to a target version",
	Long: `Run schema migrations against the snapshot database.

The target version defaults to the latest. Version 0 rolls the schema all the
way back; any stored data is lost.

Examples:
  # Upgrade to the latest schema
  vint snapshot migrate

  # Roll back completely
  vint snapshot migrate --target-version 0`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfigFile(); err != nil {
			return err
		}
		backend := schema.DatabaseBackend(viper.GetString("backend"))
		connStr := viper.GetString("db-connect")
		if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
			return err
		}
		cfg.Backend = backend
		cfg.DBConnect = connStr
		return nil
	},
	Run: func(_ *cobra.Command, _ []string) {
		target := viper.GetInt("target-version")
		if err := snapshot.Migrate(cfg.Backend, cfg.DBConnect, target); err != nil {
			contract.LogFatal("Failed to migrate snapshot schema", err)
		}
		fmt.Println("Snapshot schema migrated successfully.")
	},
}
