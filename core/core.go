// Package core has the vintage store, analyzers and detector, plus the
// executors that wire them to snapshot storage and output.
package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/internal/outwriter"
	"github.com/vintlab/vint/internal/parquet"
	"github.com/vintlab/vint/internal/snapshot"
	"github.com/vintlab/vint/schema"
)

// ingestWorkers bounds concurrent adapter fetches during multi-series ingest.
const ingestWorkers = 4

// ExecuteIngest fetches one or more series through the adapter and merges
// them into the persisted snapshot. Multiple series (comma-separated) are
// fetched concurrently; each series' merge stays serialized inside the store.
func ExecuteIngest(ctx context.Context, cfg *contract.Config, mgr contract.SnapshotManager, adapter contract.SourceAdapter) error {
	ids := splitSeriesIDs(cfg.SeriesID)
	if len(ids) == 0 {
		return schema.InvalidArgument("at least one series ID is required")
	}

	store, err := loadStore(mgr)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(ingestWorkers)
	for _, id := range ids {
		g.Go(func() error {
			meta, err := adapter.Describe(ctx, id)
			if err != nil {
				return err
			}
			if err := store.Register(meta); err != nil {
				return err
			}
			records, err := adapter.Fetch(ctx, id, cfg.Range)
			if err != nil {
				return err
			}
			if err := store.Ingest(meta.ID, records); err != nil {
				return err
			}
			snap := mgr.GetStore()
			if err := snap.SaveSeries(meta); err != nil {
				return fmt.Errorf("persist series %s: %w", meta.ID, err)
			}
			merged, err := store.Records(meta.ID)
			if err != nil {
				return err
			}
			if err := snap.SaveRecords(meta.ID, merged); err != nil {
				return fmt.Errorf("persist records for %s: %w", meta.ID, err)
			}
			fmt.Printf("📈 Ingested %d records into %s\n", len(records), meta.ID)
			return nil
		})
	}
	return g.Wait()
}

// ExecuteAsOf prints the point-in-time view of a series at the configured
// vintage date.
func ExecuteAsOf(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	view, err := GetAsOfResults(cfg, mgr)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("%s as of %s", cfg.SeriesID, cfg.Vintage.Format(schema.DateFormat))
	return outwriter.WriteObservations(view, caption, cfg)
}

// ExecuteLatest prints the most-current view of a series.
func ExecuteLatest(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	view, err := GetLatestResults(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteObservations(view, cfg.SeriesID+" latest", cfg)
}

// ExecuteRevisions prints the revision history of one observation date.
func ExecuteRevisions(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	deltas, err := GetRevisionResults(cfg, mgr)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("%s revisions of %s", cfg.SeriesID, cfg.ObservationDate.Format(schema.DateFormat))
	return outwriter.WriteRevisionDeltas(deltas, caption, cfg)
}

// ExecuteCompare prints what changed between two releases of a series.
func ExecuteCompare(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	diffs, err := GetCompareResults(cfg, mgr)
	if err != nil {
		return err
	}
	caption := fmt.Sprintf("%s: %s vs %s", cfg.SeriesID,
		cfg.Vintage.Format(schema.DateFormat), cfg.VintageB.Format(schema.DateFormat))
	return outwriter.WriteVintageDiffs(diffs, caption, cfg)
}

// ExecuteLag prints release-lag statistics for a series.
func ExecuteLag(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	stats, err := GetLagResults(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteLagStats(stats, cfg)
}

// ExecuteOutliers runs the configured detection kinds and prints the flags.
func ExecuteOutliers(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	flags, err := GetOutlierResults(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteOutliers(flags, cfg.SeriesID+" outliers", cfg)
}

// ExecuteTop prints the most-accessed series from the persisted counters.
func ExecuteTop(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	ranks, err := GetTopResults(cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteRanks(ranks, cfg)
}

// ExecuteSnapshotExport writes one series' matrix to a file: wide CSV by
// default, Parquet when the output mode or file extension says so.
func ExecuteSnapshotExport(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager) error {
	if cfg.OutputFile == "" {
		return schema.InvalidArgument("--output-file is required for snapshot export")
	}
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return err
	}
	records, err := store.Records(cfg.SeriesID)
	if err != nil {
		return err
	}
	if cfg.Output == schema.ParquetOut || filepath.Ext(cfg.OutputFile) == ".parquet" {
		if err := parquet.WriteRevisionsParquet(cfg.SeriesID, records, cfg.OutputFile); err != nil {
			return err
		}
	} else {
		if err := snapshot.ExportMatrixCSV(cfg.OutputFile, records); err != nil {
			return err
		}
	}
	fmt.Printf("💾 Exported %d records of %s to %s\n", len(records), cfg.SeriesID, cfg.OutputFile)
	return nil
}

// ExecuteSnapshotImport loads a matrix file into the persisted snapshot. CSV
// imports need the series registered (or --frequency given) since the wide
// layout carries no metadata.
func ExecuteSnapshotImport(_ context.Context, cfg *contract.Config, mgr contract.SnapshotManager, path string) error {
	store, err := loadStore(mgr)
	if err != nil {
		return err
	}

	seriesID := cfg.SeriesID
	var records []schema.Revision
	if filepath.Ext(path) == ".parquet" {
		fileSeries, parsed, err := parquet.ReadRevisionsParquet(path)
		if err != nil {
			return err
		}
		if seriesID == "" {
			seriesID = fileSeries
		}
		records = parsed
	} else {
		if records, err = snapshot.ImportMatrixCSV(path); err != nil {
			return err
		}
	}
	if seriesID == "" {
		return schema.InvalidArgument("a series ID argument is required for CSV import")
	}

	if _, err := store.Series(seriesID); errors.Is(err, schema.ErrUnknownSeries) {
		freq := cfg.Frequency
		if freq == "" {
			freq = schema.Daily
		}
		meta := schema.Series{ID: seriesID, Title: cfg.Title, Frequency: freq, Units: cfg.Units}
		if err := store.Register(meta); err != nil {
			return err
		}
		if err := mgr.GetStore().SaveSeries(meta); err != nil {
			return fmt.Errorf("persist series %s: %w", seriesID, err)
		}
	} else if err != nil {
		return err
	}

	if err := store.Ingest(seriesID, records); err != nil {
		return err
	}
	merged, err := store.Records(seriesID)
	if err != nil {
		return err
	}
	if err := mgr.GetStore().SaveRecords(seriesID, merged); err != nil {
		return fmt.Errorf("persist records for %s: %w", seriesID, err)
	}
	fmt.Printf("📈 Imported %d records into %s\n", len(records), seriesID)
	return nil
}

// loadStore rebuilds a VintageStore from the persisted snapshot. With series
// IDs given it loads just those matrices; otherwise it loads metadata for all
// series and no records.
func loadStore(mgr contract.SnapshotManager, seriesIDs ...string) (*VintageStore, error) {
	snap := mgr.GetStore()
	store := NewVintageStore()

	metas, err := snap.LoadSeries()
	if err != nil {
		return nil, fmt.Errorf("load series metadata: %w", err)
	}
	for _, meta := range metas {
		if err := store.Register(meta); err != nil {
			return nil, err
		}
	}

	for _, id := range seriesIDs {
		records, err := snap.LoadRecords(id)
		if err != nil {
			return nil, fmt.Errorf("load records for %s: %w", id, err)
		}
		if len(records) == 0 {
			continue // a registered series with no records is a valid, empty matrix
		}
		if err := store.Ingest(id, records); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// trackAccess bumps and persists the popularity counter for a series. Counter
// failures must not break a successful query, so they only warn.
func trackAccess(mgr contract.SnapshotManager, seriesID string) {
	snap := mgr.GetStore()
	counts, err := snap.LoadAccessCounts()
	if err != nil {
		contract.LogWarn("Cannot load access counts", err)
		return
	}
	tracker := NewPopularSeriesTracker()
	tracker.Restore(counts)
	tracker.RecordAccess(seriesID)
	if err := snap.SaveAccessCounts(tracker.Counts()); err != nil {
		contract.LogWarn("Cannot persist access counts", err)
	}
}

// splitSeriesIDs parses a comma-separated series list.
func splitSeriesIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
