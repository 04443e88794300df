package core

import (
	"errors"
	"fmt"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// The Get*Results functions return raw query results. They back both the CLI
// executors and the MCP tool handlers.

// GetAsOfResults returns the point-in-time view of a series.
func GetAsOfResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.Observation, error) {
	if cfg.Vintage.IsZero() {
		return nil, schema.InvalidArgument("a vintage date is required")
	}
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return nil, err
	}
	view, err := store.AsOf(cfg.SeriesID, cfg.Range, cfg.Vintage)
	if err != nil {
		return nil, err
	}
	trackAccess(mgr, cfg.SeriesID)
	return view, nil
}

// GetLatestResults returns the most-current view of a series.
func GetLatestResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.Observation, error) {
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return nil, err
	}
	view, err := store.Latest(cfg.SeriesID, cfg.Range)
	if err != nil {
		return nil, err
	}
	trackAccess(mgr, cfg.SeriesID)
	return view, nil
}

// GetRevisionResults returns the release-by-release history of one observation.
func GetRevisionResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.RevisionDelta, error) {
	if cfg.ObservationDate.IsZero() {
		return nil, schema.InvalidArgument("an observation date is required")
	}
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return nil, err
	}
	analyzer := NewRevisionAnalyzer(store)
	defer analyzer.Close()
	deltas, err := analyzer.RevisionDelta(cfg.SeriesID, cfg.ObservationDate)
	if err != nil {
		return nil, err
	}
	trackAccess(mgr, cfg.SeriesID)
	return deltas, nil
}

// GetCompareResults returns the per-observation diff between two vintages.
func GetCompareResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.VintageDiff, error) {
	if cfg.Vintage.IsZero() || cfg.VintageB.IsZero() {
		return nil, schema.InvalidArgument("two vintage dates are required")
	}
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return nil, err
	}
	analyzer := NewRevisionAnalyzer(store)
	defer analyzer.Close()
	diffs, err := analyzer.CompareVintages(cfg.SeriesID, cfg.Vintage, cfg.VintageB, cfg.Range)
	if err != nil {
		return nil, err
	}
	trackAccess(mgr, cfg.SeriesID)
	return diffs, nil
}

// GetLagResults returns release-lag statistics for a series.
func GetLagResults(cfg *contract.Config, mgr contract.SnapshotManager) (schema.LagStats, error) {
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return schema.LagStats{}, err
	}
	analyzer := NewRevisionAnalyzer(store)
	defer analyzer.Close()
	stats, err := analyzer.ReleaseLag(cfg.SeriesID)
	if err != nil {
		return schema.LagStats{}, err
	}
	trackAccess(mgr, cfg.SeriesID)
	return stats, nil
}

// GetOutlierResults runs the detection kinds selected in the config. An
// insufficient-data verdict from the revision detector only degrades a
// combined scan; on its own it is an error.
func GetOutlierResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.OutlierFlag, error) {
	store, err := loadStore(mgr, cfg.SeriesID)
	if err != nil {
		return nil, err
	}
	detector := NewOutlierDetector(store)
	if cfg.Threshold > 0 {
		detector.Threshold = cfg.Threshold
	}
	if cfg.Window > 0 {
		detector.Window = cfg.Window
	}
	if cfg.MinRevisions > 0 {
		detector.MinRevisions = cfg.MinRevisions
	}

	var flags []schema.OutlierFlag
	if cfg.Kind == "level" || cfg.Kind == "both" {
		level, err := detector.LevelOutliers(cfg.SeriesID, cfg.Range, cfg.Vintage)
		if err != nil {
			return nil, err
		}
		flags = append(flags, level...)
	}
	if cfg.Kind == "revision" || cfg.Kind == "both" {
		revision, err := detector.RevisionOutliers(cfg.SeriesID)
		switch {
		case err != nil && cfg.Kind == "both" && errors.Is(err, schema.ErrInsufficientData):
			contract.LogWarn("Skipping revision outliers", err)
		case err != nil:
			return nil, err
		default:
			flags = append(flags, revision...)
		}
	}

	trackAccess(mgr, cfg.SeriesID)
	return flags, nil
}

// GetTopResults returns the most-accessed series from the persisted counters.
func GetTopResults(cfg *contract.Config, mgr contract.SnapshotManager) ([]schema.SeriesRank, error) {
	counts, err := mgr.GetStore().LoadAccessCounts()
	if err != nil {
		return nil, fmt.Errorf("load access counts: %w", err)
	}
	tracker := NewPopularSeriesTracker()
	tracker.Restore(counts)
	return tracker.Top(cfg.ResultLimit)
}
