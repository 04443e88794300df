package schema

import "time"

// RevisionDelta is one step in an observation's revision history. Delta is
// nil on the first entry, which has no prior vintage to differ from.
type RevisionDelta struct {
	VintageDate time.Time `json:"vintage_date"`
	Value       float64   `json:"value"`
	Delta       *float64  `json:"delta"`
}

// VintageDiff is the signed difference for one observation date between two
// as-of views. A nil value on either side means that side had no data yet;
// Diff is nil unless both sides are present.
type VintageDiff struct {
	Date   time.Time `json:"date"`
	ValueA *float64  `json:"value_a"`
	ValueB *float64  `json:"value_b"`
	Diff   *float64  `json:"diff"`
}

// LagStats summarizes the distribution of (first vintage date − observation
// date) across a series, in whole days. Percentiles come from a DDSketch and
// are approximate within its configured relative accuracy.
type LagStats struct {
	SeriesID string  `json:"series_id"`
	Count    int64   `json:"count"`
	MeanDays float64 `json:"mean_days"`
	P50Days  float64 `json:"p50_days"`
	P90Days  float64 `json:"p90_days"`
	MinDays  float64 `json:"min_days"`
	MaxDays  float64 `json:"max_days"`
}

// OutlierFlag marks one anomalous observation or revision. Date is the
// observation date for level outliers and the vintage date for revision
// outliers. Score is the deviation in standard deviations.
type OutlierFlag struct {
	Date   time.Time  `json:"date"`
	Value  float64    `json:"value"`
	Score  float64    `json:"score"`
	Reason FlagReason `json:"reason"`
}

// SeriesRank is one row of the popularity ranking.
type SeriesRank struct {
	SeriesID string `json:"series_id"`
	Hits     int    `json:"hits"`
}

// SnapshotStatus reports on the snapshot store backing a session.
type SnapshotStatus struct {
	Backend       DatabaseBackend `json:"backend"`
	Location      string          `json:"location"`
	SeriesCount   int             `json:"series_count"`
	RevisionCount int64           `json:"revision_count"`
	SizeBytes     int64           `json:"size_bytes"` // -1 when not applicable
}
