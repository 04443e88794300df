package schema

import "time"

// Custom string types for type safety.
type (
	// Frequency represents the observation calendar of a series.
	Frequency string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for snapshots.
	DatabaseBackend string

	// FlagReason labels why a detector flagged a point.
	FlagReason string
)

// All frequencies supported.
const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Annual    Frequency = "annual"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All snapshot backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All flag reasons emitted by the outlier detector.
const (
	LevelFlag    FlagReason = "level"    // value far from its rolling window
	RevisionFlag FlagReason = "revision" // vintage delta far from series norm
)

// ParseFrequency converts a string into a Frequency, accepting the common
// single-letter codes used by data providers (D/W/M/Q/A).
func ParseFrequency(s string) (Frequency, bool) {
	switch s {
	case string(Daily), "D", "d":
		return Daily, true
	case string(Weekly), "W", "w":
		return Weekly, true
	case string(Monthly), "M", "m":
		return Monthly, true
	case string(Quarterly), "Q", "q":
		return Quarterly, true
	case string(Annual), "A", "a", "annually", "yearly":
		return Annual, true
	}
	return "", false
}

// OnGrid reports whether t lies on the frequency's canonical calendar grid.
// Monthly observations sit on the first of the month, quarterly on the first
// of January/April/July/October, annual on January 1. Daily and weekly series
// accept any day; weekly anchors vary per series so the grid is not checked.
func (f Frequency) OnGrid(t time.Time) bool {
	switch f {
	case Monthly:
		return t.Day() == 1
	case Quarterly:
		return t.Day() == 1 && (t.Month()-1)%3 == 0
	case Annual:
		return t.Day() == 1 && t.Month() == time.January
	default:
		return true
	}
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly, Annual:
		return true
	}
	return false
}
