// Package schema has configs, models and shared types for all parts of vint.
package schema

import "time"

// DateFormat is the canonical representation for observation and vintage dates.
const DateFormat = "2006-01-02"

// Series describes one economic series. A series is immutable once registered;
// the store keys its revision matrix by ID.
type Series struct {
	ID         string    `json:"id"`          // Identifier code, e.g. "UNRATE"
	Title      string    `json:"title"`       // Human-readable description
	Frequency  Frequency `json:"frequency"`   // Observation calendar grid
	Units      string    `json:"units"`       // Unit/transformation metadata, e.g. "Percent, SA"
	MinVintage time.Time `json:"min_vintage"` // Earliest publication date accepted (zero = unbounded)
}

// Revision is one (observation date, vintage date, value) triple: the value
// for ObservationDate as published on VintageDate.
type Revision struct {
	ObservationDate time.Time `json:"observation_date"`
	VintageDate     time.Time `json:"vintage_date"`
	Value           float64   `json:"value"`
}

// VintagePoint is one entry of an observation's revision history.
type VintagePoint struct {
	VintageDate time.Time `json:"vintage_date"`
	Value       float64   `json:"value"`
}

// Observation is one point of an as-of or latest view. Value is nil when no
// vintage at or before the requested date covers the observation; absence is
// explicit, never a zero.
type Observation struct {
	Date  time.Time `json:"date"`
	Value *float64  `json:"value"`
}

// ObservationRange bounds a query by observation date. Zero Start or End
// means unbounded on that side.
type ObservationRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range.
func (r ObservationRange) Contains(t time.Time) bool {
	if !r.Start.IsZero() && t.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && t.After(r.End) {
		return false
	}
	return true
}

// Day strips the clock and normalizes to UTC; all dates in the store are
// day-precision.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
