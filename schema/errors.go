package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors for the whole project. Every failure the core surfaces
// wraps exactly one of these, so callers can branch with errors.Is.
var (
	// ErrUnknownSeries means a series was queried before it was registered.
	ErrUnknownSeries = errors.New("unknown series")

	// ErrInvalidRevision means an ingested record is malformed: vintage before
	// the series minimum, or observation date off the frequency grid.
	ErrInvalidRevision = errors.New("invalid revision")

	// ErrSourceUnavailable means a source adapter failed to fetch records.
	// The core propagates it unchanged; retry policy belongs to the adapter.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInsufficientData means an analyzer or detector cannot produce a
	// statistically meaningful result from the records at hand.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidArgument means the caller passed a bad parameter, e.g. a
	// non-positive result count or an inverted range.
	ErrInvalidArgument = errors.New("invalid argument")
)

// UnknownSeries wraps ErrUnknownSeries with the offending identifier.
func UnknownSeries(seriesID string) error {
	return fmt.Errorf("%w: %s", ErrUnknownSeries, seriesID)
}

// InvalidRevision wraps ErrInvalidRevision with a reason.
func InvalidRevision(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRevision, fmt.Sprintf(format, args...))
}

// SourceUnavailable wraps a transport or parse failure from an adapter.
func SourceUnavailable(seriesID string, err error) error {
	return fmt.Errorf("%w: series %s: %v", ErrSourceUnavailable, seriesID, err)
}

// InsufficientData wraps ErrInsufficientData with a reason.
func InsufficientData(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientData, fmt.Sprintf(format, args...))
}

// InvalidArgument wraps ErrInvalidArgument with a reason.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
