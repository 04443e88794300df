package core

import (
	"math"
	"sort"
	"time"

	"github.com/vintlab/vint/schema"

	"github.com/vintlab/vint/internal/contract"
)

// OutlierDetector flags anomalous observations within an as-of view (level
// outliers) and anomalous vintage transitions (revision outliers). Output is
// deterministic for a given matrix and configuration.
type OutlierDetector struct {
	store *VintageStore

	// Threshold is the flagging cutoff in standard deviations.
	Threshold float64

	// Window is the trailing window length for level statistics.
	Window int

	// MinWindow is the smallest trailing window worth scoring; shorter
	// windows are skipped, not flagged.
	MinWindow int

	// MinRevisions is the smallest number of vintage transitions needed for
	// a revision-outlier verdict.
	MinRevisions int
}

// NewOutlierDetector returns a detector with the default parameters reading
// from the given store.
func NewOutlierDetector(store *VintageStore) *OutlierDetector {
	return &OutlierDetector{
		store:        store,
		Threshold:    contract.DefaultThreshold,
		Window:       contract.DefaultWindow,
		MinWindow:    contract.DefaultMinWindow,
		MinRevisions: contract.DefaultMinRevisions,
	}
}

// LevelOutliers scans the as-of view at the given vintage date (zero vintage
// means the latest view) and flags observation dates whose value deviates
// from the trailing window's mean by more than Threshold standard deviations.
// Observation dates without values and windows shorter than MinWindow are
// skipped.
func (d *OutlierDetector) LevelOutliers(seriesID string, rng schema.ObservationRange, vintage time.Time) ([]schema.OutlierFlag, error) {
	if d.Threshold <= 0 {
		return nil, schema.InvalidArgument("threshold must be positive, got %g", d.Threshold)
	}

	var view []schema.Observation
	var err error
	if vintage.IsZero() {
		view, err = d.store.Latest(seriesID, rng)
	} else {
		view, err = d.store.AsOf(seriesID, rng, vintage)
	}
	if err != nil {
		return nil, err
	}

	// Collapse to the dates that actually carry values; gaps would otherwise
	// poison window statistics.
	dates := make([]time.Time, 0, len(view))
	values := make([]float64, 0, len(view))
	for _, obs := range view {
		if obs.Value != nil {
			dates = append(dates, obs.Date)
			values = append(values, *obs.Value)
		}
	}

	var flags []schema.OutlierFlag
	for i := range values {
		lo := i - d.Window
		if lo < 0 {
			lo = 0
		}
		window := values[lo:i]
		if len(window) < d.MinWindow {
			continue
		}
		mean, sd := meanStddev(window)
		score := math.Abs(values[i]-mean) / stddevFloor(sd, mean)
		if score > d.Threshold {
			flags = append(flags, schema.OutlierFlag{
				Date:   dates[i],
				Value:  values[i],
				Score:  score,
				Reason: schema.LevelFlag,
			})
		}
	}
	return flags, nil
}

// RevisionOutliers flags vintage transitions whose absolute delta exceeds
// Threshold times the historical standard deviation of deltas for the series.
// Fewer than MinRevisions transitions is an InsufficientData error, not an
// empty verdict. Flag dates are vintage dates and flag values are deltas.
func (d *OutlierDetector) RevisionOutliers(seriesID string) ([]schema.OutlierFlag, error) {
	if d.Threshold <= 0 {
		return nil, schema.InvalidArgument("threshold must be positive, got %g", d.Threshold)
	}
	records, err := d.store.Records(seriesID)
	if err != nil {
		return nil, err
	}

	// Records are sorted by observation date then vintage date, so each
	// consecutive pair within an observation date is one transition.
	type transition struct {
		vintage time.Time
		delta   float64
	}
	var transitions []transition
	for i := 1; i < len(records); i++ {
		if !records[i].ObservationDate.Equal(records[i-1].ObservationDate) {
			continue
		}
		transitions = append(transitions, transition{
			vintage: records[i].VintageDate,
			delta:   records[i].Value - records[i-1].Value,
		})
	}
	if len(transitions) < d.MinRevisions {
		return nil, schema.InsufficientData("series %s has %d revisions, need %d for a verdict",
			seriesID, len(transitions), d.MinRevisions)
	}

	deltas := make([]float64, len(transitions))
	for i, t := range transitions {
		deltas[i] = t.delta
	}
	_, sd := meanStddev(deltas)
	if sd == 0 {
		// Every transition matches the series norm exactly; nothing sticks out.
		return nil, nil
	}

	var flags []schema.OutlierFlag
	for _, t := range transitions {
		score := math.Abs(t.delta) / sd
		if score > d.Threshold {
			flags = append(flags, schema.OutlierFlag{
				Date:   t.vintage,
				Value:  t.delta,
				Score:  score,
				Reason: schema.RevisionFlag,
			})
		}
	}
	sort.Slice(flags, func(i, j int) bool { return flags[i].Date.Before(flags[j].Date) })
	return flags, nil
}

// meanStddev returns the mean and sample standard deviation.
func meanStddev(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if len(values) < 2 {
		return mean, 0
	}
	var ss float64
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(ss / float64(len(values)-1))
}

// stddevFloor keeps scores finite over flat windows: a constant window has
// zero spread, but a departure from it must still produce a flaggable score.
func stddevFloor(sd, mean float64) float64 {
	floor := 1e-9 * (1 + math.Abs(mean))
	if sd < floor {
		return floor
	}
	return sd
}
