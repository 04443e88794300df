package core

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/vintlab/vint/schema"
)

// VintageStore holds one revision matrix per registered series. It owns the
// matrices exclusively; analyzers and detectors only read through its methods.
//
// Locking is series-grained: ingests to different series proceed without
// coordination, while reads and ingests on the same series exclude each other
// through the matrix's RWMutex.
type VintageStore struct {
	mu     sync.RWMutex
	series map[string]*matrix
}

// matrix is the sparse two-dimensional revision structure for one series:
// observation date -> revision history ordered by vintage date ascending.
type matrix struct {
	mu   sync.RWMutex
	meta schema.Series
	obs  map[time.Time][]schema.VintagePoint
	gen  uint64 // bumped per ingest; lets memoized views detect staleness
}

// NewVintageStore returns an empty store.
func NewVintageStore() *VintageStore {
	return &VintageStore{series: make(map[string]*matrix)}
}

// Register adds a series to the store. Registering the same series twice is a
// no-op; registering a different definition under an existing ID fails,
// because series metadata is immutable once created.
func (s *VintageStore) Register(meta schema.Series) error {
	if meta.ID == "" {
		return schema.InvalidArgument("series ID must not be empty")
	}
	if !meta.Frequency.Valid() {
		return schema.InvalidArgument("unsupported frequency %q for series %s", meta.Frequency, meta.ID)
	}
	meta.MinVintage = dayOrZero(meta.MinVintage)

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.series[meta.ID]; ok {
		if existing.meta != meta {
			return schema.InvalidArgument("series %s is already registered with different metadata", meta.ID)
		}
		return nil
	}
	s.series[meta.ID] = &matrix{meta: meta, obs: make(map[time.Time][]schema.VintagePoint)}
	return nil
}

// Series returns the metadata for a registered series.
func (s *VintageStore) Series(seriesID string) (schema.Series, error) {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return schema.Series{}, err
	}
	return m.meta, nil
}

// SeriesIDs returns all registered identifiers in sorted order.
func (s *VintageStore) SeriesIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.series))
	for id := range s.series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Ingest merges records into the series' matrix. A duplicate (observation,
// vintage) pair overwrites the prior value, so re-ingesting the same batch is
// idempotent. Out-of-order vintages are merged and kept sorted rather than
// rejected. All records are validated before any of them is merged, so a
// failed batch leaves the matrix untouched.
func (s *VintageStore) Ingest(seriesID string, records []schema.Revision) error {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return err
	}

	canonical := make([]schema.Revision, len(records))
	for i, rec := range records {
		obs := schema.Day(rec.ObservationDate)
		vin := schema.Day(rec.VintageDate)
		if obs.IsZero() || rec.ObservationDate.IsZero() {
			return schema.InvalidRevision("series %s: zero observation date", seriesID)
		}
		if rec.VintageDate.IsZero() {
			return schema.InvalidRevision("series %s: zero vintage date for %s", seriesID, obs.Format(schema.DateFormat))
		}
		if !m.meta.Frequency.OnGrid(obs) {
			return schema.InvalidRevision("series %s: observation %s is off the %s calendar",
				seriesID, obs.Format(schema.DateFormat), m.meta.Frequency)
		}
		if !m.meta.MinVintage.IsZero() && vin.Before(m.meta.MinVintage) {
			return schema.InvalidRevision("series %s: vintage %s precedes series minimum %s",
				seriesID, vin.Format(schema.DateFormat), m.meta.MinVintage.Format(schema.DateFormat))
		}
		if math.IsNaN(rec.Value) || math.IsInf(rec.Value, 0) {
			return schema.InvalidRevision("series %s: non-finite value at %s", seriesID, obs.Format(schema.DateFormat))
		}
		canonical[i] = schema.Revision{ObservationDate: obs, VintageDate: vin, Value: rec.Value}
	}

	if len(canonical) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range canonical {
		m.insertLocked(rec)
	}
	m.gen++
	return nil
}

// Generation returns a counter that changes whenever the series' matrix does.
func (s *VintageStore) Generation(seriesID string) (uint64, error) {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gen, nil
}

// insertLocked places one record into the history for its observation date,
// overwriting an existing vintage or splicing into sorted position.
func (m *matrix) insertLocked(rec schema.Revision) {
	history := m.obs[rec.ObservationDate]
	i := sort.Search(len(history), func(i int) bool {
		return !history[i].VintageDate.Before(rec.VintageDate)
	})
	point := schema.VintagePoint{VintageDate: rec.VintageDate, Value: rec.Value}
	if i < len(history) && history[i].VintageDate.Equal(rec.VintageDate) {
		history[i] = point
	} else {
		history = append(history, schema.VintagePoint{})
		copy(history[i+1:], history[i:])
		history[i] = point
	}
	m.obs[rec.ObservationDate] = history
}

// AsOf reconstructs the point-in-time view of the series at the given vintage
// date: for every observation date in range, the latest value published at or
// before that date, or a nil value if nothing was known yet. Results are
// ordered by observation date.
func (s *VintageStore) AsOf(seriesID string, rng schema.ObservationRange, vintage time.Time) ([]schema.Observation, error) {
	return s.view(seriesID, rng, schema.Day(vintage), false)
}

// Latest returns the most-current value per observation date, equivalent to
// AsOf at an unbounded vintage date.
func (s *VintageStore) Latest(seriesID string, rng schema.ObservationRange) ([]schema.Observation, error) {
	return s.view(seriesID, rng, time.Time{}, true)
}

func (s *VintageStore) view(seriesID string, rng schema.ObservationRange, vintage time.Time, latest bool) ([]schema.Observation, error) {
	if err := validateRange(rng); err != nil {
		return nil, err
	}
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]schema.Observation, 0, len(m.obs))
	for date, history := range m.obs {
		if !rng.Contains(date) {
			continue
		}
		obs := schema.Observation{Date: date}
		if latest {
			v := history[len(history)-1].Value
			obs.Value = &v
		} else if p, ok := lastAtOrBefore(history, vintage); ok {
			v := p.Value
			obs.Value = &v
		}
		out = append(out, obs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// lastAtOrBefore resolves last-known-value semantics: the latest point whose
// vintage date is at or before the as-of date.
func lastAtOrBefore(history []schema.VintagePoint, vintage time.Time) (schema.VintagePoint, bool) {
	i := sort.Search(len(history), func(i int) bool {
		return history[i].VintageDate.After(vintage)
	})
	if i == 0 {
		return schema.VintagePoint{}, false
	}
	return history[i-1], true
}

// VintageDates returns the sorted, deduplicated set of all vintage dates ever
// recorded for the series. Each entry corresponds to one release.
func (s *VintageStore) VintageDates(seriesID string) ([]time.Time, error) {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[time.Time]struct{})
	for _, history := range m.obs {
		for _, p := range history {
			seen[p.VintageDate] = struct{}{}
		}
	}
	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// History returns the ordered revision history for one observation date.
func (s *VintageStore) History(seriesID string, observationDate time.Time) ([]schema.VintagePoint, error) {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return nil, err
	}
	date := schema.Day(observationDate)

	m.mu.RLock()
	defer m.mu.RUnlock()
	history, ok := m.obs[date]
	if !ok {
		return nil, schema.InsufficientData("series %s has no vintages for %s", seriesID, date.Format(schema.DateFormat))
	}
	out := make([]schema.VintagePoint, len(history))
	copy(out, history)
	return out, nil
}

// FirstRelease returns the initially published value for an observation date.
func (s *VintageStore) FirstRelease(seriesID string, observationDate time.Time) (schema.VintagePoint, error) {
	return s.ValueAtVintage(seriesID, observationDate, 1)
}

// ValueAtVintage returns the n-th vintage (1-based) for an observation date.
func (s *VintageStore) ValueAtVintage(seriesID string, observationDate time.Time, n int) (schema.VintagePoint, error) {
	if n < 1 {
		return schema.VintagePoint{}, schema.InvalidArgument("vintage index must be >= 1, got %d", n)
	}
	history, err := s.History(seriesID, observationDate)
	if err != nil {
		return schema.VintagePoint{}, err
	}
	if n > len(history) {
		return schema.VintagePoint{}, schema.InsufficientData("series %s has %d vintages for %s, want %d",
			seriesID, len(history), schema.Day(observationDate).Format(schema.DateFormat), n)
	}
	return history[n-1], nil
}

// Records returns the full matrix as flat revision triples sorted by
// observation date then vintage date. Snapshot writers consume this.
func (s *VintageStore) Records(seriesID string) ([]schema.Revision, error) {
	m, err := s.matrixFor(seriesID)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []schema.Revision
	for date, history := range m.obs {
		for _, p := range history {
			out = append(out, schema.Revision{ObservationDate: date, VintageDate: p.VintageDate, Value: p.Value})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ObservationDate.Equal(out[j].ObservationDate) {
			return out[i].ObservationDate.Before(out[j].ObservationDate)
		}
		return out[i].VintageDate.Before(out[j].VintageDate)
	})
	return out, nil
}

// matrixFor resolves a series or reports it as unknown.
func (s *VintageStore) matrixFor(seriesID string) (*matrix, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.series[seriesID]
	if !ok {
		return nil, schema.UnknownSeries(seriesID)
	}
	return m, nil
}

func validateRange(rng schema.ObservationRange) error {
	if !rng.Start.IsZero() && !rng.End.IsZero() && rng.End.Before(rng.Start) {
		return schema.InvalidArgument("observation range end %s precedes start %s",
			rng.End.Format(schema.DateFormat), rng.Start.Format(schema.DateFormat))
	}
	return nil
}

func dayOrZero(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return schema.Day(t)
}
