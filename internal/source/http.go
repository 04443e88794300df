package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// defaultHTTPTimeout bounds one fetch; the core imposes no timeout of its own.
const defaultHTTPTimeout = 30 * time.Second

// HTTPAdapter fetches vintage data from an ALFRED-style JSON API. Each
// observation entry carries a realtime_start field, which is the vintage date
// of the value it holds.
type HTTPAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

var _ contract.SourceAdapter = &HTTPAdapter{} // Compile-time check

// NewHTTPAdapter returns an adapter against the given API base URL.
func NewHTTPAdapter(baseURL, apiKey string) *HTTPAdapter {
	return &HTTPAdapter{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
	}
}

// seriesResponse mirrors the provider's /series payload.
type seriesResponse struct {
	Seriess []struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		FrequencyShort string `json:"frequency_short"`
		Units          string `json:"units"`
	} `json:"seriess"`
}

// observationsResponse mirrors the provider's /series/observations payload
// with output_type=4 (initial release plus current), where every row is one
// published value tagged with its realtime_start vintage.
type observationsResponse struct {
	Observations []struct {
		RealtimeStart string `json:"realtime_start"`
		Date          string `json:"date"`
		Value         string `json:"value"`
	} `json:"observations"`
}

// Describe fetches series metadata from the /series endpoint.
func (a *HTTPAdapter) Describe(ctx context.Context, seriesID string) (schema.Series, error) {
	var payload seriesResponse
	if err := a.get(ctx, "/series", seriesID, nil, &payload); err != nil {
		return schema.Series{}, err
	}
	if len(payload.Seriess) == 0 {
		return schema.Series{}, schema.SourceUnavailable(seriesID, fmt.Errorf("no series metadata returned"))
	}
	meta := payload.Seriess[0]
	freq, ok := schema.ParseFrequency(meta.FrequencyShort)
	if !ok {
		return schema.Series{}, schema.SourceUnavailable(seriesID, fmt.Errorf("unsupported frequency %q", meta.FrequencyShort))
	}
	return schema.Series{ID: meta.ID, Title: meta.Title, Frequency: freq, Units: meta.Units}, nil
}

// Fetch pulls every vintage of every in-range observation.
func (a *HTTPAdapter) Fetch(ctx context.Context, seriesID string, rng schema.ObservationRange) ([]schema.Revision, error) {
	params := url.Values{}
	if !rng.Start.IsZero() {
		params.Set("observation_start", rng.Start.Format(schema.DateFormat))
	}
	if !rng.End.IsZero() {
		params.Set("observation_end", rng.End.Format(schema.DateFormat))
	}

	var payload observationsResponse
	if err := a.get(ctx, "/series/observations", seriesID, params, &payload); err != nil {
		return nil, err
	}

	records := make([]schema.Revision, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		if obs.Value == missingValue {
			continue
		}
		date, err := time.Parse(schema.DateFormat, obs.Date)
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("bad observation date %q: %w", obs.Date, err))
		}
		vintage, err := time.Parse(schema.DateFormat, obs.RealtimeStart)
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("bad vintage date %q: %w", obs.RealtimeStart, err))
		}
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			return nil, schema.SourceUnavailable(seriesID, fmt.Errorf("bad value %q: %w", obs.Value, err))
		}
		records = append(records, schema.Revision{ObservationDate: date, VintageDate: vintage, Value: value})
	}
	return records, nil
}

// get performs one JSON GET against the provider.
func (a *HTTPAdapter) get(ctx context.Context, path, seriesID string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("series_id", seriesID)
	params.Set("file_type", "json")
	if a.apiKey != "" {
		params.Set("api_key", a.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return schema.SourceUnavailable(seriesID, err)
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return schema.SourceUnavailable(seriesID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return schema.SourceUnavailable(seriesID, fmt.Errorf("%s returned %s", path, resp.Status))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return schema.SourceUnavailable(seriesID, fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
