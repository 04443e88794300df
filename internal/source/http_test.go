package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vintlab/vint/schema"
)

// newProviderServer serves a minimal ALFRED-style API for one series.
func newProviderServer(t *testing.T) (*httptest.Server, *http.Request) {
	t.Helper()
	var lastReq http.Request
	mux := http.NewServeMux()
	mux.HandleFunc("/series", func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		if r.URL.Query().Get("series_id") != "UNRATE" {
			fmt.Fprint(w, `{"seriess":[]}`)
			return
		}
		fmt.Fprint(w, `{"seriess":[{"id":"UNRATE","title":"Unemployment Rate","frequency_short":"M","units":"Percent"}]}`)
	})
	mux.HandleFunc("/series/observations", func(w http.ResponseWriter, r *http.Request) {
		lastReq = *r
		fmt.Fprint(w, `{"observations":[
			{"realtime_start":"2023-02-03","date":"2023-01-01","value":"3.4"},
			{"realtime_start":"2023-03-10","date":"2023-01-01","value":"3.5"},
			{"realtime_start":"2023-03-10","date":"2023-02-01","value":"."},
			{"realtime_start":"2023-04-07","date":"2023-03-01","value":"3.6"}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastReq
}

func TestHTTPAdapterDescribe(t *testing.T) {
	srv, lastReq := newProviderServer(t)
	a := NewHTTPAdapter(srv.URL, "test-key")

	t.Run("maps provider metadata", func(t *testing.T) {
		meta, err := a.Describe(context.Background(), "UNRATE")
		require.NoError(t, err)
		assert.Equal(t, "UNRATE", meta.ID)
		assert.Equal(t, "Unemployment Rate", meta.Title)
		assert.Equal(t, schema.Monthly, meta.Frequency)
		assert.Equal(t, "Percent", meta.Units)
		assert.Equal(t, "test-key", lastReq.URL.Query().Get("api_key"))
		assert.Equal(t, "json", lastReq.URL.Query().Get("file_type"))
	})

	t.Run("unknown series", func(t *testing.T) {
		_, err := a.Describe(context.Background(), "NOPE")
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})
}

func TestHTTPAdapterFetch(t *testing.T) {
	srv, lastReq := newProviderServer(t)
	a := NewHTTPAdapter(srv.URL+"/", "") // trailing slash is trimmed

	t.Run("parses vintages and skips missing values", func(t *testing.T) {
		records, err := a.Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, day(2023, 1, 1), records[0].ObservationDate)
		assert.Equal(t, day(2023, 2, 3), records[0].VintageDate)
		assert.Equal(t, 3.4, records[0].Value)
		assert.Equal(t, day(2023, 3, 10), records[1].VintageDate)
		assert.Equal(t, 3.6, records[2].Value)
		assert.Empty(t, lastReq.URL.Query().Get("api_key"))
	})

	t.Run("range becomes query parameters", func(t *testing.T) {
		rng := schema.ObservationRange{Start: day(2023, 1, 1), End: day(2023, 6, 30)}
		_, err := a.Fetch(context.Background(), "UNRATE", rng)
		require.NoError(t, err)
		assert.Equal(t, "2023-01-01", lastReq.URL.Query().Get("observation_start"))
		assert.Equal(t, "2023-06-30", lastReq.URL.Query().Get("observation_end"))
	})

	t.Run("server error", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer bad.Close()
		_, err := NewHTTPAdapter(bad.URL, "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("malformed payload", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, "not json")
		}))
		defer bad.Close()
		_, err := NewHTTPAdapter(bad.URL, "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("bad vintage date in payload", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `{"observations":[{"realtime_start":"soon","date":"2023-01-01","value":"3.4"}]}`)
		}))
		defer bad.Close()
		_, err := NewHTTPAdapter(bad.URL, "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})

	t.Run("unreachable host", func(t *testing.T) {
		dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		dead.Close()
		_, err := NewHTTPAdapter(dead.URL, "").Fetch(context.Background(), "UNRATE", schema.ObservationRange{})
		assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
	})
}
