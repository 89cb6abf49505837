package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/terrasaver/terrasaver/internal/feed"
	"github.com/terrasaver/terrasaver/internal/stats"
	"github.com/terrasaver/terrasaver/internal/store"
)

type stubNews struct {
	calls  int
	result feed.Result
}

func (s *stubNews) FetchNews(ctx context.Context, countryCode string) feed.Result {
	s.calls++
	return s.result
}

type stubStats struct {
	calls    int
	snapshot stats.CountryStats
	err      error
}

func (s *stubStats) CountryStats(ctx context.Context, iso3, iso2 string) (stats.CountryStats, error) {
	s.calls++
	return s.snapshot, s.err
}

func okNews() feed.Result {
	return feed.Result{
		Status:       feed.StatusOK,
		TotalResults: 1,
		Articles:     []feed.Article{{Title: "hello", URL: "http://u"}},
	}
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestHealthz(t *testing.T) {
	srv := NewServer(&stubNews{result: okNews()}, &stubStats{}, nil, time.Minute, time.Minute)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected request ID header")
	}
}

func TestNewsEndpoint(t *testing.T) {
	news := &stubNews{result: okNews()}
	srv := NewServer(news, &stubStats{}, nil, time.Minute, time.Minute)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/news/us")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result feed.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Status != feed.StatusOK || len(result.Articles) != 1 {
		t.Fatalf("result = %+v", result)
	}
}

func TestNewsEndpointRejectsBadCountry(t *testing.T) {
	srv := NewServer(&stubNews{result: okNews()}, &stubStats{}, nil, time.Minute, time.Minute)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	for _, path := range []string{"/api/news/usa", "/api/news/u1"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestNewsEndpointServesFromCache(t *testing.T) {
	news := &stubNews{result: okNews()}
	srv := NewServer(news, &stubStats{}, testStore(t), time.Hour, time.Hour)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/api/news/us")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if news.calls != 1 {
		t.Errorf("fetcher called %d times, want 1 (second hit from cache)", news.calls)
	}
}

func TestNewsEndpointErrorResultNotCached(t *testing.T) {
	news := &stubNews{result: feed.Result{Status: feed.StatusError, Message: "all feeds down", Articles: []feed.Article{}}}
	srv := NewServer(news, &stubStats{}, testStore(t), time.Hour, time.Hour)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/api/news/us")
		if err != nil {
			t.Fatal(err)
		}
		// Error results still answer 200 so the UI can render an empty state.
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		resp.Body.Close()
	}
	if news.calls != 2 {
		t.Errorf("fetcher called %d times, want 2 (error results are not cached)", news.calls)
	}
}

func TestStatsEndpoint(t *testing.T) {
	population := int64(68000000)
	st := &stubStats{snapshot: stats.CountryStats{Name: "France", Population: &population}}
	srv := NewServer(&stubNews{}, st, testStore(t), time.Hour, time.Hour)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	for i := 0; i < 2; i++ {
		resp, err := http.Get(ts.URL + "/api/stats/FRA/fr")
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var snapshot stats.CountryStats
		if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if snapshot.Name != "France" {
			t.Fatalf("snapshot = %+v", snapshot)
		}
	}
	if st.calls != 1 {
		t.Errorf("stats fetcher called %d times, want 1", st.calls)
	}
}

func TestStatsEndpointUpstreamFailure(t *testing.T) {
	st := &stubStats{err: errors.New("primary source down")}
	srv := NewServer(&stubNews{}, st, nil, time.Minute, time.Minute)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats/XYZ/xy")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestStatsEndpointRejectsBadCodes(t *testing.T) {
	srv := NewServer(&stubNews{}, &stubStats{}, nil, time.Minute, time.Minute)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats/FR/fra")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}
