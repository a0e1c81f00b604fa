package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	m := New()

	m.ObserveFetch("search", OutcomeOK, 12, 200*time.Millisecond)
	m.ObserveFetch("search", OutcomeNotFound, 0, 50*time.Millisecond)
	m.ObserveFetch("recent", OutcomeError, 0, time.Second)

	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("search", OutcomeOK)); got != 1 {
		t.Errorf("fetch ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetchTotal.WithLabelValues("recent", OutcomeError)); got != 1 {
		t.Errorf("fetch error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.fetchResults.WithLabelValues("search")); got != 12 {
		t.Errorf("results = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.lastSuccessTS); got == 0 {
		t.Error("last success timestamp should be set")
	}
}

func TestCacheCounters(t *testing.T) {
	m := New()
	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.SetCacheEntries(3)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheEntries); got != 3 {
		t.Errorf("entries = %v, want 3", got)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("recent", OutcomeOK, 1, time.Millisecond)
	m.CacheHit()
	m.CacheMiss()
	m.SetCacheEntries(1)
}

func TestHandler(t *testing.T) {
	m := New()
	m.CacheMiss()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "drugsafety_cache_lookups_total") {
		t.Error("/metrics missing cache lookups counter")
	}

	resp, err = http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", resp.StatusCode)
	}
}

func TestStatusOutcome(t *testing.T) {
	tests := []struct {
		status int
		err    error
		want   string
	}{
		{200, nil, OutcomeOK},
		{404, nil, OutcomeNotFound},
		{500, errors.New("boom"), OutcomeError},
		{0, errors.New("dial"), OutcomeError},
	}
	for _, tt := range tests {
		if got := StatusOutcome(tt.status, tt.err); got != tt.want {
			t.Errorf("StatusOutcome(%d, %v) = %q, want %q", tt.status, tt.err, got, tt.want)
		}
	}
}

func TestServerAddr(t *testing.T) {
	s := NewServer("127.0.0.1:0", New())
	if s.Addr() != "127.0.0.1:0" {
		t.Errorf("Addr() = %q", s.Addr())
	}
}
