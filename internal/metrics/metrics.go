// Package metrics exposes prometheus instrumentation for the fetch pipeline.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "drugsafety"

// Metrics holds the collectors for one process. Each instance owns its own
// registry so several can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	fetchResults  *prometheus.CounterVec
	lastSuccessTS prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	cacheEntries  prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_requests_total",
		Help:      "Feed requests by query mode and outcome",
	}, []string{"mode", "outcome"})
	m.fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fetch_duration_seconds",
		Help:      "Time spent fetching from the feed, retries included",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"mode"})
	m.fetchResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_results_total",
		Help:      "Raw event records received from the feed",
	}, []string{"mode"})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful fetch",
	})
	m.cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Query cache lookups by result",
	}, []string{"result"})
	m.cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_entries",
		Help:      "Number of fact sets held by the query cache",
	})

	m.registry.MustRegister(
		m.fetchTotal, m.fetchDuration, m.fetchResults, m.lastSuccessTS,
		m.cacheLookups, m.cacheEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Outcome labels for fetch requests.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// ObserveFetch records one completed fetch.
func (m *Metrics) ObserveFetch(mode, outcome string, results int, d time.Duration) {
	if m == nil {
		return
	}
	m.fetchTotal.WithLabelValues(mode, outcome).Inc()
	m.fetchDuration.WithLabelValues(mode).Observe(d.Seconds())
	if results > 0 {
		m.fetchResults.WithLabelValues(mode).Add(float64(results))
	}
	if outcome != OutcomeError {
		m.lastSuccessTS.SetToCurrentTime()
	}
}

// CacheHit counts a lookup answered from the cache.
func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Inc()
}

// CacheMiss counts a lookup that had to compute.
func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

// SetCacheEntries sets the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(n))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving /metrics and /healthz.
func (m *Metrics) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Server serves the metrics handler on a TCP address.
type Server struct {
	server *http.Server
}

// NewServer creates a metrics server bound to addr.
func NewServer(addr string, m *Metrics) *Server {
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           m.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Serve blocks until the server stops. http.ErrServerClosed is returned
// after Shutdown.
func (s *Server) Serve() error { return s.server.ListenAndServe() }

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error { return s.server.Shutdown(ctx) }

// StatusOutcome maps an HTTP status to an outcome label.
func StatusOutcome(status int, err error) string {
	switch {
	case err != nil:
		return OutcomeError
	case status == http.StatusNotFound:
		return OutcomeNotFound
	default:
		return OutcomeOK
	}
}
