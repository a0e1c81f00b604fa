// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/config"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/db"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/logger"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/metrics"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/analytics"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/cache"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/openfda"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/watchlist"
)

type (
	// FetchCompletedEvent is emitted after every request to the feed.
	FetchCompletedEvent struct {
		Call models.FetchCall
	}

	// WatchlistChangedEvent is emitted when the watchlist is loaded or edited.
	WatchlistChangedEvent struct {
		Drugs []string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (FetchCompletedEvent) isServiceEvent()   {}
func (WatchlistChangedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()            {}

// Notifier shows a desktop notification.
type Notifier func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Option customizes a Manager.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for feed requests.
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notify = n }
}

// WithClock sets the time source used for trend windows.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithoutWatchlist skips opening the watchlist file.
func WithoutWatchlist() Option {
	return func(m *Manager) { m.skipWatchlist = true }
}

// Manager orchestrates services and event routing.
type Manager struct {
	cfg           *config.Config
	httpClient    *http.Client
	client        *openfda.Client
	cache         *cache.Cache
	metrics       *metrics.Metrics
	metricsServer *metrics.Server
	watchlist     *watchlist.Service
	database      *db.DB
	notify        Notifier
	now           func() time.Time
	stopChan      chan struct{}
	subscribers   []chan ServiceEvent
	mu            sync.RWMutex
	feedMu        sync.Mutex
	closeOnce     sync.Once
	feedDown      bool
	skipWatchlist bool
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	m := &Manager{
		cfg:      cfg,
		notify:   desktopNotify,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m.metrics = metrics.New()
	m.cache = cache.New(m.metrics)
	m.client = openfda.NewClient(openfda.Options{
		HTTPClient: m.httpClient,
		Observer:   m,
		BaseURL:    cfg.FDABaseURL,
		APIKey:     cfg.FDAAPIKey,
		Timeout:    cfg.HTTPTimeout,
		Retries:    cfg.FetchRetries,
	})

	if !m.skipWatchlist && cfg.WatchlistPath != "" {
		m.watchlist, err = watchlist.New(cfg.WatchlistPath, cfg.DefaultDrug)
		if err != nil {
			// The dashboard works without a watchlist.
			logger.Warn("watchlist unavailable", "path", cfg.WatchlistPath, "error", err)
			m.watchlist = nil
		}
	}

	if cfg.MetricsAddr != "" {
		m.metricsServer = metrics.NewServer(cfg.MetricsAddr, m.metrics)
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := m.metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
				m.broadcast(ErrorEvent{Service: "metrics", Error: err})
			}
		}()
	}

	if m.watchlist != nil {
		go m.routeEvents()
	}

	return m, nil
}

// routeEvents routes watchlist events to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case event := <-m.watchlist.Events():
			m.handleWatchlistEvent(event)
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleWatchlistEvent(event watchlist.Event) {
	switch event.Type {
	case watchlist.EventLoaded, watchlist.EventChanged:
		m.broadcast(WatchlistChangedEvent{Drugs: m.watchlist.Drugs()})
	case watchlist.EventError:
		m.broadcast(ErrorEvent{Service: "watchlist", Error: event.Error})
	}
}

// ObserveFetch records a completed feed request. It is called by the feed
// client after every fetch.
func (m *Manager) ObserveFetch(call models.FetchCall) {
	outcome := metrics.StatusOutcome(call.StatusCode, fetchErr(call))
	m.metrics.ObserveFetch(call.Mode, outcome, call.Results, time.Duration(call.DurationMs)*time.Millisecond)

	if err := m.database.InsertFetchCall(&call); err != nil {
		logger.Error("failed to log fetch call", "error", err)
	}

	logger.Info("fetch completed",
		"request_id", call.RequestID,
		"mode", call.Mode,
		"drug", call.Drug,
		"status", call.StatusCode,
		"results", call.Results,
		"duration_ms", call.DurationMs,
		"error", call.Error,
	)

	m.checkNotifications(call)
	m.broadcast(FetchCompletedEvent{Call: call})
}

func fetchErr(call models.FetchCall) error {
	if call.Failed() {
		return errors.New(call.Error)
	}
	return nil
}

// checkNotifications raises a desktop alert when the feed goes from
// reachable to failing, and again when it recovers.
func (m *Manager) checkNotifications(call models.FetchCall) {
	m.feedMu.Lock()
	wasDown := m.feedDown
	m.feedDown = call.Failed()
	m.feedMu.Unlock()

	switch {
	case call.Failed() && !wasDown:
		if err := m.notify("Drug safety feed unavailable", call.Error); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	case !call.Failed() && wasDown:
		if err := m.notify("Drug safety feed recovered", "Requests to the event feed are succeeding again."); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
}

// Facts returns the normalized facts for q, fetching on first use only.
func (m *Manager) Facts(ctx context.Context, q openfda.Query) (models.FactSet, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return m.cache.GetOrCompute(ctx, q.Key(), func(ctx context.Context) (models.FactSet, error) {
		events, err := m.client.Fetch(ctx, q)
		if err != nil {
			return nil, err
		}
		return openfda.Normalize(events, q.Drug), nil
	})
}

// TopDrugs ranks drugs across the most recent events.
func (m *Manager) TopDrugs(ctx context.Context) ([]models.DrugCount, error) {
	facts, err := m.Facts(ctx, openfda.Recent(m.cfg.TopDrugsLimit))
	if err != nil {
		return nil, err
	}
	return analytics.TopDrugs(facts, m.cfg.TopN), nil
}

// SearchDrug builds the full report for one drug.
func (m *Manager) SearchDrug(ctx context.Context, drug string, window models.TrendWindow) (*models.DrugReport, error) {
	q := openfda.Search(drug, m.cfg.SearchLimit)
	facts, err := m.Facts(ctx, q)
	if err != nil {
		return nil, err
	}

	if window <= 0 {
		window = models.TrendWindow(m.cfg.TrendDays)
	}

	return &models.DrugReport{
		Drug:    q.Drug,
		Summary: analytics.Summarize(facts),
		Roles:   analytics.RoleDistribution(facts),
		Recent:  analytics.RecentReports(facts, analytics.DefaultRecentReports),
		Trend:   analytics.DailyTrend(facts, q.Drug, window.Days(), m.now()),
		Window:  window,
	}, nil
}

// RoleDistribution counts roles for one drug.
func (m *Manager) RoleDistribution(ctx context.Context, drug string) ([]models.RoleCount, error) {
	facts, err := m.Facts(ctx, openfda.Search(drug, m.cfg.SearchLimit))
	if err != nil {
		return nil, err
	}
	return analytics.RoleDistribution(facts), nil
}

// Trend returns daily counts for one drug over the trailing days.
func (m *Manager) Trend(ctx context.Context, drug string, days int) ([]models.DayCount, error) {
	q := openfda.Search(drug, m.cfg.SearchLimit)
	facts, err := m.Facts(ctx, q)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = m.cfg.TrendDays
	}
	return analytics.DailyTrend(facts, q.Drug, days, m.now()), nil
}

// CacheEntries lists cached queries, oldest first.
func (m *Manager) CacheEntries() []cache.Entry {
	return m.cache.Entries()
}

// CacheStats returns cache counters.
func (m *Manager) CacheStats() cache.Stats {
	return m.cache.Stats()
}

// FetchLog returns the most recent fetch log rows.
func (m *Manager) FetchLog(limit int) ([]models.FetchCall, error) {
	return m.database.GetRecentFetchCalls(limit)
}

// FetchStats returns aggregate fetch log statistics.
func (m *Manager) FetchStats() (*models.FetchStats, error) {
	return m.database.GetFetchStats()
}

// SearchedDrugs returns the drugs searched most this session.
func (m *Manager) SearchedDrugs(limit int) ([]models.DrugCount, error) {
	return m.database.GetSearchedDrugs(limit)
}

// WatchedDrugs returns the watchlist, or nil when it is unavailable.
func (m *Manager) WatchedDrugs() []string {
	if m.watchlist == nil {
		return nil
	}
	return m.watchlist.Drugs()
}

// Watchlist returns the watchlist service, which may be nil.
func (m *Manager) Watchlist() *watchlist.Service {
	return m.watchlist
}

// Config returns the active configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Metrics returns the metrics collectors.
func (m *Manager) Metrics() *metrics.Metrics {
	return m.metrics
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel. It yields
// nil once the channel is closed.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return ev
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	var errs []error

	m.closeOnce.Do(func() {
		close(m.stopChan)

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()

		if m.metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := m.metricsServer.Shutdown(ctx); err != nil {
				errs = append(errs, err)
			}
			cancel()
		}

		if m.watchlist != nil {
			if err := m.watchlist.Close(); err != nil {
				errs = append(errs, err)
			}
		}

		if m.database != nil {
			if err := m.database.Compact(db.FetchLogRetention); err != nil {
				logger.Warn("failed to compact fetch log", "error", err)
			}
			if err := m.database.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})

	return errors.Join(errs...)
}
