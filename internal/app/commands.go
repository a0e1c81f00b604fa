package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/config"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/openfda"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// RequestTimeout bounds one load, retries included.
	RequestTimeout = 2 * time.Minute

	// FetchLogRows is how many fetch log rows the info tab shows.
	FetchLogRows = 8

	// SearchedDrugRows is how many searched drugs the info tab shows.
	SearchedDrugRows = 5
)

// ErrNoServices is returned by loads when no service manager is attached.
var ErrNoServices = errors.New("services not initialized")

// ErrorText renders a load error for display. Feed outages collapse to a
// single message; everything else keeps its detail.
func ErrorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, openfda.ErrTransport):
		return "Data unavailable"
	default:
		return err.Error()
	}
}

// defaultTickCmd schedules the next housekeeping TickMsg.
func defaultTickCmd() tea.Cmd {
	return tea.Tick(DefaultTickInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// loadTopDrugsCmd returns a command that ranks drugs in the recent feed.
func loadTopDrugsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return TopDrugsLoadedMsg{Err: ErrNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		drugs, err := mgr.TopDrugs(ctx)
		return TopDrugsLoadedMsg{Drugs: drugs, Err: err}
	}
}

// loadReportCmd returns a command that builds the search report for drug.
func loadReportCmd(mgr *services.Manager, drug string, window models.TrendWindow) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return ReportLoadedMsg{Drug: drug, Err: ErrNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		report, err := mgr.SearchDrug(ctx, drug, window)
		return ReportLoadedMsg{Drug: drug, Report: report, Err: err}
	}
}

// loadRolesCmd returns a command that loads the role distribution for drug.
func loadRolesCmd(mgr *services.Manager, drug string) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return RolesLoadedMsg{Drug: drug, Err: ErrNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		roles, err := mgr.RoleDistribution(ctx, drug)
		return RolesLoadedMsg{Drug: drug, Roles: roles, Err: err}
	}
}

// loadTrendCmd returns a command that loads the daily trend for drug.
func loadTrendCmd(mgr *services.Manager, drug string, window models.TrendWindow) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return TrendLoadedMsg{Drug: drug, Window: window, Err: ErrNoServices}
		}
		ctx, cancel := context.WithTimeout(context.Background(), RequestTimeout)
		defer cancel()

		trend, err := mgr.Trend(ctx, drug, window.Days())
		return TrendLoadedMsg{Drug: drug, Window: window, Trend: trend, Err: err}
	}
}

// loadStatsCmd returns a command that collects session statistics.
func loadStatsCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil {
			return StatsLoadedMsg{Err: ErrNoServices}
		}

		msg := StatsLoadedMsg{
			Entries: mgr.CacheEntries(),
			Cache:   mgr.CacheStats(),
		}

		var errs []error
		var err error
		if msg.Stats, err = mgr.FetchStats(); err != nil {
			errs = append(errs, err)
		}
		if msg.Log, err = mgr.FetchLog(FetchLogRows); err != nil {
			errs = append(errs, err)
		}
		if msg.Searched, err = mgr.SearchedDrugs(SearchedDrugRows); err != nil {
			errs = append(errs, err)
		}
		msg.Err = errors.Join(errs...)
		return msg
	}
}

// editWatchlistCmd returns a command that adds or removes drug.
func editWatchlistCmd(mgr *services.Manager, drug string, add bool) tea.Cmd {
	return func() tea.Msg {
		if mgr == nil || mgr.Watchlist() == nil {
			return WatchlistEditedMsg{Drug: drug, Added: add, Err: ErrNoServices}
		}
		var err error
		if add {
			err = mgr.Watchlist().Add(drug)
		} else {
			err = mgr.Watchlist().Remove(drug)
		}
		return WatchlistEditedMsg{Drug: drug, Added: add, Err: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	if mgr == nil {
		return nil
	}
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

func (c *Commands) mgr() *services.Manager {
	if c == nil {
		return nil
	}
	return c.manager
}

// LoadTopDrugs returns a command that loads the top-drugs ranking.
func (c *Commands) LoadTopDrugs() tea.Cmd {
	return loadTopDrugsCmd(c.mgr())
}

// LoadReport returns a command that builds the search report for drug.
func (c *Commands) LoadReport(drug string, window models.TrendWindow) tea.Cmd {
	return loadReportCmd(c.mgr(), drug, window)
}

// LoadRoles returns a command that loads the role distribution for drug.
func (c *Commands) LoadRoles(drug string) tea.Cmd {
	return loadRolesCmd(c.mgr(), drug)
}

// LoadTrend returns a command that loads the daily trend for drug.
func (c *Commands) LoadTrend(drug string, window models.TrendWindow) tea.Cmd {
	return loadTrendCmd(c.mgr(), drug, window)
}

// LoadStats returns a command that loads session statistics.
func (c *Commands) LoadStats() tea.Cmd {
	return loadStatsCmd(c.mgr())
}

// AddToWatchlist returns a command that adds drug to the watchlist.
func (c *Commands) AddToWatchlist(drug string) tea.Cmd {
	return editWatchlistCmd(c.mgr(), drug, true)
}

// RemoveFromWatchlist returns a command that removes drug from the watchlist.
func (c *Commands) RemoveFromWatchlist(drug string) tea.Cmd {
	return editWatchlistCmd(c.mgr(), drug, false)
}

// CycleWatchlist returns the watched drug after (or before) current.
// ok is false when there is no watchlist or it is empty.
func (c *Commands) CycleWatchlist(current string, forward bool) (drug string, ok bool) {
	mgr := c.mgr()
	if mgr == nil || mgr.Watchlist() == nil {
		return "", false
	}
	if forward {
		return mgr.Watchlist().Next(current)
	}
	return mgr.Watchlist().Prev(current)
}

// Config returns the loaded configuration, or nil without services.
func (c *Commands) Config() *config.Config {
	mgr := c.mgr()
	if mgr == nil {
		return nil
	}
	return mgr.Config()
}

// DefaultDrug returns the configured drug shown before any search.
func (c *Commands) DefaultDrug() string {
	mgr := c.mgr()
	if mgr == nil || mgr.Config() == nil {
		return ""
	}
	return mgr.Config().DefaultDrug
}

// TrendWindow returns the configured trend window.
func (c *Commands) TrendWindow() models.TrendWindow {
	mgr := c.mgr()
	if mgr == nil || mgr.Config() == nil {
		return models.DefaultTrendWindow
	}
	return models.TrendWindow(mgr.Config().TrendDays)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}
