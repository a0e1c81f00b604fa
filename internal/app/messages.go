package app

import (
	"time"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/cache"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// TopDrugsLoadedMsg carries the top-drugs ranking.
type TopDrugsLoadedMsg struct {
	Err   error
	Drugs []models.DrugCount
}

// ReportLoadedMsg carries the report for one drug search.
type ReportLoadedMsg struct {
	Err    error
	Report *models.DrugReport
	Drug   string
}

// RolesLoadedMsg carries the role distribution for one drug.
type RolesLoadedMsg struct {
	Err   error
	Drug  string
	Roles []models.RoleCount
}

// TrendLoadedMsg carries the daily trend for one drug.
type TrendLoadedMsg struct {
	Err    error
	Drug   string
	Trend  []models.DayCount
	Window models.TrendWindow
}

// StatsLoadedMsg carries session statistics for the info tab.
type StatsLoadedMsg struct {
	Err      error
	Stats    *models.FetchStats
	Log      []models.FetchCall
	Searched []models.DrugCount
	Entries  []cache.Entry
	Cache    cache.Stats
}

// WatchlistEditedMsg reports the result of adding or removing a drug.
type WatchlistEditedMsg struct {
	Err   error
	Drug  string
	Added bool
}

// SelectDrugMsg makes drug current and switches to tab.
type SelectDrugMsg struct {
	Drug string
	Tab  TabID
}

// RefreshMsg requests a refresh of data.
type RefreshMsg struct {
	Resource string // "all", "top", "report", "stats"
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// FetchCompletedMsg is forwarded to tabs after every feed request.
type FetchCompletedMsg struct {
	Call models.FetchCall
}

// WatchlistChangedMsg is forwarded to tabs when the watchlist changes.
type WatchlistChangedMsg struct {
	Drugs []string
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
