// Package app implements the root Bubble Tea model: tab routing, feed
// status and notifications.
package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabTop is the ID for the top drugs tab.
	TabTop TabID = iota
	// TabSearch is the ID for the drug search tab.
	TabSearch
	// TabRoles is the ID for the role distribution tab.
	TabRoles
	// TabTrend is the ID for the daily trend tab.
	TabTrend
	// TabInfo is the ID for the info tab.
	TabInfo
)

var tabNames = []string{"Top Drugs", "Search", "Roles", "Trend", "Info"}

// String returns the string representation of the TabID.
func (t TabID) String() string {
	if t < 0 || int(t) >= len(tabNames) {
		return "Unknown"
	}
	return tabNames[t]
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Tab, tea.Cmd)
	View() string
	SetSize(width, height int)
	ShortHelp() []key.Binding
	FullHelp() [][]key.Binding
}

// InputTab is implemented by tabs that can hold keyboard focus in a text
// input. While Capturing reports true only ctrl+c is handled globally.
type InputTab interface {
	Capturing() bool
}

// chromeHeight is the number of rows taken by the tab bar and margins.
const chromeHeight = 5

// Model is the main application model.
type Model struct {
	tabs      []Tab
	activeTab TabID

	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles
	spinner  spinner.Model
	help     help.Model

	eventChannel chan services.ServiceEvent

	width    int
	height   int
	showHelp bool
	ready    bool
}

// NewModel initializes a new application model. Tabs are attached
// afterwards with SetTabs.
func NewModel(mgr *services.Manager) *Model {
	m := &Model{
		activeTab: TabTop,
		tabs:      make([]Tab, len(tabNames)),
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		help:      help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
		),
	}

	// Tabs read the shared drug and watchlist during Init.
	m.state.SetCurrentDrug(m.commands.DefaultDrug())
	if mgr != nil {
		m.state.SetWatchlist(mgr.WatchedDrugs())
	}

	return m
}

// SetTabs sets the tabs for the model, in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.resizeTabs()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading...")

	cmds := []tea.Cmd{m.spinner.Tick, defaultTickCmd()}
	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
	}
	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles a message at the root, then hands it to the tabs.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := m.handle(msg)

	if isBroadcast(msg) {
		for i, tab := range m.tabs {
			if tab == nil {
				continue
			}
			var cmd tea.Cmd
			m.tabs[i], cmd = tab.Update(msg)
			cmds = append(cmds, cmd)
		}
	} else if tab := m.currentTab(); tab != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// isBroadcast reports whether msg carries data every tab may care about,
// not just the visible one.
func isBroadcast(msg tea.Msg) bool {
	switch msg.(type) {
	case TopDrugsLoadedMsg, ReportLoadedMsg, RolesLoadedMsg, TrendLoadedMsg,
		StatsLoadedMsg, FetchCompletedMsg, WatchlistChangedMsg, WatchlistEditedMsg:
		return true
	}
	return false
}

// handle applies msg to root state. Tabs have not seen msg yet.
func (m *Model) handle(msg tea.Msg) []tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resizeTabs()

	case tea.KeyMsg:
		return []tea.Cmd{m.handleKeyMsg(msg)}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return []tea.Cmd{cmd}

	case TickMsg:
		m.state.ClearExpiredNotifications()
		return []tea.Cmd{defaultTickCmd()}

	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		return []tea.Cmd{waitForServiceEventCmd(m.eventChannel)}

	case ServiceEventMsg:
		cmds := []tea.Cmd{m.handleServiceEvent(msg.Event)}
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
		return cmds

	case TopDrugsLoadedMsg:
		m.state.SetLoading(ResourceInitial, false)
		return m.handleLoaded(ResourceTop, "Top drugs", msg.Err)
	case ReportLoadedMsg:
		return m.handleLoaded(ResourceReport, "Search "+msg.Drug, msg.Err)
	case RolesLoadedMsg:
		return m.handleLoaded(ResourceReport, "Roles for "+msg.Drug, msg.Err)
	case TrendLoadedMsg:
		return m.handleLoaded(ResourceReport, "Trend for "+msg.Drug, msg.Err)
	case StatsLoadedMsg:
		return m.handleLoaded(ResourceStats, "Session stats", msg.Err)

	case WatchlistEditedMsg:
		return []tea.Cmd{m.handleWatchlistEdited(msg)}

	case SelectDrugMsg:
		m.state.SetCurrentDrug(msg.Drug)
		m.activeTab = msg.Tab
		m.resizeTabs()

	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.resizeTabs()

	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			return []tea.Cmd{clearNotificationCmd(id, msg.Duration)}
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()

	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
		m.state.SetLoadingNotification("Loading...")
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)

	case ErrorMsg:
		return []tea.Cmd{notifyErrorCmd(ErrorText(msg.Error))}
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	case QuitMsg:
		return []tea.Cmd{tea.Quit}
	}
	return nil
}

func (m *Model) handleLoaded(resource, what string, err error) []tea.Cmd {
	m.stopLoading(resource)
	if err != nil {
		return []tea.Cmd{notifyErrorCmd(fmt.Sprintf("%s: %s", what, ErrorText(err)))}
	}
	return nil
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleWatchlistEdited(msg WatchlistEditedMsg) tea.Cmd {
	switch {
	case msg.Err != nil:
		return notifyErrorCmd(fmt.Sprintf("Watchlist: %v", msg.Err))
	case msg.Added:
		return notifySuccessCmd(fmt.Sprintf("Watching %s", msg.Drug))
	default:
		return notifyInfoCmd(fmt.Sprintf("Stopped watching %s", msg.Drug))
	}
}

func (m *Model) currentTab() Tab {
	if int(m.activeTab) >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.activeTab]
}

func (m *Model) resizeTabs() {
	h := max(0, m.height-chromeHeight)
	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, h)
		}
	}
}

func (m *Model) capturing() bool {
	in, ok := m.currentTab().(InputTab)
	return ok && in.Capturing()
}

// switchTab activates id and tells the tab it became visible.
func (m *Model) switchTab(id TabID) tea.Cmd {
	m.activeTab = id
	m.resizeTabs()
	return func() tea.Msg { return TabSwitchMsg{Tab: id} }
}

// handleKeyMsg handles global keys. Keys it does not consume still reach
// the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if m.capturing() {
		if key.Matches(msg, m.keymap.ForceQuit) {
			return tea.Quit
		}
		return nil
	}

	if id, ok := m.keymap.tabFor(msg); ok {
		return m.switchTab(id)
	}

	n := len(m.tabs)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
	case key.Matches(msg, m.keymap.Close):
		m.showHelp = false
	case m.showHelp:
		// Tab cycling is disabled while the help panel is open.
	case key.Matches(msg, m.keymap.NextTab):
		return m.switchTab(TabID((int(m.activeTab) + 1) % n))
	case key.Matches(msg, m.keymap.PrevTab):
		return m.switchTab(TabID((int(m.activeTab) - 1 + n) % n))
	case key.Matches(msg, m.keymap.Refresh):
		return func() tea.Msg { return RefreshMsg{Resource: "all"} }
	}
	return nil
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.FetchCompletedEvent:
		wasDown := m.state.FeedDown()
		m.state.SetLastFetch(e.Call)

		forward := func() tea.Msg { return FetchCompletedMsg(e) }
		switch {
		case e.Call.Failed() && !wasDown:
			return tea.Batch(forward, notifyWarningCmd("Event feed unavailable: "+e.Call.Error))
		case !e.Call.Failed() && wasDown:
			return tea.Batch(forward, notifySuccessCmd("Event feed recovered"))
		}
		return forward

	case services.WatchlistChangedEvent:
		m.state.SetWatchlist(e.Drugs)
		return func() tea.Msg { return WatchlistChangedMsg(e) }

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}
