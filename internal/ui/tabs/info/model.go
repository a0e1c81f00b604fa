// Package info provides the info tab: configuration, cache and feed health.
package info

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
)

// keyMap defines the key bindings specific to the info tab.
type keyMap struct {
	Open key.Binding
	Up   key.Binding
	Down key.Binding
}

// defaultKeyMap returns the default key bindings for the info tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open most searched"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the info tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	keys     keyMap
	viewport viewport.Model

	// snap is the last stats answer; its Err is shown instead of stale data.
	snap        app.StatsLoadedMsg
	lastRefresh time.Time
	width       int
	height      int
	loading     bool
}

// New creates a new info model.
func New(state *app.State, cmds *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: cmds,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the info tab.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	return m.commands.LoadStats()
}

// Update handles messages for the info tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.StatsLoadedMsg:
		m.loading = false
		m.snap = msg
		m.lastRefresh = time.Now()

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)

	default:
		if stale(msg) && !m.loading {
			return m, m.load()
		}
	}
	return m, nil
}

// stale reports whether msg may have changed what the tab shows.
func stale(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case app.FetchCompletedMsg, app.RefreshMsg:
		return true
	case app.TabSwitchMsg:
		return msg.Tab == app.TabInfo
	}
	return false
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, m.keys.Open) {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	if len(m.snap.Searched) == 0 {
		return m.commands.NotifyInfo("No drugs searched yet")
	}
	drug := m.snap.Searched[0].Drug
	return func() tea.Msg {
		return app.SelectDrugMsg{Drug: drug, Tab: app.TabSearch}
	}
}

// SetSize sets the available size for the info tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Open,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Open},
		{m.keys.Up, m.keys.Down},
	}
}
