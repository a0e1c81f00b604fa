// Package trend provides the daily trend tab.
package trend

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// keyMap defines the key bindings specific to the trend tab.
type keyMap struct {
	ToggleRange key.Binding
	NextWatched key.Binding
	PrevWatched key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the trend tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		NextWatched: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next watched"),
		),
		PrevWatched: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev watched"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the trend tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	err      error
	keys     keyMap
	viewport viewport.Model

	drug    string
	trend   []models.DayCount
	window  models.TrendWindow
	width   int
	height  int
	loading bool
}

// New creates a new trend model.
func New(state *app.State, cmds *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: cmds,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		window:   cmds.TrendWindow(),
	}
}

// Init initializes the trend tab.
func (m *Model) Init() tea.Cmd {
	if drug := m.state.CurrentDrug(); drug != "" {
		return m.load(drug)
	}
	return nil
}

func (m *Model) load(drug string) tea.Cmd {
	m.drug = drug
	m.loading = true
	m.err = nil
	return m.commands.LoadTrend(drug, m.window)
}

// Update handles messages for the trend tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.TrendLoadedMsg:
		if msg.Drug == m.drug && msg.Window == m.window {
			m.loading = false
			m.err = msg.Err
			m.trend = msg.Trend
		}

	case app.SelectDrugMsg:
		return m, m.load(msg.Drug)

	case app.TabSwitchMsg:
		if cur := m.state.CurrentDrug(); msg.Tab == app.TabTrend && cur != "" && cur != m.drug {
			return m, m.load(cur)
		}

	case app.RefreshMsg:
		if m.drug != "" && !m.loading {
			return m, m.load(m.drug)
		}

	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.window = m.window.Next()
		if m.drug == "" {
			return nil
		}
		return m.load(m.drug)

	case key.Matches(msg, m.keys.NextWatched):
		return m.cycle(true)

	case key.Matches(msg, m.keys.PrevWatched):
		return m.cycle(false)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return cmd
}

func (m *Model) cycle(forward bool) tea.Cmd {
	drug, ok := m.commands.CycleWatchlist(m.drug, forward)
	if !ok {
		return m.commands.NotifyInfo("Watchlist is empty")
	}
	m.state.SetCurrentDrug(drug)
	return m.load(drug)
}

// SetSize sets the available size for the trend tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.NextWatched,
		m.keys.PrevWatched,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange},
		{m.keys.NextWatched, m.keys.PrevWatched},
		{m.keys.Up, m.keys.Down},
	}
}
