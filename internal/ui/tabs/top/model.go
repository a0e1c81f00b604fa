// Package top provides the top drugs tab for the Drug Safety Dashboard TUI.
package top

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the top drugs tab.
type keyMap struct {
	NextDrug  key.Binding
	PrevDrug  key.Binding
	FirstDrug key.Binding
	LastDrug  key.Binding
	Open      key.Binding
}

// defaultKeyMap returns the default key bindings for the top drugs tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextDrug: key.NewBinding(
			key.WithKeys("n", "j", "down"),
			key.WithHelp("j/n", "next drug"),
		),
		PrevDrug: key.NewBinding(
			key.WithKeys("p", "k", "up"),
			key.WithHelp("k/p", "prev drug"),
		),
		FirstDrug: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first drug"),
		),
		LastDrug: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last drug"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search drug"),
		),
	}
}

// Model represents the top drugs tab state.
type Model struct {
	state         *app.State
	commands      *app.Commands
	err           error
	spinner       components.FetchSpinner
	keys          keyMap
	viewport      viewport.Model
	drugs         []models.DrugCount
	width         int
	height        int
	selectedIndex int
	loading       bool
	loaded        bool
}

// New creates a new top drugs model.
func New(state *app.State, cmds *app.Commands) *Model {
	return &Model{
		state:    state,
		commands: cmds,
		spinner:  components.NewFetchSpinner("Loading recent reports..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	m.loading = true
	return tea.Batch(m.spinner.Start(), m.commands.LoadTopDrugs())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case app.TopDrugsLoadedMsg:
		m.handleLoaded(msg)

	case app.RefreshMsg:
		if !m.loading {
			cmds = append(cmds, m.load())
		}

	case app.TabSwitchMsg:
		if msg.Tab == app.TabTop && m.loading {
			cmds = append(cmds, m.spinner.Tick())
		}

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleLoaded(msg app.TopDrugsLoadedMsg) {
	m.loading = false
	m.loaded = true
	m.err = msg.Err
	if msg.Err != nil {
		return
	}
	m.drugs = msg.Drugs
	if m.selectedIndex >= len(m.drugs) {
		m.selectedIndex = max(len(m.drugs)-1, 0)
	}
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	count := len(m.drugs)

	switch {
	case key.Matches(msg, m.keys.NextDrug):
		if count > 0 {
			m.selectedIndex = (m.selectedIndex + 1) % count
		}
	case key.Matches(msg, m.keys.PrevDrug):
		if count > 0 {
			m.selectedIndex = (m.selectedIndex - 1 + count) % count
		}
	case key.Matches(msg, m.keys.FirstDrug):
		m.selectedIndex = 0
	case key.Matches(msg, m.keys.LastDrug):
		if count > 0 {
			m.selectedIndex = count - 1
		}
	case key.Matches(msg, m.keys.Open):
		if drug, ok := m.Selected(); ok {
			return func() tea.Msg {
				return app.SelectDrugMsg{Drug: drug, Tab: app.TabSearch}
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// Selected returns the highlighted drug.
func (m *Model) Selected() (string, bool) {
	if m.selectedIndex < 0 || m.selectedIndex >= len(m.drugs) {
		return "", false
	}
	return m.drugs[m.selectedIndex].Drug, true
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.NextDrug,
		m.keys.PrevDrug,
		m.keys.Open,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.NextDrug, m.keys.PrevDrug},
		{m.keys.FirstDrug, m.keys.LastDrug},
		{m.keys.Open},
	}
}
