// Package search provides the drug search tab.
package search

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/analytics"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

const (
	dateColumnWidth = 12
	roleColumnWidth = 18
	minDrugColumn   = 16
)

// keyMap defines the key bindings specific to the search tab.
type keyMap struct {
	Focus       key.Binding
	Submit      key.Binding
	Cancel      key.Binding
	NextWatched key.Binding
	PrevWatched key.Binding
	Watch       key.Binding
	Unwatch     key.Binding
	Up          key.Binding
	Down        key.Binding
}

// defaultKeyMap returns the default key bindings for the search tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Focus: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit drug"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "search"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
		NextWatched: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next watched"),
		),
		PrevWatched: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev watched"),
		),
		Watch: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "watch drug"),
		),
		Unwatch: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "unwatch drug"),
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

// Model represents the search tab state.
type Model struct {
	state    *app.State
	commands *app.Commands
	report   *models.DrugReport
	err      error
	keys     keyMap
	input    textinput.Model
	recent   table.Model
	drug     string
	width    int
	height   int
	loading  bool
}

// New creates a new search model.
func New(state *app.State, cmds *app.Commands) *Model {
	ti := textinput.New()
	ti.Placeholder = "drug name, e.g. IBUPROFEN"
	ti.Prompt = "› "
	ti.CharLimit = 128
	ti.Width = 40

	t := table.New(
		table.WithColumns(columns(minDrugColumn)),
		table.WithHeight(analytics.DefaultRecentReports+1),
		table.WithFocused(true),
	)
	ts := table.DefaultStyles()
	ts.Header = styles.TableHeaderStyle
	ts.Cell = styles.TableCellStyle
	ts.Selected = styles.TableSelectedStyle
	t.SetStyles(ts)

	return &Model{
		state:    state,
		commands: cmds,
		keys:     defaultKeyMap(),
		input:    ti,
		recent:   t,
	}
}

func columns(drugWidth int) []table.Column {
	return []table.Column{
		{Title: "Received", Width: dateColumnWidth},
		{Title: "Drug", Width: drugWidth},
		{Title: "Role", Width: roleColumnWidth},
	}
}

// Init initializes the search tab. Without a default drug the input starts
// focused.
func (m *Model) Init() tea.Cmd {
	drug := m.state.CurrentDrug()
	if drug == "" {
		return m.input.Focus()
	}
	m.input.SetValue(drug)
	return m.load(drug)
}

func (m *Model) load(drug string) tea.Cmd {
	m.drug = drug
	m.loading = true
	m.err = nil
	return m.commands.LoadReport(drug, m.commands.TrendWindow())
}

// Update handles messages for the search tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ReportLoadedMsg:
		m.handleLoaded(msg)

	case app.SelectDrugMsg:
		return m, m.show(msg.Drug)

	case app.TabSwitchMsg:
		if cur := m.state.CurrentDrug(); msg.Tab == app.TabSearch && cur != "" && cur != m.drug {
			return m, m.show(cur)
		}

	case app.RefreshMsg:
		if m.drug != "" && !m.loading {
			return m, m.load(m.drug)
		}

	case tea.KeyMsg:
		if m.input.Focused() {
			return m, m.handleInputKey(msg)
		}
		return m, m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleLoaded(msg app.ReportLoadedMsg) {
	// Results for a drug the user already moved away from.
	if msg.Drug != m.drug {
		return
	}
	m.loading = false
	m.err = msg.Err
	m.report = msg.Report
	m.recent.SetRows(recentRows(msg.Report))
	m.recent.GotoTop()
}

func recentRows(report *models.DrugReport) []table.Row {
	if report == nil {
		return nil
	}
	rows := make([]table.Row, len(report.Recent))
	for i, f := range report.Recent {
		rows[i] = table.Row{f.Date.Format("2006-01-02"), f.Drug, f.Role.Label()}
	}
	return rows
}

// show makes drug current and loads its report.
func (m *Model) show(drug string) tea.Cmd {
	m.input.Blur()
	m.input.SetValue(drug)
	m.state.SetCurrentDrug(drug)
	return m.load(drug)
}

func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.input.Blur()
		m.input.SetValue(m.drug)
		return nil

	case key.Matches(msg, m.keys.Submit):
		drug := strings.TrimSpace(m.input.Value())
		if drug == "" {
			return m.commands.NotifyWarning("Enter a drug name to search")
		}
		return m.show(drug)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Focus):
		m.input.CursorEnd()
		return m.input.Focus()

	case key.Matches(msg, m.keys.NextWatched):
		return m.cycle(true)

	case key.Matches(msg, m.keys.PrevWatched):
		return m.cycle(false)

	case key.Matches(msg, m.keys.Watch):
		if m.drug != "" {
			return m.commands.AddToWatchlist(m.drug)
		}

	case key.Matches(msg, m.keys.Unwatch):
		if m.drug != "" {
			return m.commands.RemoveFromWatchlist(m.drug)
		}

	default:
		var cmd tea.Cmd
		m.recent, cmd = m.recent.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) cycle(forward bool) tea.Cmd {
	drug, ok := m.commands.CycleWatchlist(m.drug, forward)
	if !ok {
		return m.commands.NotifyInfo("Watchlist is empty")
	}
	return m.show(drug)
}

// Capturing reports whether the drug input has keyboard focus.
func (m *Model) Capturing() bool {
	return m.input.Focused()
}

// SetSize sets the available size for the search tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	m.input.Width = max(min(width-16, 60), 20)

	drugWidth := max(width-dateColumnWidth-roleColumnWidth-20, minDrugColumn)
	m.recent.SetColumns(columns(drugWidth))
	m.recent.SetHeight(max(min(height-22, analytics.DefaultRecentReports+1), 5))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Focus,
		m.keys.Submit,
		m.keys.NextWatched,
		m.keys.PrevWatched,
		m.keys.Watch,
		m.keys.Unwatch,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Focus, m.keys.Submit, m.keys.Cancel},
		{m.keys.NextWatched, m.keys.PrevWatched},
		{m.keys.Watch, m.keys.Unwatch},
		{m.keys.Up, m.keys.Down},
	}
}
