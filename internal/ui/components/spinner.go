package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// slowAfter is how long a request runs before the elapsed time is shown.
const slowAfter = 2 * time.Second

// FetchSpinner is shown while a feed request is in flight.
type FetchSpinner struct {
	model   spinner.Model
	label   string
	started time.Time
	now     func() time.Time
}

// NewFetchSpinner creates a spinner with the given label.
func NewFetchSpinner(label string) FetchSpinner {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.Primary)),
	)
	return FetchSpinner{model: s, label: label, now: time.Now}
}

// Start resets the elapsed time and returns the first tick.
func (f *FetchSpinner) Start() tea.Cmd {
	f.started = f.now()
	return f.model.Tick
}

// Tick resumes the animation without resetting the elapsed time.
func (f FetchSpinner) Tick() tea.Cmd {
	return f.model.Tick
}

// Update advances the animation.
func (f FetchSpinner) Update(msg tea.Msg) (FetchSpinner, tea.Cmd) {
	var cmd tea.Cmd
	f.model, cmd = f.model.Update(msg)
	return f, cmd
}

// Label returns the text shown next to the animation.
func (f FetchSpinner) Label() string {
	return f.label
}

// Elapsed returns the time since Start, or zero if never started.
func (f FetchSpinner) Elapsed() time.Duration {
	if f.started.IsZero() {
		return 0
	}
	return f.now().Sub(f.started)
}

// View renders the frame and label, adding the elapsed time once the
// request is slow.
func (f FetchSpinner) View() string {
	out := f.model.View() + " " + styles.HelpStyle.Render(f.label)
	if d := f.Elapsed(); d >= slowAfter {
		out += styles.WarningTextStyle.Render(fmt.Sprintf(" (%ds)", int(d.Seconds())))
	}
	return out
}

// Centered renders View in the middle of a width x height box.
func (f FetchSpinner) Centered(width, height int) string {
	return styles.CenterBoth(f.View(), width, height)
}
