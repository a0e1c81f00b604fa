package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// Styles holds the styles of the root frame: tab bar, feed indicator and
// notifications. Tab content is styled by the tabs.
type Styles struct {
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	Content     lipgloss.Style
	Toast       lipgloss.Style
	HelpTitle   lipgloss.Style
	HelpSection lipgloss.Style

	FeedIdle lipgloss.Style
	FeedOK   lipgloss.Style
	FeedDown lipgloss.Style

	// Notice is keyed by notification type.
	Notice map[NotificationType]lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	notice := func(c lipgloss.TerminalColor) lipgloss.Style {
		return fg(c).Padding(0, 1)
	}

	return Styles{
		TabBar: lipgloss.NewStyle().Padding(0, 1).
			BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(styles.Subtle),
		ActiveTab:   fg(styles.Primary).Bold(true).Padding(0, 2),
		InactiveTab: fg(styles.Subtle).Padding(0, 2),
		Content:     lipgloss.NewStyle().Padding(1, 2),
		Toast:       styles.ToastStyle,
		HelpTitle:   fg(styles.Primary).Bold(true),
		HelpSection: fg(styles.Secondary).Bold(true),

		FeedIdle: fg(styles.Subtle),
		FeedOK:   fg(styles.Success),
		FeedDown: fg(styles.Error).Bold(true),

		Notice: map[NotificationType]lipgloss.Style{
			NotificationSuccess: notice(styles.Success),
			NotificationError:   notice(styles.Error).Bold(true),
			NotificationWarning: notice(styles.Warning),
			NotificationInfo:    notice(styles.Info),
			NotificationLoading: notice(styles.Info),
		},
	}
}

var noticeIcons = map[NotificationType]string{
	NotificationSuccess: "✓",
	NotificationError:   "✗",
	NotificationWarning: "!",
	NotificationInfo:    "•",
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteByte('\n')
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(m.spinner.View() + " Loading..."))
		return b.String()
	}

	if tab := m.currentTab(); tab != nil {
		b.WriteString(tab.View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	view := b.String()

	if m.showHelp {
		panel := m.renderHelp()
		x := (m.width - lipgloss.Width(panel)) / 2
		y := (m.height - lipgloss.Height(panel)) / 2
		view = placeOverlay(view, panel, x, y)
	}

	if toasts := m.renderNotifications(); toasts != "" {
		view = placeOverlay(view, toasts, m.width-lipgloss.Width(toasts)-2, 2)
	}

	return view
}

// placeOverlay draws overlay over base with its top-left corner at (x, y),
// keeping the base cells on either side. Lines past the end of base are
// dropped.
func placeOverlay(base, overlay string, x, y int) string {
	x, y = max(x, 0), max(y, 0)
	lines := strings.Split(base, "\n")
	width := lipgloss.Width(overlay)

	for i, row := range strings.Split(overlay, "\n") {
		at := y + i
		if at >= len(lines) {
			break
		}
		line := lines[at]
		left := ansi.Truncate(line, x, "")
		if w := lipgloss.Width(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		right := ansi.TruncateLeft(line, x+width, "")
		lines[at] = left + row + right
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderNavbar() string {
	items := make([]string, 0, len(tabNames)+1)
	for i, name := range tabNames {
		if TabID(i) == m.activeTab {
			items = append(items, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
			continue
		}
		items = append(items, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
	}
	items = append(items, m.renderFeedStatus())

	return m.styles.TabBar.Width(m.width).Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}

// renderFeedStatus shows the outcome of the most recent feed request.
func (m *Model) renderFeedStatus() string {
	call := m.state.GetLastFetch()
	switch {
	case call == nil:
		return m.styles.FeedIdle.Render("  ○ feed idle")
	case call.Failed():
		return m.styles.FeedDown.Render("  ● feed down")
	default:
		return m.styles.FeedOK.Render("  ● feed ok")
	}
}

// renderNotifications stacks the active toasts, newest last.
func (m *Model) renderNotifications() string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return ""
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		icon, ok := noticeIcons[n.Type]
		if !ok {
			icon = m.spinner.View()
		}
		body := m.styles.Notice[n.Type].Render(icon + " " + n.Message)
		toasts = append(toasts, m.styles.Toast.Render(body))
	}

	return lipgloss.JoinVertical(lipgloss.Right, toasts...)
}

func (m *Model) renderHelp() string {
	m.help.Width = max(m.width-12, 20)

	sections := []string{
		m.styles.HelpTitle.Render("Keyboard Shortcuts"),
		"",
		m.styles.HelpSection.Render("Global"),
		m.help.FullHelpView(m.keymap.FullHelp()),
	}

	if tab := m.currentTab(); tab != nil {
		if groups := tab.FullHelp(); len(groups) > 0 {
			sections = append(sections, "",
				m.styles.HelpSection.Render(m.activeTab.String()),
				m.help.FullHelpView(groups))
		}
	}

	sections = append(sections, "", styles.HelpStyle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderPlaceholder() string {
	return m.styles.Content.Render(fmt.Sprintf("%s\n\n%s",
		m.activeTab,
		styles.HelpStyle.Render("No view is registered for this tab."),
	))
}
