package roles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// View renders the roles tab.
func (m *Model) View() string {
	var content string
	switch {
	case m.drug == "":
		content = m.renderMessage(styles.HelpStyle.Render("Search for a drug first (tab 2)."))
	case m.loading:
		content = m.renderMessage(styles.HelpStyle.Render(fmt.Sprintf("Loading roles for %s...", m.drug)))
	case m.err != nil:
		content = m.renderMessage(fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), app.ErrorText(m.err)))
	case len(m.roles) == 0:
		content = m.renderMessage(styles.WarningTextStyle.Render(fmt.Sprintf("No reports found for %s", m.drug)))
	default:
		content = lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.renderChart())
	}

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderMessage(msg string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Role Distribution"),
		msg,
	)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Role Distribution: " + m.drug)

	total := 0
	for _, rc := range m.roles {
		total += rc.Count
	}
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d drug mentions across matching reports", total))

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Reported Role")), "")

	chart := components.RenderBarChart(components.RoleBars(m.roles), cardWidth-8)
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "", "  "+components.RenderLegend(components.RoleLegend(m.roles)), "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
