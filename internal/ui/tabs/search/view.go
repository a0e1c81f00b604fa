package search

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

const dateLayout = "2006-01-02"

// View renders the search tab.
func (m *Model) View() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
	)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render("Search")

	box := styles.BlurredBorderStyle
	hint := "/ edit · [ ] watchlist · a/x watch"
	if m.input.Focused() {
		box = styles.FocusedBorderStyle
		hint = "enter search · esc cancel"
	}

	input := lipgloss.JoinHorizontal(lipgloss.Center,
		box.Render(m.input.View()),
		"  ",
		styles.HelpStyle.Render(hint),
	)

	return lipgloss.JoinVertical(lipgloss.Left, title, input, "")
}

func (m *Model) renderBody() string {
	switch {
	case m.drug == "":
		return styles.HelpStyle.Render("Type a drug name and press enter to search the adverse-event feed.")

	case m.loading:
		return styles.HelpStyle.Render(fmt.Sprintf("Searching reports for %s...", m.drug))

	case m.err != nil:
		return fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), app.ErrorText(m.err))

	case m.report.Empty():
		return styles.WarningTextStyle.Render(fmt.Sprintf("No reports found for %s", m.drug))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderSummary(),
		m.renderRoles(),
		m.renderRecent(),
	)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderSummary() string {
	r := m.report

	badge := styles.BadgeStyle.Render(r.Drug)
	watch := styles.HelpStyle.Render("☆ not watched")
	if m.state.IsWatched(r.Drug) {
		watch = styles.SuccessTextStyle.Render("★ watched")
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, badge, "  ", watch)

	rows := []string{header, "", summaryLine(r.Summary)}

	if len(r.Trend) > 0 {
		spark := components.TrendSparkline(r.Trend, m.cardWidth()-24)
		rows = append(rows, fmt.Sprintf("%s  %s",
			styles.HelpStyle.Render(r.Window.String()),
			lipgloss.NewStyle().Foreground(styles.Secondary).Render(spark),
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func summaryLine(s models.Summary) string {
	if !s.HasDateRange() {
		return fmt.Sprintf("Found %d reports, none with a receipt date", s.Total)
	}
	return fmt.Sprintf("Found %d reports spanning %s to %s",
		s.Total,
		s.First.Format(dateLayout),
		s.Last.Format(dateLayout),
	)
}

func (m *Model) renderRoles() string {
	rows := []string{styles.CardTitleStyle.Render("Role Breakdown")}

	total := 0
	for _, rc := range m.report.Roles {
		total += rc.Count
	}

	for _, rc := range m.report.Roles {
		share := 0.0
		if total > 0 {
			share = float64(rc.Count) / float64(total) * 100
		}
		rows = append(rows, fmt.Sprintf("%s %6d  %5.1f%%",
			styles.GetRoleStyle(rc.Role).Width(20).Render(rc.Role.Label()),
			rc.Count,
			share,
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderRecent() string {
	title := styles.CardTitleStyle.Render(fmt.Sprintf("Recent Reports (%d)", len(m.report.Recent)))

	body := m.recent.View()
	if len(m.report.Recent) == 0 {
		body = styles.HelpStyle.Render("No dated reports")
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, body),
	)
}
