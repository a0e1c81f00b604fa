package trend

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

const chartHeight = 10

// View renders the trend tab.
func (m *Model) View() string {
	var sections []string

	switch {
	case m.drug == "":
		sections = append(sections, m.renderHeader(),
			styles.HelpStyle.Render("Search for a drug first (tab 2)."))
	case m.loading:
		sections = append(sections, m.renderHeader(),
			styles.HelpStyle.Render(fmt.Sprintf("Loading trend for %s...", m.drug)))
	case m.err != nil:
		sections = append(sections, m.renderHeader(),
			fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), app.ErrorText(m.err)))
	case len(m.trend) == 0:
		sections = append(sections, m.renderHeader(),
			styles.WarningTextStyle.Render(fmt.Sprintf("No dated reports for %s in the last %d days", m.drug, m.window.Days())))
	default:
		sections = append(sections, m.renderHeader(), m.renderChart(), m.renderStats())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderHeader() string {
	name := "Trend"
	if m.drug != "" {
		name = "Trend: " + m.drug
	}
	title := styles.TitleStyle.Render(name)

	// Time range indicator with toggle hint
	rangeStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)

	rangeIndicator := rangeStyle.Render(fmt.Sprintf("[t] %s", m.window.String()))

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", rangeIndicator)

	var subtitle string
	if len(m.trend) > 0 && !m.loading {
		first, last := m.trend[0].Date, m.trend[len(m.trend)-1].Date
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("Reports received %s → %s",
			first.Format("Jan 2, 2006"),
			last.Format("Jan 2, 2006"),
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Daily Reports")), "")

	chartWidth := max(cardWidth-12, 30) // More padding for axis labels
	chart := components.RenderTrendChart(m.trend, chartWidth, chartHeight,
		fmt.Sprintf("Reports per day, last %d days", m.window.Days()))

	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderStats() string {
	total, peak := summarize(m.trend)

	peakLabel := lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).
		Render(peak.Date.Format("Jan 2, 2006"))

	return lipgloss.JoinVertical(lipgloss.Left,
		fmt.Sprintf("  Reports in window: %s across %d days",
			styles.InfoTextStyle.Render(fmt.Sprintf("%d", total)), len(m.trend)),
		fmt.Sprintf("  Peak: %s (%d reports)", peakLabel, peak.Count),
	)
}

// summarize returns the total count and the busiest day. Ties keep the
// earliest day.
func summarize(trend []models.DayCount) (total int, peak models.DayCount) {
	for _, d := range trend {
		total += d.Count
		if d.Count > peak.Count {
			peak = d
		}
	}
	return total, peak
}
