package top

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// View renders the top drugs tab.
func (m *Model) View() string {
	if m.loading && !m.loaded {
		return m.renderLoading()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTitle(),
		m.renderRanking(),
	)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return m.spinner.Centered(m.width, m.height)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Top Drugs")

	subtitle := "Most reported drugs in the latest adverse-event reports"
	if cfg := m.commands.Config(); cfg != nil {
		subtitle = fmt.Sprintf("Most reported drugs in the latest %d adverse-event reports", cfg.TopDrugsLimit)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(subtitle), "")
}

func (m *Model) renderRanking() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(m.rankingTitle())), "")

	switch {
	case m.err != nil:
		rows = append(rows,
			fmt.Sprintf("  %s %s", styles.ErrorTextStyle.Render("Error:"), app.ErrorText(m.err)),
			"",
			styles.InfoTextStyle.Render("  ╰─▶ Press r to retry"),
		)

	case len(m.drugs) == 0:
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows, fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No reports in the recent feed")))

	default:
		chart := components.RenderBarChart(components.DrugBars(m.drugs), cardWidth-8)
		for i, line := range strings.Split(chart, "\n") {
			prefix := "  "
			if i == m.selectedIndex {
				prefix = styles.SelectedListItemStyle.Render("▸ ")
			}
			rows = append(rows, prefix+line)
		}
		rows = append(rows, "", styles.HelpStyle.Render("  enter: search the selected drug"))
	}

	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) rankingTitle() string {
	if len(m.drugs) == 0 {
		return "Ranking"
	}
	return fmt.Sprintf("Top %d", len(m.drugs))
}
