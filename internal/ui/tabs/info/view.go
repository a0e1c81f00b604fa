package info

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/app"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/version"
)

const timeLayout = "15:04:05"

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderCacheCard(),
		m.renderFeedCard(),
		m.renderSearchedCard(),
		m.renderAboutCard(),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

func (m *Model) card(title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, body...),
	)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := "Configuration, cache and feed health"
	if m.snap.Err != nil {
		subtitle = fmt.Sprintf("%s %s", styles.ErrorTextStyle.Render("Error:"), app.ErrorText(m.snap.Err))
	} else if !m.lastRefresh.IsZero() {
		subtitle = styles.HelpStyle.Render(fmt.Sprintf("%s · updated %s", subtitle, m.lastRefresh.Format(timeLayout)))
	} else {
		subtitle = styles.HelpStyle.Render(subtitle)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderRow renders a key-value row.
func renderRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func (m *Model) renderConfigCard() string {
	cfg := m.commands.Config()
	if cfg == nil {
		return m.card("Configuration", styles.HelpStyle.Render("Configuration not loaded"))
	}

	key := "not set"
	if cfg.FDAAPIKey != "" {
		key = "set"
	}
	metrics := cfg.MetricsAddr
	if metrics == "" {
		metrics = "disabled"
	}

	return m.card("Configuration",
		renderRow("Feed", cfg.FDABaseURL),
		renderRow("API Key", key),
		renderRow("Database", cfg.DatabasePath),
		renderRow("Watchlist", cfg.WatchlistPath),
		renderRow("Metrics", metrics),
		renderRow("Limits", fmt.Sprintf("top %d · search %d · show %d", cfg.TopDrugsLimit, cfg.SearchLimit, cfg.TopN)),
		renderRow("Timeout", cfg.HTTPTimeout.String()),
	)
}

func (m *Model) renderCacheCard() string {
	s := m.snap.Cache
	rows := []string{
		renderRow("Entries", fmt.Sprintf("%d", s.Entries)),
		renderRow("Hits / Misses", fmt.Sprintf("%d / %d", s.Hits, s.Misses)),
	}

	if len(m.snap.Entries) > 0 {
		rows = append(rows, "")
		now := time.Now()
		for _, e := range m.snap.Entries {
			age := now.Sub(e.CreatedAt).Truncate(time.Second)
			rows = append(rows, fmt.Sprintf("  %-32s %5d facts  %s ago", e.Key.String(), len(e.Facts), age))
		}
	}

	return m.card("Cache", rows...)
}

func (m *Model) renderFeedCard() string {
	if m.snap.Stats == nil {
		return m.card("Feed", styles.HelpStyle.Render("No fetch statistics yet"))
	}

	s := m.snap.Stats
	rows := []string{
		renderRow("Calls", fmt.Sprintf("%d (%d failed, %d not found)", s.TotalCalls, s.FailedCalls, s.NotFoundCalls)),
		renderRow("Success Rate", fmt.Sprintf("%.1f%%", s.SuccessRate())),
		renderRow("Avg Duration", fmt.Sprintf("%.0f ms", s.AvgDurationMs)),
		renderRow("Results", fmt.Sprintf("%d", s.TotalResults)),
	}
	if !s.LastCall.IsZero() {
		rows = append(rows, renderRow("Last Call", s.LastCall.Local().Format(timeLayout)))
	}

	if len(m.snap.Log) > 0 {
		rows = append(rows, "", styles.HelpStyle.Render("Recent calls"))
		for i := range m.snap.Log {
			c := &m.snap.Log[i]
			target := c.Mode
			if c.Drug != "" {
				target = fmt.Sprintf("%s %s", c.Mode, c.Drug)
			}
			status := fmt.Sprintf("%d", c.StatusCode)
			if c.Failed() {
				status = c.Error
			}
			rows = append(rows, fmt.Sprintf("  %s  %-28s %s  %d ms",
				c.Timestamp.Local().Format(timeLayout),
				target,
				styles.GetStatusStyle(c.StatusCode, c.Failed()).Render(status),
				c.DurationMs,
			))
		}
	}

	return m.card("Feed", rows...)
}

func (m *Model) renderSearchedCard() string {
	var rows []string
	if len(m.snap.Searched) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No drugs searched yet"))
	}
	for _, dc := range m.snap.Searched {
		rows = append(rows, fmt.Sprintf("  %-24s %d", dc.Drug, dc.Count))
	}

	watched := m.state.GetWatchlist()
	rows = append(rows, "")
	if len(watched) == 0 {
		rows = append(rows, renderRow("Watchlist", "empty"))
	} else {
		rows = append(rows, renderRow("Watchlist", strings.Join(watched, ", ")))
	}

	return m.card("Searched Drugs", rows...)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	return m.card("About "+version.Name,
		renderRow("Version", version.GetVersion()),
		renderRow("Build Date", version.GetDate()),
		renderRow("Git Commit", version.GetCommit()),
		renderRow("Go Version", runtime.Version()),
		renderRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)
}
