// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/services/analytics"
	"github.com/j-veylop/drugsafety-dashboard-tui/internal/ui/styles"
)

// ChartPrimaryColor is the default bar color.
var ChartPrimaryColor = lipgloss.Color("#7D56F4")

// maxBarLabelWidth caps the label column of bar charts.
const maxBarLabelWidth = 28

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	Color lipgloss.Color
}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.Blue),
	)
}

// RenderTrendChart plots a daily trend, filling days without reports with
// zero so the x axis is linear in time.
func RenderTrendChart(trend []models.DayCount, width, height int, caption string) string {
	filled := analytics.FillDays(trend)
	data := make([]float64, len(filled))
	for i, d := range filled {
		data[i] = float64(d.Count)
	}
	// asciigraph needs two points to draw a line.
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return RenderLineChart(data, width, height, caption)
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(bars []Bar, width int) string {
	if len(bars) == 0 {
		return ""
	}

	// Find max value for scaling
	maxVal := 0.0
	for _, b := range bars {
		if b.Value > maxVal {
			maxVal = b.Value
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Find max label length
	maxLabelLen := 0
	for _, b := range bars {
		if w := ansi.StringWidth(b.Label); w > maxLabelLen {
			maxLabelLen = w
		}
	}
	maxLabelLen = min(maxLabelLen, maxBarLabelWidth)

	barWidth := width - maxLabelLen - 10 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		label := ansi.Truncate(b.Label, maxLabelLen, "…")
		paddedLabel := strings.Repeat(" ", maxLabelLen-ansi.StringWidth(label)) + label

		barLen := int((b.Value / maxVal) * float64(barWidth))
		if barLen < 0 {
			barLen = 0
		}

		color := b.Color
		if color == "" {
			color = ChartPrimaryColor
		}
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))

		lines = append(lines, paddedLabel+" │"+bar+" "+formatValue(b.Value))
	}

	return strings.Join(lines, "\n")
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// DrugBars converts a drug ranking into bars.
func DrugBars(counts []models.DrugCount) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Label: c.Drug, Value: float64(c.Count)}
	}
	return bars
}

// RoleBars converts a role distribution into bars colored by role.
func RoleBars(counts []models.RoleCount) []Bar {
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Label: c.Role.Label(), Value: float64(c.Count), Color: styles.RoleColor(c.Role)}
	}
	return bars
}

// RoleLegend returns the legend for the roles present in counts.
func RoleLegend(counts []models.RoleCount) []LegendItem {
	items := make([]LegendItem, len(counts))
	for i, c := range counts {
		items[i] = LegendItem{Label: c.Role.Label(), Color: styles.RoleColor(c.Role)}
	}
	return items
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	// Find max value
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := float64(len(values)) / float64(width)
	if step < 1 {
		step = 1
	}

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = max(0, min(normalized, len(sparkChars)-1))
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// TrendSparkline renders a daily trend as a sparkline.
func TrendSparkline(trend []models.DayCount, width int) string {
	filled := analytics.FillDays(trend)
	values := make([]float64, len(filled))
	for i, d := range filled {
		values[i] = float64(d.Count)
	}
	return RenderSparkline(values, width)
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
