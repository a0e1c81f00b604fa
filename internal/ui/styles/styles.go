// Package styles defines the colors and lipgloss styles shared by the tabs.
package styles

import (
	"net/http"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// Palette. Values are 256-color codes.
var (
	Primary   = lipgloss.Color("205")
	Secondary = lipgloss.Color("63")
	Subtle    = lipgloss.Color("240")

	Success = lipgloss.Color("42")
	Error   = lipgloss.Color("196")
	Warning = lipgloss.Color("220")
	Info    = lipgloss.Color("39")

	TextPrimary = lipgloss.Color("252")
	TextMuted   = lipgloss.Color("240")

	panelBg    = lipgloss.Color("235")
	selectedBg = lipgloss.Color("236")
)

// rolePalette colors each reported role. Suspect roles use warm colors.
var rolePalette = map[models.Role]lipgloss.Color{
	models.RolePrimarySuspect:   lipgloss.Color("196"),
	models.RoleSecondarySuspect: lipgloss.Color("208"),
	models.RoleConcomitant:      lipgloss.Color("39"),
	models.RoleUnknown:          lipgloss.Color("245"),
}

// Layout
var (
	// DocStyle frames a tab's content.
	DocStyle = lipgloss.NewStyle().Margin(1, 2).Padding(0, 1)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Subtle).
			Padding(1, 2).
			MarginBottom(1)

	CardTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Primary).MarginBottom(1)

	// BadgeStyle marks a short inline label such as the active drug.
	BadgeStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary)
)

// Inputs and selection
var (
	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	BlurredBorderStyle = FocusedBorderStyle.BorderForeground(Subtle)

	SelectedListItemStyle = lipgloss.NewStyle().Foreground(Primary).Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(Subtle)

	TableCellStyle = lipgloss.NewStyle().Padding(0, 1)

	TableSelectedStyle = lipgloss.NewStyle().
				Background(selectedBg).
				Foreground(TextPrimary).
				Bold(true)
)

// Overlays
var (
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1).
			MarginBottom(1)

	HelpPanelStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(Primary).
			Padding(1, 3).
			Background(panelBg)
)

// Text
var (
	HelpStyle        = lipgloss.NewStyle().Foreground(TextMuted)
	ErrorTextStyle   = lipgloss.NewStyle().Foreground(Error)
	SuccessTextStyle = lipgloss.NewStyle().Foreground(Success)
	WarningTextStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoTextStyle    = lipgloss.NewStyle().Foreground(Info)
)

// RoleColor returns the chart color for a role.
func RoleColor(r models.Role) lipgloss.Color {
	if c, ok := rolePalette[r]; ok {
		return c
	}
	return rolePalette[models.RoleUnknown]
}

// GetRoleStyle returns the text style for a role.
func GetRoleStyle(r models.Role) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(RoleColor(r))
}

// GetStatusStyle returns the style for an HTTP status in the fetch log.
// A 404 is an empty result, not a failure.
func GetStatusStyle(status int, failed bool) lipgloss.Style {
	switch {
	case failed:
		return ErrorTextStyle
	case status == http.StatusNotFound:
		return WarningTextStyle
	default:
		return SuccessTextStyle
	}
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
