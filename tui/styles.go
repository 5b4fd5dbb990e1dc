// ABOUTME: Defines lipgloss styles for the terminal browser: nav tabs, page body, status and error lines.
// ABOUTME: NavStyle picks the active or inactive tab style, mirroring the web link's two class sets.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	// Nav tabs
	ActiveTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	InactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Border(lipgloss.HiddenBorder(), false, false, true, false).
				Padding(0, 1)
	FocusedTabStyle = lipgloss.NewStyle().Underline(true)

	// Page body
	BodyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	MutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// NavStyle returns the tab style for a link's activation state.
func NavStyle(active, focused bool) lipgloss.Style {
	style := InactiveTabStyle
	if active {
		style = ActiveTabStyle
	}
	if focused {
		style = style.Inherit(FocusedTabStyle)
	}
	return style
}
