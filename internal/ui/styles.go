package ui

import "github.com/charmbracelet/lipgloss"

// Color palette for CLI output
var (
	// Primary colors
	PrimaryColor = lipgloss.Color("#7D56F4") // Purple - headers, borders
	SuccessColor = lipgloss.Color("#43BF6D") // Green - success, checkmarks
	ErrorColor   = lipgloss.Color("#FF5555") // Red - errors, alarm state
	WarningColor = lipgloss.Color("#FFA500") // Orange - warnings, low battery
	MutedColor   = lipgloss.Color("#626262") // Gray - secondary info
	TextColor    = lipgloss.Color("#FFFFFF") // White - main content
)

// Shared styles for CLI output
var (
	// TitleStyle is for section titles (e.g., the device banner)
	TitleStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Bold(true)

	// LabelStyle is for field labels (e.g., "Battery:")
	LabelStyle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Width(12)

	// ValueStyle is for field values
	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	// ProbeAbsentStyle is for probes with nothing plugged in
	ProbeAbsentStyle = lipgloss.NewStyle().
				Foreground(MutedColor)

	// ProbePresentStyle is for live temperature readings
	ProbePresentStyle = lipgloss.NewStyle().
				Foreground(SuccessColor).
				Bold(true)

	// AlarmStyle is for the active-alarm banner
	AlarmStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// WarnStyle is for low battery and similar warnings
	WarnStyle = lipgloss.NewStyle().
			Foreground(WarningColor)
)

// Markers
const (
	SuccessMarker = "✓"
	FailureMarker = "✗"
	AlarmMarker   = "‼"
)

// BoxStyle returns the border style for device summary boxes
func BoxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 1)
}
