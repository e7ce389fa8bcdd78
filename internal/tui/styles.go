package tui

import (
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/tui/colors"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorNeonPurple     = colors.NeonPurple
	ColorNeonPink       = colors.NeonPink
	ColorNeonCyan       = colors.NeonCyan
	ColorDarkGray       = colors.DarkGray
	ColorGray           = colors.Gray
	ColorLightGray      = colors.LightGray
	ColorWhite          = colors.White
	ColorStateIdle      = colors.StateIdle
	ColorStateActive    = colors.StateActive
	ColorStatePending   = colors.StatePending
	ColorStateFinishing = colors.StateFinishing
	ColorStateError     = colors.StateError
)

// Progress bar color constants
var (
	ProgressStart = colors.ProgressStart
	ProgressEnd   = colors.ProgressEnd
)

// === Layout Styles ===
var (
	// Standard pane border
	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorGray).
			Padding(0, 1)

	// The ring preview pane
	RingPaneStyle = PaneStyle.
			BorderForeground(ColorNeonPink)

	// The progress history graph
	GraphStyle = PaneStyle.
			BorderForeground(ColorNeonCyan)

	// === Text Styles ===

	PaneTitleStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Bold(true)

	TabStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray).
			Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPink).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorNeonPink).
			Padding(0, 1).
			Bold(true)

	StatsLabelStyle = lipgloss.NewStyle().
			Foreground(ColorNeonCyan).
			Width(12)

	StatsValueStyle = lipgloss.NewStyle().
			Foreground(ColorNeonPink).
			Bold(true)

	// Count badge drawn next to the ring
	BadgeStyle = lipgloss.NewStyle().
			Foreground(ColorDarkGray).
			Background(ColorNeonPink).
			Bold(true).
			Padding(0, 1)

	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorLightGray).
			Italic(true)

	// Log Entry Styles
	LogStyleStarted = lipgloss.NewStyle().
			Foreground(ColorStateActive)

	LogStyleComplete = lipgloss.NewStyle().
				Foreground(ColorStateFinishing)

	LogStyleError = lipgloss.NewStyle().
			Foreground(ColorStateError)

	LogStyleTrigger = lipgloss.NewStyle().
			Foreground(ColorStatePending)
)

// StateColor maps an indicator state to its palette entry.
func StateColor(s indicator.State) lipgloss.AdaptiveColor {
	switch s {
	case indicator.StateActive:
		return ColorStateActive
	case indicator.StatePendingFinish:
		return ColorStatePending
	case indicator.StateFinishing:
		return ColorStateFinishing
	default:
		return ColorStateIdle
	}
}
