package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// ApplyGradient applies a vertical gradient to a multi-line string
func ApplyGradient(text string, startColor, endColor lipgloss.Color) string {
	lines := strings.Split(text, "\n")
	height := len(lines)
	if height == 0 {
		return text
	}

	start, errStart := colorful.Hex(string(startColor))
	end, errEnd := colorful.Hex(string(endColor))
	if errStart != nil || errEnd != nil {
		return text
	}

	coloredLines := make([]string, 0, height)
	for i, line := range lines {
		// If there is only one line, t stays 0 (startColor)
		t := 0.0
		if height > 1 {
			t = float64(i) / float64(height-1)
		}
		color := lipgloss.Color(start.BlendLab(end, t).Clamped().Hex())
		coloredLines = append(coloredLines, lipgloss.NewStyle().Foreground(color).Bold(true).Render(line))
	}

	return strings.Join(coloredLines, "\n")
}

// ringCellGlyph picks a block for a canvas cell by its alpha so faded
// frames read lighter.
func ringCellGlyph(alpha float64) string {
	switch {
	case alpha >= 0.75:
		return "█"
	case alpha >= 0.5:
		return "▓"
	case alpha >= 0.25:
		return "▒"
	default:
		return "░"
	}
}
