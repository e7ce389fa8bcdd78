package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one item of a strip
type Tab struct {
	Label string
	Count int // If >= 0, displays as "Label (Count)"; if < 0, displays just "Label"
}

// RenderTabBar renders a horizontal strip with the tab at activeIndex
// highlighted. An activeIndex outside the range highlights nothing.
func RenderTabBar(tabs []Tab, activeIndex int, activeStyle, inactiveStyle lipgloss.Style) string {
	rendered := make([]string, 0, len(tabs))
	for i, t := range tabs {
		style := inactiveStyle
		if i == activeIndex {
			style = activeStyle
		}

		label := t.Label
		if t.Count >= 0 {
			label = fmt.Sprintf("%s (%d)", t.Label, t.Count)
		}
		rendered = append(rendered, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
