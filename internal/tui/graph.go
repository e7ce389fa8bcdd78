package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// GraphUpdateInterval is how often the progress history gains a point.
const GraphUpdateInterval = 250 * time.Millisecond

// GraphStats are overlaid on the top-right of the history graph.
type GraphStats struct {
	Progress  int // Current aggregate progress
	Active    int
	Completed int
	Cancelled int
}

var graphGradient = []lipgloss.TerminalColor{
	lipgloss.AdaptiveColor{Light: "#ce93d8", Dark: "#5f005f"}, // Bottom
	lipgloss.AdaptiveColor{Light: "#ab47bc", Dark: "#8700af"},
	lipgloss.AdaptiveColor{Light: "#8e24aa", Dark: "#af00d7"},
	lipgloss.AdaptiveColor{Light: "#4a148c", Dark: "#ff00ff"}, // Top
}

// pushHistory appends v to a fixed-length window.
func pushHistory(history []float64, v float64) []float64 {
	if len(history) == 0 {
		return history
	}
	return append(history[1:], v)
}

// renderProgressGraph draws the aggregate progress history as a bar graph on
// a 0-100 scale, stretched to width.
func renderProgressGraph(data []float64, width, height int, stats *GraphStats) string {
	if width < 1 || height < 1 {
		return ""
	}

	gridStyle := lipgloss.NewStyle().Foreground(ColorGray)

	rows := make([][]string, height)
	for i := range rows {
		rows[i] = make([]string, width)
		for j := range rows[i] {
			switch {
			case i == height-1:
				rows[i][j] = gridStyle.Render("─")
			case i%2 == 0:
				rows[i][j] = gridStyle.Render("╌")
			default:
				rows[i][j] = " "
			}
		}
	}

	blocks := []string{" ", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

	// Pre-render every block per row so the hot loop never calls Render
	rowChars := make([][]string, height)
	for y := 0; y < height; y++ {
		colorIdx := (y * len(graphGradient)) / height
		if colorIdx >= len(graphGradient) {
			colorIdx = len(graphGradient) - 1
		}
		style := lipgloss.NewStyle().Foreground(graphGradient[colorIdx])
		rowChars[y] = make([]string, len(blocks))
		for k, b := range blocks {
			rowChars[y][k] = style.Render(b)
		}
	}

	if len(data) > 0 {
		colsPerPoint := float64(width) / float64(len(data))
		for i, val := range data {
			pct := val / 100
			if pct < 0 {
				pct = 0
			}
			if pct > 1 {
				pct = 1
			}
			subBlocks := pct * float64(height) * 8

			startCol := int(float64(i) * colsPerPoint)
			endCol := int(float64(i+1) * colsPerPoint)
			if endCol > width {
				endCol = width
			}

			for col := startCol; col < endCol; col++ {
				for y := 0; y < height; y++ {
					rowValue := subBlocks - float64(y*8)
					if rowValue <= 0 {
						continue
					}
					idx := 7
					if rowValue < 8 {
						idx = int(rowValue)
					}
					if idx > 0 {
						rows[height-1-y][col] = rowChars[y][idx]
					}
				}
			}
		}
	}

	var b strings.Builder
	for i, row := range rows {
		b.WriteString(strings.Join(row, ""))
		if i < height-1 {
			b.WriteRune('\n')
		}
	}
	graph := b.String()

	if stats != nil {
		graph = overlayStatsBox(graph, stats, width, height)
	}
	return graph
}

// overlayStatsBox renders stats on top of the graph in the top-right area
func overlayStatsBox(graph string, stats *GraphStats, width, height int) string {
	valueStyle := lipgloss.NewStyle().Foreground(ColorNeonCyan).Bold(true)
	labelStyle := lipgloss.NewStyle().Foreground(ColorLightGray)
	headerStyle := lipgloss.NewStyle().Foreground(ColorNeonPink).Bold(true)

	statsLines := []string{
		headerStyle.Render("progress"),
		fmt.Sprintf("%s %s", valueStyle.Render("●"), valueStyle.Render(fmt.Sprintf("%3d%%", stats.Progress))),
		fmt.Sprintf("%s %s", labelStyle.Render("active:"), valueStyle.Render(fmt.Sprint(stats.Active))),
		fmt.Sprintf("%s %s %s %s",
			labelStyle.Render("done:"), valueStyle.Render(fmt.Sprint(stats.Completed)),
			labelStyle.Render("cancelled:"), valueStyle.Render(fmt.Sprint(stats.Cancelled)),
		),
	}

	box := lipgloss.JoinVertical(lipgloss.Right, statsLines...)
	boxWidth := lipgloss.Width(box)
	if boxWidth >= width || lipgloss.Height(box) >= height {
		return graph
	}

	// Merge graph lines with stats lines on the right
	graphLines := strings.Split(graph, "\n")
	boxLines := strings.Split(box, "\n")
	for i := 0; i < len(boxLines) && i < len(graphLines); i++ {
		keep := width - lipgloss.Width(boxLines[i]) - 1
		if keep < 0 {
			keep = 0
		}
		graphLines[i] = truncateCells(graphLines[i], keep) + " " + boxLines[i]
	}
	return strings.Join(graphLines, "\n")
}

// truncateCells keeps the first n visible cells of a styled line and pads
// with spaces when it is shorter.
func truncateCells(line string, n int) string {
	w := lipgloss.Width(line)
	if w <= n {
		return line + strings.Repeat(" ", n-w)
	}
	return lipgloss.NewStyle().MaxWidth(n).Render(line)
}
