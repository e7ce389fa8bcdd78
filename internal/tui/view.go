package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/surge-downloader/halo/internal/animator"
	"github.com/surge-downloader/halo/internal/indicator"
	"github.com/surge-downloader/halo/internal/notify"
	"github.com/surge-downloader/halo/internal/ring"
	"github.com/surge-downloader/halo/internal/tui/components"
)

const logo = `┓   ┓
┣┓┏┓┃┏┓
┛┗┗┻┗┗┛`

const (
	defaultWidth = 80
	graphHeight  = 5
)

var stateTabs = []indicator.State{
	indicator.StateIdle,
	indicator.StateActive,
	indicator.StatePendingFinish,
	indicator.StateFinishing,
}

func (m RootModel) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		ApplyGradient(logo, lipgloss.Color(ProgressStart.Dark), lipgloss.Color(ProgressEnd.Dark)),
		"  ",
		m.renderStateStrip(),
	)

	ringPane := RingPaneStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		PaneTitleStyle.Render("ring"),
		m.renderRing(),
	))
	detailPane := PaneStyle.Render(m.renderDetails())
	top := lipgloss.JoinHorizontal(lipgloss.Top, ringPane, detailPane)

	graphWidth := width - GraphStyle.GetHorizontalFrameSize()
	if graphWidth < 10 {
		graphWidth = 10
	}
	graph := GraphStyle.Render(renderProgressGraph(m.history, graphWidth, graphHeight, &GraphStats{
		Progress:  m.frame.Progress,
		Active:    m.frame.ActiveCount,
		Completed: m.completed,
		Cancelled: m.cancelled,
	}))

	sections := []string{header, top, graph}
	if len(m.logEntries) > 0 {
		sections = append(sections, strings.Join(m.logEntries, "\n"))
	}
	if m.status != "" {
		sections = append(sections, StatusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RootModel) renderStateStrip() string {
	tabs := make([]components.Tab, len(stateTabs))
	active := -1
	for i, s := range stateTabs {
		tabs[i] = components.Tab{Label: s.String(), Count: -1}
		if s == indicator.StateActive {
			tabs[i].Count = m.frame.ActiveCount
		}
		if s == m.frame.State {
			active = i
		}
	}
	activeStyle := ActiveTabStyle.Foreground(StateColor(m.frame.State)).BorderForeground(StateColor(m.frame.State))
	return components.RenderTabBar(tabs, active, activeStyle, TabStyle)
}

// renderRing paints the canvas raster with each cell's own color.
func (m RootModel) renderRing() string {
	if m.canvas == nil {
		return ""
	}
	rows := m.canvas.Snapshot()
	lines := make([]string, len(rows))
	styles := map[string]lipgloss.Style{}
	for r, row := range rows {
		var b strings.Builder
		for _, cell := range row {
			if !cell.Lit {
				b.WriteByte(' ')
				continue
			}
			style, ok := styles[cell.Color]
			if !ok {
				style = lipgloss.NewStyle().Foreground(lipgloss.Color(cell.Color))
				styles[cell.Color] = style
			}
			b.WriteString(style.Render(ringCellGlyph(cell.Alpha)))
		}
		lines[r] = b.String()
	}

	out := strings.Join(lines, "\n")
	if m.frame.ActiveCount > 1 {
		out = lipgloss.JoinHorizontal(lipgloss.Top, out, " ", BadgeStyle.Render(fmt.Sprint(m.frame.ActiveCount)))
	}
	return out
}

func (m RootModel) renderDetails() string {
	f := m.frame
	row := func(label, value string) string {
		return StatsLabelStyle.Render(label) + StatsValueStyle.Render(value)
	}

	filename := displayName(f.Filename)
	category := notify.CategoryFile
	if f.Filename != "" {
		category = notify.Category(f.Filename)
	}

	rows := []string{
		PaneTitleStyle.Render("overlay"),
		m.progress.View(),
		row("Progress", fmt.Sprintf("%d%%", f.Progress)),
		row("State", f.State.String()),
		row("File", filename),
		row("Type", category),
	}
	if f.Preview != animator.PreviewNone {
		rows = append(rows, row("Preview", f.Preview.String()))
	}
	if f.Phase != animator.PhaseNone {
		rows = append(rows, row("Phase", f.Phase))
	}
	if f.Visible && !f.Effects.IsRest() {
		rows = append(rows, row("Effects", formatEffects(f.Effects)))
	}
	if f.Error {
		rows = append(rows, LogStyleError.Render("error flash"))
	}
	if !f.Visible {
		rows = append(rows, StatusStyle.Render("ring hidden"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func formatEffects(fx ring.Effects) string {
	return fmt.Sprintf("α%.2f ×%.2f seg%d blend%.2f", fx.Opacity, fx.Scale, fx.Segment, fx.ColorBlend)
}
