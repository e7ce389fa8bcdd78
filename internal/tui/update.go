package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/surge-downloader/halo/internal/clipboard"
	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/core"
	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/utils"
)

// Update handles messages and updates the model
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case core.FrameMsg:
		m.frame = msg.Frame
		cmds = append(cmds, m.progress.SetPercent(float64(msg.Frame.Progress)/100))

	case core.TriggerMsg:
		m.addLog(LogStyleTrigger.Render("» " + msg.Trigger.String()))

	case events.FilenameChangedMsg:
		if msg.Filename != "" && msg.Filename != m.frame.Filename {
			m.addLog(LogStyleStarted.Render("▶ " + msg.Filename))
		}

	case events.DownloadCompleteMsg:
		m.completed++
		m.addLog(LogStyleComplete.Render("✔ " + displayName(msg.Filename)))

	case events.DownloadCancelledMsg:
		m.cancelled++
		m.addLog(LogStyleError.Render(fmt.Sprintf("✖ %s at %d%%", displayName(msg.Filename), msg.Progress)))

	case StreamClosedMsg:
		utils.Debug("tui: event stream closed")
		return m, tea.Quit

	case historyTickMsg:
		m.history = pushHistory(m.history, float64(m.frame.Progress))
		return m, historyTick()

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case progress.FrameMsg:
		model, cmd := m.progress.Update(msg)
		if p, ok := model.(progress.Model); ok {
			m.progress = p
		}
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if isStreamMsg(msg) {
		cmds = append(cmds, listenForActivity(m.events))
	}
	return m, tea.Batch(cmds...)
}

func (m RootModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fire := func(kind config.TriggerKind, status string) (tea.Model, tea.Cmd) {
		m.Service.Fire(config.Trigger{Kind: kind})
		m.status = status
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cleanup != nil {
			m.cleanup()
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.DynamicPreview):
		return fire(config.TriggerPreviewDynamic, "preview cycle requested")
	case key.Matches(msg, m.keys.GeometryPreview):
		return fire(config.TriggerPreviewGeometry, "showing cutout geometry")
	case key.Matches(msg, m.keys.CancelGeometry):
		return fire(config.TriggerCancelGeometry, "geometry hidden")
	case key.Matches(msg, m.keys.Error):
		return fire(config.TriggerError, "error flash requested")
	case key.Matches(msg, m.keys.Clear):
		return fire(config.TriggerClear, "downloads cleared")
	case key.Matches(msg, m.keys.CopyFilename):
		return m, copyFilename(m.frame.Filename)
	case key.Matches(msg, m.keys.PasteTrigger):
		return m, pasteTrigger(m.Service)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

func copyFilename(name string) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.Copy(name); err != nil {
			return statusMsg("copy failed: " + err.Error())
		}
		return statusMsg("copied " + name)
	}
}

func pasteTrigger(svc core.OverlayService) tea.Cmd {
	return func() tea.Msg {
		t, err := clipboard.ReadTrigger()
		if err != nil {
			return statusMsg("paste: " + err.Error())
		}
		svc.Fire(t)
		return statusMsg("fired " + t.String())
	}
}

// isStreamMsg reports whether msg came off the overlay event stream, in
// which case the listener has to be re-armed.
func isStreamMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case core.FrameMsg, core.TriggerMsg,
		events.ProgressChangedMsg, events.ActiveCountChangedMsg, events.FilenameChangedMsg,
		events.DownloadCompleteMsg, events.DownloadCancelledMsg:
		return true
	}
	return false
}

func (m *RootModel) addLog(line string) {
	m.logEntries = append(m.logEntries, line)
	if len(m.logEntries) > maxLogRows {
		m.logEntries = m.logEntries[len(m.logEntries)-maxLogRows:]
	}
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}
