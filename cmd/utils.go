package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/surge-downloader/halo/internal/config"
	"github.com/surge-downloader/halo/internal/core"
	"github.com/surge-downloader/halo/internal/engine/events"
	"github.com/surge-downloader/halo/internal/notify"
)

// openFeed opens path for reading; "-" means stdin.
func openFeed(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feed: %w", err)
	}
	return f, nil
}

// formatEvent renders an overlay event as one log line. Frames are only
// printed when frames is set. The second result is false for events that
// print nothing.
func formatEvent(msg interface{}, frames bool) (string, bool) {
	switch m := msg.(type) {
	case events.ProgressChangedMsg:
		return fmt.Sprintf("Progress: %d%%", m.Progress), true
	case events.ActiveCountChangedMsg:
		return fmt.Sprintf("Active: %d", m.Count), true
	case events.FilenameChangedMsg:
		if m.Filename == "" {
			return "Leading: (none)", true
		}
		return fmt.Sprintf("Leading: %s [%s]", m.Filename, notify.Category(m.Filename)), true
	case events.DownloadCompleteMsg:
		return fmt.Sprintf("Completed: %s [%s]", displayName(m.Filename), m.Identity), true
	case events.DownloadCancelledMsg:
		return fmt.Sprintf("Cancelled: %s [%s] at %d%%", displayName(m.Filename), m.Identity, m.Progress), true
	case core.TriggerMsg:
		return fmt.Sprintf("Trigger: %s", m.Trigger), true
	case core.FrameMsg:
		if !frames {
			return "", false
		}
		f := m.Frame
		line := fmt.Sprintf("Frame: %s progress=%d arc=%.1f visible=%t", f.State, f.Progress, f.Arc, f.Visible)
		if f.Phase != "" {
			line += " phase=" + f.Phase
		}
		if f.Error {
			line += " error"
		}
		return line, true
	}
	return "", false
}

func displayName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return name
}

// parseTriggerArg maps the preview subcommand names onto triggers.
func parseTriggerArg(arg string) (config.Trigger, error) {
	switch arg {
	case "dynamic":
		arg = string(config.TriggerPreviewDynamic)
	case "geometry":
		arg = string(config.TriggerPreviewGeometry)
	}
	return config.ParseTrigger(arg)
}
