// Package events defines the messages the aggregator emits. They are plain
// structs so the same values can flow to the indicator, the terminal UI and
// the headless logger.
package events

import (
	"github.com/surge-downloader/halo/internal/engine/types"
)

// ProgressChangedMsg carries the aggregate mean progress (0-100).
type ProgressChangedMsg struct {
	Progress int
}

// ActiveCountChangedMsg carries the number of tracked downloads.
type ActiveCountChangedMsg struct {
	Count int
}

// FilenameChangedMsg carries the filename of the leading download, or "".
type FilenameChangedMsg struct {
	Filename string
}

// DownloadCompleteMsg is emitted once per download that finished.
type DownloadCompleteMsg struct {
	Identity types.Identity
	Filename string
}

// DownloadCancelledMsg is emitted when a download disappeared before finishing.
type DownloadCancelledMsg struct {
	Identity types.Identity
	Filename string
	Progress int // Last known progress
}
