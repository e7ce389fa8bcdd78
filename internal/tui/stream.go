package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// StreamClosedMsg is delivered once the overlay event stream ends.
type StreamClosedMsg struct{}

type historyTickMsg struct{}

// statusMsg replaces the status line.
type statusMsg string

// listenForActivity waits for the next overlay event.
func listenForActivity(sub <-chan interface{}) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-sub
		if !ok {
			return StreamClosedMsg{}
		}
		return msg
	}
}

func historyTick() tea.Cmd {
	return tea.Tick(GraphUpdateInterval, func(time.Time) tea.Msg {
		return historyTickMsg{}
	})
}
