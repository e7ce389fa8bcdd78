package tui

import "github.com/charmbracelet/bubbles/key"

// DashboardKeyMap defines keybindings for the overlay dashboard
type DashboardKeyMap struct {
	DynamicPreview  key.Binding
	GeometryPreview key.Binding
	CancelGeometry  key.Binding
	Error           key.Binding
	Clear           key.Binding
	CopyFilename    key.Binding
	PasteTrigger    key.Binding
	Help            key.Binding
	Quit            key.Binding
}

// Keys contains all the keybindings for the application
var Keys = DashboardKeyMap{
	DynamicPreview: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "preview cycle"),
	),
	GeometryPreview: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "show geometry"),
	),
	CancelGeometry: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "hide geometry"),
	),
	Error: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "error flash"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	CopyFilename: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy filename"),
	),
	PasteTrigger: key.NewBinding(
		key.WithKeys("p", "ctrl+v"),
		key.WithHelp("p", "paste trigger"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns keybindings to show in the mini help view
func (k DashboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.DynamicPreview, k.GeometryPreview, k.Error, k.Help, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k DashboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.DynamicPreview, k.GeometryPreview, k.CancelGeometry},
		{k.Error, k.Clear},
		{k.CopyFilename, k.PasteTrigger},
		{k.Help, k.Quit},
	}
}
