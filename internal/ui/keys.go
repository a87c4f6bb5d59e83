package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the controls panel.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Focus      key.Binding
	Escape     key.Binding
	Export     key.Binding

	// Player selection
	NextPlayer  key.Binding
	PrevPlayer  key.Binding
	GiveControl key.Binding

	// Slot navigation
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// Slot actions
	Save        key.Binding
	Load        key.Binding
	Rename      key.Binding
	New         key.Binding
	Delete      key.Binding
	Duplicate   key.Binding
	SetDefault  key.Binding
	WorldToggle key.Binding
	ImportSlot  key.Binding
	ImportDB    key.Binding

	// Replication
	Upload key.Binding
	Revert key.Binding

	// Modal
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Switch pane"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to own slots"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Show export strings"),
		),

		NextPlayer: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next player"),
		),
		PrevPlayer: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous player"),
		),
		GiveControl: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Give control"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous slot"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next slot"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First slot"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last slot"),
		),

		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Save live settings"),
		),
		Load: key.NewBinding(
			key.WithKeys("l", "enter"),
			key.WithHelp("l/enter", "Load slot"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Rename slot"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "New slot"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Delete slot"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Duplicate slot"),
		),
		SetDefault: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "Set as default"),
		),
		WorldToggle: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle world defaults"),
		),
		ImportSlot: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "Import slot"),
		),
		ImportDB: key.NewBinding(
			key.WithKeys("I"),
			key.WithHelp("I", "Import database"),
		),

		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload settings"),
		),
		Revert: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Revert to remote"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "Cancel"),
		),
	}
}
