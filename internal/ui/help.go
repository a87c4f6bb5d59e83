package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	keys  []key.Binding
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	return []helpSection{
		{title: "Slots", keys: []key.Binding{k.Up, k.Down, k.Top, k.Bottom, k.Save, k.Load, k.New, k.Rename, k.Delete, k.Duplicate}},
		{title: "Loading", keys: []key.Binding{k.SetDefault, k.WorldToggle}},
		{title: "Sharing", keys: []key.Binding{k.Upload, k.Revert, k.Export, k.ImportSlot, k.ImportDB, k.GiveControl}},
		{title: "Players", keys: []key.Binding{k.NextPlayer, k.PrevPlayer, k.Escape}},
		{title: "General", keys: []key.Binding{k.Focus, k.CycleTheme, k.Help, k.Quit}},
	}
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)

	sections := m.helpSections()
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, binding := range section.keys {
			h := binding.Help()
			b.WriteString(keyStyle.Render(h.Key))
			b.WriteString(styles.Text.Render(h.Desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	return placeModal(m.theme, b.String(), 44, m.width, m.height)
}
