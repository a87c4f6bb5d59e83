package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// promptAction identifies what a prompt's submitted value is used for.
type promptAction int

const (
	promptRename promptAction = iota
	promptImportSlot
	promptImportDB
	promptGiveControl
	confirmDelete
)

// promptModal asks for one line of text.
type promptModal struct {
	action    promptAction
	title     string
	hint      string
	input     textinput.Model
	submitted bool
}

func newPrompt(action promptAction, title, hint, initial string, limit int) *promptModal {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = limit
	in.Width = 48
	in.SetValue(initial)
	in.CursorEnd()
	in.Focus()
	return &promptModal{action: action, title: title, hint: hint, input: in}
}

// Value returns the trimmed input.
func (p *promptModal) Value() string { return strings.TrimSpace(p.input.Value()) }

func (p *promptModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(km, keys.Confirm):
			p.submitted = true
			return p, nil, true
		case key.Matches(km, keys.Cancel):
			return p, nil, true
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd, false
}

func (p *promptModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(p.title))
	b.WriteString("\n")
	if p.hint != "" {
		b.WriteString(styles.MutedText.Render(p.hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter confirm  esc cancel"))
	return placeModal(theme, b.String(), 56, width, height)
}

// confirmModal asks a yes/no question.
type confirmModal struct {
	action    promptAction
	question  string
	submitted bool
}

func (c *confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil, false
	}
	switch km.String() {
	case "y", "Y", "enter":
		c.submitted = true
		return c, nil, true
	case "n", "N":
		return c, nil, true
	}
	if key.Matches(km, keys.Cancel) {
		return c, nil, true
	}
	return c, nil, false
}

func (c *confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	content := styles.Text.Bold(true).Render(c.question) + "\n\n" +
		styles.FaintText.Render("y confirm  n cancel")
	return placeModal(theme, content, 44, width, height)
}

func placeModal(theme Theme, content string, modalWidth, width, height int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(modalWidth)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box.Render(content),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
