package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/openflight/hangar/internal/controls"
	"github.com/openflight/hangar/internal/state"
)

// relayErrorWindow is how long a relay error stays in the header.
const relayErrorWindow = 10 * time.Second

// replicaState summarizes the reference store for the header badge.
func replicaState(v controls.View, link state.Link) string {
	switch {
	case !v.Initialized:
		return StateLoading
	case link.IsOffline():
		return StateOffline
	case v.StorageFull:
		return StateFull
	case !v.CanEdit:
		return StateReadOnly
	case v.Diverged:
		return StateDiverged
	default:
		return StateSynced
	}
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newSurface(m.theme.Surface)
	compact := m.width < LayoutCompactWidth
	sep := bg.Gap(2)

	parts := []string{bg.Text("hangar", styles.Logo)}

	switch {
	case m.link.Connected:
		parts = append(parts, bg.Text("● ONLINE", styles.SuccessText))
	case m.link.IsOffline():
		parts = append(parts, bg.Text("● OFFLINE", styles.DangerText))
	default:
		parts = append(parts, bg.Text("● CONNECTING", styles.WarningText.Bold(true)))
	}

	who := m.view.Player
	if m.view.IsLocal {
		who += " (you)"
	}
	parts = append(parts,
		bg.Text("Viewing:", styles.MutedText)+bg.Gap(1)+bg.Text(truncate(who, 24), styles.Text))

	st := replicaState(m.view, m.link)
	parts = append(parts, styles.StateStyle(st).Render(strings.ToUpper(st)))

	if !compact {
		parts = append(parts, bg.Text(m.view.StorageInfo, styles.MutedText))
	}

	if m.sess != nil {
		if tracker := m.sess.Contributors(); tracker.InWorld() {
			label := fmt.Sprintf("Contributors: %d", tracker.Present())
			if !compact {
				label = "Contributors: " + truncate(tracker.String(), 40)
			}
			parts = append(parts, bg.Text(label, styles.InfoText))
		}
		if tracker := m.sess.Contributors(); tracker.LocalIsContributor() {
			parts = append(parts, bg.Text("★", styles.WarningText))
		}
	}

	if text, isErr := m.activeFlash(); text != "" {
		style := styles.AccentText
		if isErr {
			style = styles.DangerText
		}
		parts = append(parts, bg.Text(truncate(text, ternaryInt(compact, 40, 80)), style))
	} else if m.sess != nil {
		if msg, at := m.sess.LastError(); msg != "" && time.Since(at) < relayErrorWindow {
			parts = append(parts,
				bg.Text("RELAY", styles.DangerText)+bg.Gap(1)+bg.Text(truncate(msg, 60), styles.DangerText))
		}
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Padding(0, 1).
		Width(m.width).
		Render(strings.Join(parts, sep))
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := newSurface(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	if m.view.CanEdit {
		commands = []cmd{
			{"s", "Save"},
			{"l", "Load"},
			{"n", "New"},
			{"r", "Rename"},
			{"d", "Delete"},
			{"u", "Upload"},
		}
	} else {
		commands = []cmd{
			{"l", "Try on"},
			{"c", "Copy to mine"},
			{"esc", "My slots"},
		}
	}
	commands = append(commands,
		cmd{"[/]", "Player"},
		cmd{"x", ternary(m.showExport, "Payload", "Export")},
		cmd{"?", "More"},
	)

	colon := bg.Glue(":")
	sep := bg.Gap(2)

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Text(c.key, styles.AccentText)+colon+bg.Text(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Text("T", styles.AccentText)+colon+bg.Text(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

func ternaryInt(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
