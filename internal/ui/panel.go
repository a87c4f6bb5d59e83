package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderMain renders the header, command bar and both panes.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderPanes())
	return b.String()
}

// paneWidths splits the width between the slot list and the detail pane.
func (m Model) paneWidths() (slotsWidth, detailWidth int) {
	if m.width >= LayoutExtraWideWidth {
		slotsWidth = m.width * 30 / 100
	} else {
		slotsWidth = m.width * 40 / 100
	}
	return slotsWidth, m.width - slotsWidth
}

func (m Model) contentHeight() int {
	return m.height - 2 // header + command bar
}

func (m Model) renderPanes() string {
	styles := m.theme.Styles()
	height := m.contentHeight()

	if !m.view.Initialized {
		msg := styles.MutedText.Render("Waiting for " + ternary(m.view.Player == "", "player data", m.view.Player+"'s data") + "...")
		return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, msg)
	}

	slotsWidth, detailWidth := m.paneWidths()
	slotsTitle := fmt.Sprintf("Slots [%d]", len(m.view.Slots))
	if !m.view.IsLocal {
		slotsTitle = fmt.Sprintf("%s's Slots [%d]", m.view.Player, len(m.view.Slots))
	}
	slotsPane := m.renderTitledBox(slotsTitle, m.renderSlotList(slotsWidth-2, height-2), slotsWidth, height, m.focusedPane == 0)

	detailTitle := ternary(m.showExport, "Export", "Slot")
	detailPane := m.renderTitledBox(detailTitle, m.detailViewport.View(), detailWidth, height, m.focusedPane == 1)

	return lipgloss.JoinHorizontal(lipgloss.Top, slotsPane, detailPane)
}

// renderSlotList renders slot names, keeping the selection visible.
func (m Model) renderSlotList(width, height int) string {
	bgColor := ternary(m.focusedPane == 0, m.theme.FocusBg, m.theme.SurfaceAlt)
	styles := m.theme.Styles().WithBackground(bgColor)
	bg := newSurface(bgColor)

	if len(m.view.Slots) == 0 {
		return bg.Text("No slots yet. Press n or s.", styles.MutedText)
	}

	first := 0
	if height > 0 && m.view.CurrentIndex >= height {
		first = m.view.CurrentIndex - height + 1
	}

	var lines []string
	for i := first; i < len(m.view.Slots) && (height <= 0 || len(lines) < height); i++ {
		name := m.view.Slots[i]
		marker := "  "
		if name == m.view.DefaultSlot && !m.view.UseWorldDefaults {
			marker = "★ "
		}
		label := truncate(marker+name, width-1)
		if i == m.view.CurrentIndex {
			lines = append(lines, m.theme.Styles().Selected.Width(width).Render(label))
			continue
		}
		style := styles.Text
		if marker != "  " {
			style = styles.WarningText
		}
		lines = append(lines, bg.Fill(bg.Text(label, style), width))
	}
	return strings.Join(lines, "\n")
}

// renderTitledBox draws a bordered pane with the title in its top border.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := newSurface(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	title = truncate(title, innerWidth-4)
	titleLen := lipgloss.Width(title)
	leftPad := (innerWidth - titleLen - 2) / 2
	rightPad := innerWidth - titleLen - 2 - leftPad
	if leftPad < 0 {
		leftPad = 0
	}
	if rightPad < 0 {
		rightPad = 0
	}

	topBorder := bg.Text("┌", borderStyle) +
		bg.Text(strings.Repeat("─", leftPad), borderStyle) +
		bg.Text(" "+title+" ", titleStyle) +
		bg.Text(strings.Repeat("─", rightPad), borderStyle) +
		bg.Text("┐", borderStyle)

	bottomBorder := bg.Text("└", borderStyle) +
		bg.Text(strings.Repeat("─", maxInt(innerWidth, 0)), borderStyle) +
		bg.Text("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).MaxWidth(innerWidth).Background(bg.Color())

	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	lines := make([]string, 0, maxInt(boxHeight, 0))
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = contentLines[i]
		}
		lines = append(lines,
			bg.Text("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Text("│", borderStyle))
	}

	return topBorder + "\n" + strings.Join(lines, "\n") + "\n" + bottomBorder
}

// updateDetailViewport sizes the detail viewport and refills it.
func (m *Model) updateDetailViewport() {
	if !m.ready {
		return
	}
	_, detailWidth := m.paneWidths()
	m.detailViewport.Width = maxInt(detailWidth-4, 1)
	m.detailViewport.Height = maxInt(m.contentHeight()-2, 1)
	if m.showExport {
		m.detailViewport.SetContent(m.exportContent(m.detailViewport.Width))
		return
	}
	m.detailViewport.SetContent(m.slotContent())
}

// slotContent lists the selected slot's settings and the store flags.
func (m Model) slotContent() string {
	styles := m.theme.Styles()
	v := m.view

	var b strings.Builder
	row := func(label, value string, style lipgloss.Style) {
		b.WriteString(styles.MutedText.Render(padRight(label, 18)))
		b.WriteString(style.Render(value))
		b.WriteString("\n")
	}

	slot := ternary(v.CurrentSlot == "", "none", v.CurrentSlot)
	row("Slot", slot, styles.Text.Bold(true))
	if len(v.Slots) > 0 {
		row("Position", fmt.Sprintf("%d of %d", v.CurrentIndex+1, len(v.Slots)), styles.Text)
	}
	row("Loads on join", v.DefaultSlot, styles.WarningText)
	row("World defaults", ternary(v.UseWorldDefaults, "on", "off"), styles.Text)
	row("Storage", strings.TrimPrefix(v.StorageInfo, "Storage: "), ternaryStyle(v.StorageFull, styles.DangerText, styles.Text))
	if v.SlotExport != "" {
		row("Export", truncateMiddle(v.SlotExport, 36), styles.FaintText)
	}
	row("Remote copy", ternary(v.Diverged, "differs, upload or revert", "in sync"), ternaryStyle(v.Diverged, styles.WarningText, styles.SuccessText))
	if m.sess != nil {
		if owner := m.sess.Pool().Owner(v.Player); owner != "" {
			row("Controlled by", owner, styles.InfoText)
		}
	}
	if !v.CanEdit {
		row("Access", "read only", styles.DangerText)
	}

	if m.sess == nil || v.CurrentSlot == "" {
		return b.String()
	}
	payload, ok := m.sess.Controls().Reference().FetchSlot(v.CurrentSlot)
	if !ok {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(styles.AccentText.Bold(true).Render("Settings"))
	b.WriteString("\n")
	keyWidth := 0
	for _, k := range payload.Keys() {
		keyWidth = maxInt(keyWidth, len(k))
	}
	for _, e := range payload.Entries() {
		b.WriteString(styles.MutedText.Render(padRight(e.Key, keyWidth+2)))
		b.WriteString(styles.Text.Render(e.Value.String()))
		b.WriteString("\n")
	}
	return b.String()
}

// exportContent shows both export strings wrapped to the pane width.
func (m Model) exportContent(width int) string {
	styles := m.theme.Styles()
	var b strings.Builder
	section := func(title, value string) {
		b.WriteString(styles.AccentText.Bold(true).Render(title))
		b.WriteString("\n")
		if value == "" {
			b.WriteString(styles.MutedText.Render("unavailable"))
			b.WriteString("\n\n")
			return
		}
		for _, line := range wrapHard(value, width) {
			b.WriteString(styles.Text.Render(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	section("Slot "+quoteOr(m.view.CurrentSlot, ""), m.view.SlotExport)
	section("Database", m.view.DBExport)
	b.WriteString(styles.FaintText.Render("Paste into i (slot) or I (database) on another client."))
	return b.String()
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
