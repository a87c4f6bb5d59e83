package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/openflight/hangar/internal/slots"
)

// importCharLimit bounds what the import prompt accepts.
const importCharLimit = 1 << 20

// handleAction runs the slot and replication actions bound to msg.
func (m *Model) handleAction(msg tea.KeyMsg) {
	if m.sess == nil {
		return
	}
	c := m.sess.Controls()

	switch {
	case key.Matches(msg, m.keys.Escape):
		if !m.view.IsLocal {
			m.restored = true
			m.switchPlayer(c.Local().Player())
		}

	case key.Matches(msg, m.keys.NextPlayer):
		m.cyclePlayer(1)
	case key.Matches(msg, m.keys.PrevPlayer):
		m.cyclePlayer(-1)

	case key.Matches(msg, m.keys.Up):
		c.PreviousSlot()
	case key.Matches(msg, m.keys.Down):
		c.NextSlot()
	case key.Matches(msg, m.keys.Top):
		c.Select(c.Reference().GetSlotName(0))
	case key.Matches(msg, m.keys.Bottom):
		c.Select(c.Reference().GetSlotName(len(m.view.Slots) - 1))

	case key.Matches(msg, m.keys.Save):
		m.report(c.Save(), "Saved live settings to "+quoteOr(c.CurrentSlot(), "new slot"), "Save failed")
	case key.Matches(msg, m.keys.Load):
		m.report(c.Load(), "Loaded "+quoteOr(c.CurrentSlot(), "slot"), "Load failed")
	case key.Matches(msg, m.keys.New):
		m.report(c.NewSlot(), "Created "+quoteOr(c.CurrentSlot(), "slot"), "New slot failed")
	case key.Matches(msg, m.keys.Duplicate):
		m.report(c.Duplicate(), "Duplicated "+quoteOr(c.CurrentSlot(), "slot"), "Duplicate failed")
	case key.Matches(msg, m.keys.SetDefault):
		m.report(c.SetAsDefaultSlot(), quoteOr(c.CurrentSlot(), "Slot")+" loads on join", "Set default failed")
	case key.Matches(msg, m.keys.WorldToggle):
		on := !m.view.UseWorldDefaults
		m.report(c.SetUseWorldDefaults(on), fmt.Sprintf("World defaults on join: %t", on), "Toggle failed")

	case key.Matches(msg, m.keys.Rename):
		if m.editable() && m.view.CurrentSlot != "" {
			m.modal = newPrompt(promptRename, "Rename slot", "New name for "+quoteOr(m.view.CurrentSlot, ""), m.view.CurrentSlot, slots.MaxNameLength)
		}
	case key.Matches(msg, m.keys.Delete):
		if m.editable() && m.view.CurrentSlot != "" {
			m.modal = &confirmModal{action: confirmDelete, question: "Delete " + quoteOr(m.view.CurrentSlot, "slot") + "?"}
		}
	case key.Matches(msg, m.keys.ImportSlot):
		m.modal = newPrompt(promptImportSlot, "Import slot", "Paste a slot export string", "", importCharLimit)
	case key.Matches(msg, m.keys.ImportDB):
		m.modal = newPrompt(promptImportDB, "Import database", "Replaces every slot you own", "", importCharLimit)
	case key.Matches(msg, m.keys.GiveControl):
		m.modal = newPrompt(promptGiveControl, "Give control", "Player who may edit your slots (blank takes it back)", "", 64)

	case key.Matches(msg, m.keys.Upload):
		m.upload()
	case key.Matches(msg, m.keys.Revert):
		m.report(c.RevertSettings(), "Reverted to the last uploaded copy", "Nothing to revert")
	}
}

// finishModal applies a closed modal's result.
func (m *Model) finishModal(closed Modal) {
	if m.sess == nil {
		return
	}
	c := m.sess.Controls()

	switch md := closed.(type) {
	case *confirmModal:
		if md.submitted && md.action == confirmDelete {
			name := c.CurrentSlot()
			m.report(c.DeleteSlot(), "Deleted "+quoteOr(name, "slot"), "Delete failed")
		}
	case *promptModal:
		if !md.submitted {
			return
		}
		value := md.Value()
		switch md.action {
		case promptRename:
			m.report(c.Rename(value), "Renamed to "+quoteOr(value, ""), "Rename failed")
		case promptImportSlot:
			m.report(c.ImportSlot(value), "Imported "+quoteOr(c.CurrentSlot(), "slot"), "Import rejected")
		case promptImportDB:
			m.report(c.ImportDB(value), "Imported database", "Import rejected")
		case promptGiveControl:
			m.giveControl(value)
		}
	}
}

func (m *Model) upload() {
	ctx, cancel := context.WithTimeout(m.ctx, UploadTimeout)
	defer cancel()
	if err := m.sess.Controls().UploadSettings(ctx); err != nil {
		m.setFlash("Upload failed: "+err.Error(), true)
		return
	}
	m.setFlash("Uploading...", false)
}

func (m *Model) giveControl(to string) {
	ctx, cancel := context.WithTimeout(m.ctx, UploadTimeout)
	defer cancel()
	if err := m.sess.GiveControl(ctx, to); err != nil {
		m.setFlash("Give control failed: "+err.Error(), true)
		return
	}
	if to == "" {
		m.setFlash("Took back control", false)
		return
	}
	m.setFlash(to+" can now edit your slots", false)
}

// cyclePlayer moves the reference to the next player whose data has
// arrived, skipping anyone still loading.
func (m *Model) cyclePlayer(delta int) {
	players := m.sess.Pool().Players()
	if len(players) < 2 {
		return
	}
	start := 0
	for i, p := range players {
		if p == m.view.Player {
			start = i
			break
		}
	}
	for step := 1; step < len(players); step++ {
		i := ((start+delta*step)%len(players) + len(players)) % len(players)
		if m.sess.Controls().SetReference(players[i]) == nil {
			m.restored = true
			return
		}
	}
	m.setFlash("No other player has loaded yet", true)
}

func (m *Model) switchPlayer(player string) {
	if err := m.sess.Controls().SetReference(player); err != nil {
		m.setFlash(err.Error(), true)
	}
}

func (m *Model) editable() bool {
	if !m.view.CanEdit {
		m.setFlash("Read only: "+m.view.Player+" has not given you control", true)
		return false
	}
	return true
}

func (m *Model) report(ok bool, success, failure string) {
	if ok {
		m.setFlash(success, false)
		return
	}
	m.setFlash(failure, true)
}

func quoteOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return fmt.Sprintf("%q", name)
}
