package slots

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength bounds slot names in runes.
const MaxNameLength = 64

// Slot is one named, saved set of tunables.
type Slot struct {
	Name    string  `json:"name"`
	Payload Payload `json:"settings"`
}

// Clone returns a deep copy.
func (s Slot) Clone() Slot {
	return Slot{Name: s.Name, Payload: s.Payload.Clone()}
}

// Equal compares name and payload.
func (s Slot) Equal(o Slot) bool {
	return s.Name == o.Name && s.Payload.Equal(o.Payload)
}

// Table is the ordered, uniquely named slot collection owned by one store.
// Every method resolves to an existing slot or the empty sentinel name; none
// of them panic on out-of-range input.
type Table struct {
	slots []Slot
}

// NewTable builds a table from slots, skipping invalid or duplicate names.
func NewTable(slots []Slot) *Table {
	t := &Table{}
	for _, s := range slots {
		if !ValidName(s.Name) || t.Index(s.Name) >= 0 {
			continue
		}
		t.slots = append(t.slots, s.Clone())
	}
	return t
}

// ValidName reports whether name can identify a slot.
func ValidName(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// Len returns the slot count.
func (t *Table) Len() int { return len(t.slots) }

// Slots returns a deep copy of the slots in order.
func (t *Table) Slots() []Slot {
	if len(t.slots) == 0 {
		return nil
	}
	out := make([]Slot, len(t.slots))
	for i, s := range t.slots {
		out[i] = s.Clone()
	}
	return out
}

// Clone returns an independent table.
func (t *Table) Clone() *Table {
	return &Table{slots: t.Slots()}
}

// Equal compares order, names and payloads.
func (t *Table) Equal(o *Table) bool {
	if t.Len() != o.Len() {
		return false
	}
	for i := range t.slots {
		if !t.slots[i].Equal(o.slots[i]) {
			return false
		}
	}
	return true
}

// Name returns the slot name at index, clamped into [0, Len()-1]. An empty
// table yields "".
func (t *Table) Name(index int) string {
	if len(t.slots) == 0 {
		return ""
	}
	if index < 0 {
		index = 0
	}
	if index >= len(t.slots) {
		index = len(t.slots) - 1
	}
	return t.slots[index].Name
}

// Index returns the position of name, or -1.
func (t *Table) Index(name string) int {
	for i, s := range t.slots {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Get returns a copy of the named slot.
func (t *Table) Get(name string) (Slot, bool) {
	i := t.Index(name)
	if i < 0 {
		return Slot{}, false
	}
	return t.slots[i].Clone(), true
}

// Validate returns name when it still exists, otherwise the first slot, or
// "" for an empty table.
func (t *Table) Validate(name string) string {
	if t.Index(name) >= 0 {
		return name
	}
	return t.Name(0)
}

// Put inserts or overwrites. A blank name is replaced by the next free
// "Slot N" name.
func (t *Table) Put(name string, payload Payload) (string, bool) {
	if strings.TrimSpace(name) == "" {
		name = t.nextAutoName()
	}
	if !ValidName(name) {
		return "", false
	}
	if i := t.Index(name); i >= 0 {
		t.slots[i].Payload = payload.Clone()
		return name, true
	}
	t.slots = append(t.slots, Slot{Name: name, Payload: payload.Clone()})
	return name, true
}

// New appends an auto-named slot.
func (t *Table) New(payload Payload) (string, bool) {
	return t.Put("", payload)
}

// Rename changes a slot's name in place. Renaming onto another existing slot
// fails; renaming a slot to its own name succeeds without change.
func (t *Table) Rename(oldName, newName string) bool {
	i := t.Index(oldName)
	if i < 0 || !ValidName(newName) {
		return false
	}
	if j := t.Index(newName); j >= 0 && j != i {
		return false
	}
	t.slots[i].Name = newName
	return true
}

// Delete removes a slot.
func (t *Table) Delete(name string) bool {
	i := t.Index(name)
	if i < 0 {
		return false
	}
	t.slots = append(t.slots[:i], t.slots[i+1:]...)
	return true
}

// Duplicate copies a slot's payload directly after it under a unique name.
func (t *Table) Duplicate(name string) (string, bool) {
	i := t.Index(name)
	if i < 0 {
		return "", false
	}
	dupName := t.UniqueName(name)
	if !ValidName(dupName) {
		return "", false
	}
	dup := Slot{Name: dupName, Payload: t.slots[i].Payload.Clone()}
	t.slots = append(t.slots, Slot{})
	copy(t.slots[i+2:], t.slots[i+1:])
	t.slots[i+1] = dup
	return dupName, true
}

// UniqueName returns base if unused, else "base (2)", "base (3)" and so on.
// Long bases are shortened so the suffix still fits MaxNameLength.
func (t *Table) UniqueName(base string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return t.nextAutoName()
	}
	if t.Index(base) < 0 && ValidName(base) {
		return base
	}
	for n := 2; ; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate := truncateRunes(base, MaxNameLength-len(suffix)) + suffix
		if t.Index(candidate) < 0 {
			return candidate
		}
	}
}

func (t *Table) nextAutoName() string {
	for n := len(t.slots) + 1; ; n++ {
		candidate := fmt.Sprintf("Slot %d", n)
		if t.Index(candidate) < 0 {
			return candidate
		}
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
