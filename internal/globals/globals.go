// Package globals holds the player-wide preferences that sit beside the slot
// table. The key set is closed and every key has a fixed value kind, so an
// unknown key or a mistyped value is rejected instead of stored.
package globals

import (
	"fmt"
	"strings"

	"github.com/openflight/hangar/internal/slots"
)

// Key names one player-wide setting.
type Key int

const (
	// SlotToLoadByDefault is the slot applied when the player joins.
	SlotToLoadByDefault Key = iota + 1
	// UseWorldDefaultsWhenLoading applies the world's defaults on join instead
	// of a personal slot.
	UseWorldDefaultsWhenLoading
)

// Keys lists every known key.
func Keys() []Key {
	return []Key{SlotToLoadByDefault, UseWorldDefaultsWhenLoading}
}

func (k Key) String() string {
	switch k {
	case SlotToLoadByDefault:
		return "slotToLoadByDefault"
	case UseWorldDefaultsWhenLoading:
		return "useWorldDefaultsWhenLoading"
	default:
		return fmt.Sprintf("Key(%d)", int(k))
	}
}

// Kind is the value kind the key accepts.
func (k Key) Kind() slots.Kind {
	switch k {
	case SlotToLoadByDefault:
		return slots.KindText
	case UseWorldDefaultsWhenLoading:
		return slots.KindBool
	default:
		return slots.KindInvalid
	}
}

// ParseKey accepts the canonical key name, case-insensitively.
func ParseKey(s string) (Key, error) {
	trimmed := strings.TrimSpace(s)
	for _, k := range Keys() {
		if strings.EqualFold(trimmed, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown global setting %q", s)
}

// Globals is the typed global settings map.
type Globals struct {
	SlotToLoadByDefault         string `json:"slot_to_load_by_default"`
	UseWorldDefaultsWhenLoading bool   `json:"use_world_defaults_when_loading"`
}

// Defaults returns the values a fresh player starts with.
func Defaults() Globals {
	return Globals{UseWorldDefaultsWhenLoading: true}
}

// Change reports which keys a Set actually modified.
type Change struct {
	SlotToLoadByDefault         bool
	UseWorldDefaultsWhenLoading bool
}

// Any reports whether anything changed.
func (c Change) Any() bool {
	return c.SlotToLoadByDefault || c.UseWorldDefaultsWhenLoading
}

// Get reads a key.
func (g Globals) Get(key Key) (slots.Value, bool) {
	switch key {
	case SlotToLoadByDefault:
		return slots.Text(g.SlotToLoadByDefault), true
	case UseWorldDefaultsWhenLoading:
		return slots.Bool(g.UseWorldDefaultsWhenLoading), true
	default:
		return slots.Value{}, false
	}
}

// Set writes a key. Choosing an explicit default slot turns off world
// defaults so the two never contradict each other. ok is false for unknown
// keys and kind mismatches, in which case g is untouched.
func (g *Globals) Set(key Key, v slots.Value) (Change, bool) {
	if key.Kind() == slots.KindInvalid || v.Kind() != key.Kind() {
		return Change{}, false
	}
	var c Change
	switch key {
	case SlotToLoadByDefault:
		if g.SlotToLoadByDefault != v.Text() {
			g.SlotToLoadByDefault = v.Text()
			c.SlotToLoadByDefault = true
		}
		if g.UseWorldDefaultsWhenLoading {
			g.UseWorldDefaultsWhenLoading = false
			c.UseWorldDefaultsWhenLoading = true
		}
	case UseWorldDefaultsWhenLoading:
		if g.UseWorldDefaultsWhenLoading != v.Bool() {
			g.UseWorldDefaultsWhenLoading = v.Bool()
			c.UseWorldDefaultsWhenLoading = true
		}
	}
	return c, true
}
