package store

import "github.com/openflight/hangar/internal/slots"

// Live is the player's active flight configuration. Loading a slot applies
// its payload here and saving a slot captures from here.
type Live interface {
	Capture() slots.Payload
	Apply(slots.Payload)
}

// MemoryLive keeps the active configuration in memory.
type MemoryLive struct {
	payload slots.Payload
	applied int
}

// NewMemoryLive starts from initial.
func NewMemoryLive(initial slots.Payload) *MemoryLive {
	return &MemoryLive{payload: initial.Clone()}
}

// Capture returns a copy of the active configuration.
func (m *MemoryLive) Capture() slots.Payload { return m.payload.Clone() }

// Apply overlays p onto the active configuration. Keys missing from p keep
// their current value.
func (m *MemoryLive) Apply(p slots.Payload) {
	for _, e := range p.Entries() {
		m.payload.Set(e.Key, e.Value)
	}
	m.applied++
}

// Set changes one tunable, as the flight controls would.
func (m *MemoryLive) Set(key string, v slots.Value) {
	m.payload.Set(key, v)
}

// Applied counts Apply calls.
func (m *MemoryLive) Applied() int { return m.applied }
