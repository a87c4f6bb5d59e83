package slots

import (
	"encoding/json"
	"fmt"
)

// Entry is one keyed tunable inside a Payload.
type Entry struct {
	Key   string
	Value Value
}

// Payload is an ordered set of tunables with unique keys. The zero value is
// an empty payload ready to use.
type Payload struct {
	entries []Entry
}

// NewPayload builds a payload from entries. Later duplicates overwrite
// earlier ones in place so key order follows first appearance.
func NewPayload(entries ...Entry) Payload {
	var p Payload
	for _, e := range entries {
		p.Set(e.Key, e.Value)
	}
	return p
}

// Len returns the number of tunables.
func (p Payload) Len() int { return len(p.entries) }

// Get looks up a tunable by key.
func (p Payload) Get(key string) (Value, bool) {
	for _, e := range p.entries {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// Set overwrites an existing key in place or appends a new one.
func (p *Payload) Set(key string, v Value) {
	for i := range p.entries {
		if p.entries[i].Key == key {
			p.entries[i].Value = v
			return
		}
	}
	p.entries = append(p.entries, Entry{Key: key, Value: v})
}

// Keys lists keys in payload order.
func (p Payload) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (p Payload) Entries() []Entry {
	if len(p.entries) == 0 {
		return nil
	}
	dup := make([]Entry, len(p.entries))
	copy(dup, p.entries)
	return dup
}

// Clone returns an independent copy.
func (p Payload) Clone() Payload {
	return Payload{entries: p.Entries()}
}

// Equal compares keys, order and values.
func (p Payload) Equal(o Payload) bool {
	if len(p.entries) != len(o.entries) {
		return false
	}
	for i := range p.entries {
		if p.entries[i].Key != o.entries[i].Key || !p.entries[i].Value.Equal(o.entries[i].Value) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the payload as [[key, value], ...] so order survives.
func (p Payload) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, len(p.entries))
	for i, e := range p.entries {
		pairs[i] = [2]any{e.Key, e.Value}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON reads the pair form. Duplicate keys are rejected.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var pairs [][2]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	out := Payload{entries: make([]Entry, 0, len(pairs))}
	seen := make(map[string]struct{}, len(pairs))
	for _, pair := range pairs {
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("payload key: %w", err)
		}
		if key == "" {
			return fmt.Errorf("payload key is empty")
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("duplicate payload key %q", key)
		}
		seen[key] = struct{}{}
		var v Value
		if err := json.Unmarshal(pair[1], &v); err != nil {
			return fmt.Errorf("payload %q: %w", key, err)
		}
		out.entries = append(out.entries, Entry{Key: key, Value: v})
	}
	*p = out
	return nil
}
