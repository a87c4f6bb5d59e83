package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/slots"
)

// Version is the current wire format version.
const Version = 1

// ErrMalformed wraps every decode failure.
var ErrMalformed = errors.New("codec: malformed data")

// Database is everything one player stores: the slot table and the global
// settings. Its JSON form is what the transport carries and what capacity is
// measured against.
type Database struct {
	Version int             `json:"version"`
	Slots   []slots.Slot    `json:"slots"`
	Globals globals.Globals `json:"globals"`
}

// NewDatabase builds a database at the current version.
func NewDatabase(table []slots.Slot, g globals.Globals) Database {
	return Database{Version: Version, Slots: table, Globals: g}
}

// Clone returns a deep copy.
func (d Database) Clone() Database {
	out := Database{Version: d.Version, Globals: d.Globals}
	if len(d.Slots) > 0 {
		out.Slots = make([]slots.Slot, len(d.Slots))
		for i, s := range d.Slots {
			out.Slots[i] = s.Clone()
		}
	}
	return out
}

// Equal compares slot order, names, payloads and globals. Version is not
// compared.
func (d Database) Equal(o Database) bool {
	if d.Globals != o.Globals || len(d.Slots) != len(o.Slots) {
		return false
	}
	for i := range d.Slots {
		if !d.Slots[i].Equal(o.Slots[i]) {
			return false
		}
	}
	return true
}

// Marshal encodes the wire form. Output is deterministic for equal input.
func Marshal(d Database) ([]byte, error) {
	if d.Version == 0 {
		d.Version = Version
	}
	if d.Slots == nil {
		d.Slots = []slots.Slot{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal database: %w", err)
	}
	return b, nil
}

// Size returns the wire size of d in bytes.
func Size(d Database) (int, error) {
	b, err := Marshal(d)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Unmarshal decodes and fully validates the wire form. Nothing partial is
// ever returned.
func Unmarshal(data []byte) (Database, error) {
	if err := validate(databaseSchema, data); err != nil {
		return Database{}, err
	}
	var d Database
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return Database{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d.Version > Version {
		return Database{}, fmt.Errorf("%w: version %d is newer than %d", ErrMalformed, d.Version, Version)
	}
	if err := checkSlots(d.Slots); err != nil {
		return Database{}, err
	}
	return d, nil
}

func checkSlots(list []slots.Slot) error {
	seen := make(map[string]struct{}, len(list))
	for _, s := range list {
		if err := checkSlot(s); err != nil {
			return err
		}
		if _, dup := seen[s.Name]; dup {
			return fmt.Errorf("%w: duplicate slot name %q", ErrMalformed, s.Name)
		}
		seen[s.Name] = struct{}{}
	}
	return nil
}

func checkSlot(s slots.Slot) error {
	if !slots.ValidName(s.Name) {
		return fmt.Errorf("%w: invalid slot name %q", ErrMalformed, s.Name)
	}
	return nil
}
