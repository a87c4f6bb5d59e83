package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/capacity"
	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/events"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/reconcile"
	"github.com/openflight/hangar/internal/slots"
	"github.com/openflight/hangar/internal/worlddefaults"
)

var (
	ErrNotInitialized = errors.New("store: no data received yet")
	ErrNotEditable    = errors.New("store: not editable by this player")
	ErrNoPublisher    = errors.New("store: no publisher configured")
)

// Publisher hands a serialized database to the replication transport.
type Publisher interface {
	Publish(ctx context.Context, player string, data []byte) error
}

// Options configure a Store.
type Options struct {
	Player string
	// Ceiling is the transport payload limit in bytes.
	Ceiling int
	World   worlddefaults.Defaults
	// Live is nil for stores that belong to other players.
	Live Live
	// CanEdit is asked on every mutation. Nil means never editable.
	CanEdit   func() bool
	Publisher Publisher
}

// Store is one player's settings store.
type Store struct {
	player    string
	world     worlddefaults.Defaults
	live      Live
	canEdit   func() bool
	publisher Publisher

	registry   events.Registry
	tracker    *capacity.Tracker
	reconciler *reconcile.Reconciler

	table       *slots.Table
	globals     globals.Globals
	initialized bool
}

// New builds an uninitialized store. Reads fail until the first ApplyRemote.
func New(opts Options) *Store {
	world := opts.World
	if world.SlotName == "" {
		world = worlddefaults.Builtin()
	}
	s := &Store{
		player:    opts.Player,
		world:     world,
		live:      opts.Live,
		canEdit:   opts.CanEdit,
		publisher: opts.Publisher,
		table:     slots.NewTable(nil),
		globals:   globals.Defaults(),
	}
	s.tracker = capacity.NewTracker(opts.Ceiling, &s.registry)
	s.reconciler = reconcile.New(opts.Player, &s.registry)
	return s
}

// Player returns the owning player's id.
func (s *Store) Player() string { return s.player }

// IsInitialized reports whether the first snapshot has arrived.
func (s *Store) IsInitialized() bool { return s.initialized }

// CanEdit reports whether the viewing player may mutate this store. It is
// evaluated on every call.
func (s *Store) CanEdit() bool { return s.canEdit != nil && s.canEdit() }

// HasLive reports whether this store drives a live configuration.
func (s *Store) HasLive() bool { return s.live != nil }

// Diverged reports whether local data differs from the last remote copy.
func (s *Store) Diverged() bool { return s.reconciler.Diverged() }

// StorageFull reports whether the capacity latch is set.
func (s *Store) StorageFull() bool { return s.tracker.Full() }

// On subscribes fn to kind.
func (s *Store) On(kind events.Kind, fn func()) events.Handle {
	return s.registry.On(kind, fn)
}

// Off removes a subscription.
func (s *Store) Off(h events.Handle) { s.registry.Off(h) }

// Database returns a copy of the local data.
func (s *Store) Database() codec.Database {
	return codec.NewDatabase(s.table.Slots(), s.globals)
}

// Slots returns a copy of the slot table.
func (s *Store) Slots() []slots.Slot { return s.table.Slots() }

// ApplyRemote feeds a snapshot delivered by the replication transport. The
// first call initializes the store (empty or unreadable data starts from
// defaults) and fires OnLocalDataReady. Later calls are reconciled; stores
// this player cannot edit adopt the remote data outright.
func (s *Store) ApplyRemote(data []byte) {
	remote, err := decodeRemote(data)
	if err != nil {
		if s.initialized {
			glog.Warningf("store[%s]: ignoring unreadable snapshot: %v", s.player, err)
			return
		}
		glog.Warningf("store[%s]: unreadable first snapshot, starting from defaults: %v", s.player, err)
		remote = defaultDatabase()
	}

	s.reconciler.Observe(remote)

	if !s.initialized {
		s.replace(remote)
		s.initialized = true
		glog.Infof("store[%s]: initialized with %d slots", s.player, s.table.Len())
		s.registry.Emit(events.OnLocalDataReady)
		if s.live != nil {
			s.LoadSlot(s.GetDefaultSlot())
		}
		return
	}

	if !s.CanEdit() {
		s.replace(remote)
		return
	}
	s.reconciler.Evaluate(s.Database())
}

// Teardown marks the store gone. Views referencing it fall back via OnTornDown.
func (s *Store) Teardown() {
	s.initialized = false
	s.registry.Emit(events.OnTornDown)
}

// UploadSettings publishes the local data. Convergence is reported later,
// when the transport delivers the matching snapshot back.
func (s *Store) UploadSettings(ctx context.Context) error {
	if !s.initialized {
		return ErrNotInitialized
	}
	if !s.CanEdit() {
		return ErrNotEditable
	}
	if s.publisher == nil {
		return ErrNoPublisher
	}
	data, err := codec.Marshal(s.Database())
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, s.player, data); err != nil {
		return fmt.Errorf("upload settings: %w", err)
	}
	glog.V(1).Infof("store[%s]: uploaded %d bytes", s.player, len(data))
	return nil
}

// RevertSettings discards local changes and restores the last remote copy.
func (s *Store) RevertSettings() bool {
	if !s.ready("revert") {
		return false
	}
	remote, ok := s.reconciler.Remote()
	if !ok {
		return false
	}
	s.replace(remote)
	return true
}

// GetStorageInfo renders used/total storage.
func (s *Store) GetStorageInfo() string {
	if !s.initialized {
		return "Storage: not loaded"
	}
	return s.tracker.Info()
}

// GetDefaultSlot names the slot applied on join: the world defaults when
// that toggle is set or the chosen slot no longer exists.
func (s *Store) GetDefaultSlot() string {
	if !s.initialized {
		return ""
	}
	if s.globals.UseWorldDefaultsWhenLoading {
		return s.world.SlotName
	}
	if s.table.Index(s.globals.SlotToLoadByDefault) >= 0 {
		return s.globals.SlotToLoadByDefault
	}
	return s.world.SlotName
}

// ValidateSlot returns name if it exists, else a fallback (first slot or "").
func (s *Store) ValidateSlot(name string) string {
	if !s.initialized {
		return ""
	}
	return s.table.Validate(name)
}

// GetSlotName returns the slot at a clamped index.
func (s *Store) GetSlotName(index int) string {
	if !s.initialized {
		return ""
	}
	return s.table.Name(index)
}

// GetSlotIndex returns the index of name or -1.
func (s *Store) GetSlotIndex(name string) int {
	if !s.initialized {
		return -1
	}
	return s.table.Index(name)
}

// SaveSlot captures the live configuration into name.
func (s *Store) SaveSlot(name string) (string, bool) {
	if s.live == nil {
		glog.V(1).Infof("store[%s]: save %q: no live configuration", s.player, name)
		return "", false
	}
	return s.SaveSlotPayload(s.live.Capture(), name)
}

// SaveSlotPayload stores payload under name, inserting or overwriting. A
// blank name is auto-assigned.
func (s *Store) SaveSlotPayload(payload slots.Payload, name string) (string, bool) {
	var saved string
	ok := s.mutate("save", true, func(d *draft) bool {
		var ok bool
		saved, ok = d.table.Put(name, payload)
		return ok
	})
	if !ok {
		return "", false
	}
	return saved, true
}

// LoadSlot returns the named payload and applies it to the live
// configuration when this store has one. The world default slot name loads
// the world defaults unless a real slot shadows it.
func (s *Store) LoadSlot(name string) (slots.Payload, bool) {
	payload, ok := s.FetchSlot(name)
	if !ok {
		return slots.Payload{}, false
	}
	s.ApplyPayload(payload)
	return payload, true
}

// FetchSlot returns a copy of the named payload without applying it.
func (s *Store) FetchSlot(name string) (slots.Payload, bool) {
	if !s.initialized {
		return slots.Payload{}, false
	}
	if slot, ok := s.table.Get(name); ok {
		return slot.Payload, true
	}
	if name == s.world.SlotName {
		return s.world.Payload.Clone(), true
	}
	return slots.Payload{}, false
}

// CaptureLive returns the current live configuration.
func (s *Store) CaptureLive() (slots.Payload, bool) {
	if s.live == nil {
		return slots.Payload{}, false
	}
	return s.live.Capture(), true
}

// ApplyPayload pushes payload into the live configuration.
func (s *Store) ApplyPayload(payload slots.Payload) bool {
	if s.live == nil {
		return false
	}
	s.live.Apply(payload)
	return true
}

// NewSlot appends an auto-named slot holding the world defaults.
func (s *Store) NewSlot() (string, bool) {
	var created string
	ok := s.mutate("new", true, func(d *draft) bool {
		var ok bool
		created, ok = d.table.New(s.world.Payload)
		return ok
	})
	if !ok {
		return "", false
	}
	return created, true
}

// RenameSlot renames oldName. The default slot setting follows the rename.
func (s *Store) RenameSlot(oldName, newName string) bool {
	return s.mutate("rename", false, func(d *draft) bool {
		if !d.table.Rename(oldName, newName) {
			return false
		}
		if d.globals.SlotToLoadByDefault == oldName {
			d.globals.SlotToLoadByDefault = newName
		}
		return true
	})
}

// DeleteSlot removes name. Callers must re-validate any cached slot name.
func (s *Store) DeleteSlot(name string) bool {
	return s.mutate("delete", false, func(d *draft) bool {
		return d.table.Delete(name)
	})
}

// DuplicateSlot copies name under a unique name without applying it.
func (s *Store) DuplicateSlot(name string) (string, bool) {
	var dup string
	ok := s.mutate("duplicate", true, func(d *draft) bool {
		var ok bool
		dup, ok = d.table.Duplicate(name)
		return ok
	})
	if !ok {
		return "", false
	}
	return dup, true
}

// SetGlobalSetting writes one global setting. It is a silent no-op when the
// store is not editable or the value has the wrong kind.
func (s *Store) SetGlobalSetting(key globals.Key, v slots.Value) bool {
	var change globals.Change
	ok := s.mutate("set "+key.String(), false, func(d *draft) bool {
		var ok bool
		change, ok = d.globals.Set(key, v)
		return ok
	})
	if ok && change.UseWorldDefaultsWhenLoading {
		s.registry.Emit(events.UseWorldDefaultsWhenLoadingChanged)
	}
	return ok
}

// GetGlobalSetting reads one global setting. ok is false until initialized.
func (s *Store) GetGlobalSetting(key globals.Key) (slots.Value, bool) {
	if !s.initialized {
		return slots.Value{}, false
	}
	return s.globals.Get(key)
}

// GetSlotExport encodes one slot as an export string.
func (s *Store) GetSlotExport(name string) (string, bool) {
	if !s.initialized {
		return "", false
	}
	slot, ok := s.table.Get(name)
	if !ok {
		return "", false
	}
	out, err := codec.ExportSlot(slot)
	if err != nil {
		glog.Warningf("store[%s]: export %q: %v", s.player, name, err)
		return "", false
	}
	return out, true
}

// GetDBExport encodes the whole table and global settings.
func (s *Store) GetDBExport() (string, bool) {
	if !s.initialized {
		return "", false
	}
	out, err := codec.ExportDatabase(s.Database())
	if err != nil {
		glog.Warningf("store[%s]: export database: %v", s.player, err)
		return "", false
	}
	return out, true
}

// ImportSlot adds a slot from an export string, renaming it if the name is
// taken. Malformed input changes nothing.
func (s *Store) ImportSlot(export string) (string, bool) {
	slot, err := codec.ImportSlot(export)
	if err != nil {
		glog.V(1).Infof("store[%s]: import slot: %v", s.player, err)
		return "", false
	}
	return s.addSlot("import slot", slot.Name, slot.Payload)
}

// AddSlot stores payload under name, or under "name (2)" and so on when
// name is taken. It never overwrites.
func (s *Store) AddSlot(name string, payload slots.Payload) (string, bool) {
	return s.addSlot("add", name, payload)
}

func (s *Store) addSlot(op, name string, payload slots.Payload) (string, bool) {
	var added string
	ok := s.mutate(op, true, func(d *draft) bool {
		var ok bool
		added, ok = d.table.Put(d.table.UniqueName(name), payload)
		return ok
	})
	if !ok {
		return "", false
	}
	return added, true
}

// ImportDB replaces the whole table and global settings from an export
// string. Malformed input changes nothing.
func (s *Store) ImportDB(export string) bool {
	db, err := codec.ImportDatabase(export)
	if err != nil {
		glog.V(1).Infof("store[%s]: import database: %v", s.player, err)
		return false
	}
	var worldChanged bool
	ok := s.mutate("import database", true, func(d *draft) bool {
		worldChanged = d.globals.UseWorldDefaultsWhenLoading != db.Globals.UseWorldDefaultsWhenLoading
		d.table = slots.NewTable(db.Slots)
		d.globals = db.Globals
		return true
	})
	if ok && worldChanged {
		s.registry.Emit(events.UseWorldDefaultsWhenLoadingChanged)
	}
	return ok
}

type draft struct {
	table   *slots.Table
	globals globals.Globals
}

// mutate stages fn on a copy, checks capacity against the staged size and
// commits only if everything passed. Growing writes stay blocked while
// storage is full; other edits only have to fit under the ceiling.
func (s *Store) mutate(op string, grows bool, fn func(d *draft) bool) bool {
	if !s.ready(op) {
		return false
	}
	d := &draft{table: s.table.Clone(), globals: s.globals}
	if !fn(d) {
		glog.V(1).Infof("store[%s]: %s rejected", s.player, op)
		return false
	}
	size, err := codec.Size(codec.NewDatabase(d.table.Slots(), d.globals))
	if err != nil {
		glog.Warningf("store[%s]: %s: %v", s.player, op, err)
		return false
	}
	fits := s.tracker.CheckEdit(size)
	if grows {
		fits = s.tracker.Check(size)
	}
	if !fits {
		if s.table.Len() == 0 {
			// nothing to delete, so the latch would never clear
			s.tracker.Release()
		}
		return false
	}
	s.table, s.globals = d.table, d.globals
	s.tracker.Commit(size)
	s.reconciler.Evaluate(s.Database())
	return true
}

func (s *Store) ready(op string) bool {
	if !s.initialized {
		glog.V(1).Infof("store[%s]: %s before data ready", s.player, op)
		return false
	}
	if !s.CanEdit() {
		glog.V(1).Infof("store[%s]: %s denied", s.player, op)
		return false
	}
	return true
}

// replace swaps in db wholesale and re-evaluates capacity and divergence.
func (s *Store) replace(db codec.Database) {
	worldChanged := s.initialized && s.globals.UseWorldDefaultsWhenLoading != db.Globals.UseWorldDefaultsWhenLoading
	s.table = slots.NewTable(db.Slots)
	s.globals = db.Globals
	size, err := codec.Size(s.Database())
	if err != nil {
		glog.Warningf("store[%s]: size after replace: %v", s.player, err)
	}
	s.tracker.Reset(size)
	s.reconciler.Evaluate(s.Database())
	if worldChanged {
		s.registry.Emit(events.UseWorldDefaultsWhenLoadingChanged)
	}
}

func defaultDatabase() codec.Database {
	return codec.NewDatabase(nil, globals.Defaults())
}

func decodeRemote(data []byte) (codec.Database, error) {
	if len(data) == 0 {
		return defaultDatabase(), nil
	}
	return codec.Unmarshal(data)
}
