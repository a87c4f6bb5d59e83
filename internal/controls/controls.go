// Package controls is the slot panel's view over the stores: the local
// player's store, the store currently being looked at (the reference) and
// the slot selected in it.
//
// Edit rights are never cached. Every mutating call goes through the
// reference store, which re-checks ownership itself.
package controls

import (
	"context"
	"errors"
	"strings"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/events"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/pool"
	"github.com/openflight/hangar/internal/slots"
	"github.com/openflight/hangar/internal/store"
)

var (
	ErrUnknownPlayer  = errors.New("controls: unknown player")
	ErrNotInitialized = errors.New("controls: store has not received data yet")
)

// Controls drives one settings panel.
type Controls struct {
	pool    *pool.Pool
	local   *store.Store
	ref     *store.Store
	current string

	localHandles []events.Handle
	refHandles   []events.Handle
}

// New binds a panel to the viewer's store, joining it if needed.
func New(p *pool.Pool) *Controls {
	c := &Controls{pool: p}
	c.local = p.Join(p.Viewer())
	c.ref = c.local
	c.localHandles = []events.Handle{
		c.local.On(events.OnLocalDataReady, c.initialJoin),
	}
	return c
}

// Close drops all event subscriptions.
func (c *Controls) Close() {
	for _, h := range c.localHandles {
		c.local.Off(h)
	}
	c.localHandles = nil
	c.detach()
}

// Reference returns the store being viewed.
func (c *Controls) Reference() *store.Store { return c.ref }

// Local returns the viewer's store.
func (c *Controls) Local() *store.Store { return c.local }

// CurrentSlot returns the selected slot name, possibly "".
func (c *Controls) CurrentSlot() string { return c.current }

// IsLocal reports whether the viewer is looking at their own store.
func (c *Controls) IsLocal() bool { return c.ref == c.local }

func (c *Controls) initialJoin() {
	if c.ref == c.local {
		c.current = c.local.GetDefaultSlot()
	}
}

// SetReference switches the panel to player's store. Uninitialized stores
// are refused and the selection resets to the first slot.
func (c *Controls) SetReference(player string) error {
	s, ok := c.pool.Get(player)
	if !ok {
		return ErrUnknownPlayer
	}
	if s == c.ref {
		return nil
	}
	if !s.IsInitialized() {
		glog.Warningf("controls: store for %s is not initialized, cannot set as reference", player)
		return ErrNotInitialized
	}
	c.detach()
	c.ref = s
	c.current = s.GetSlotName(0)
	if s != c.local {
		c.refHandles = []events.Handle{
			s.On(events.OnTornDown, c.referenceGone),
		}
	}
	return nil
}

func (c *Controls) detach() {
	if c.ref == nil {
		return
	}
	for _, h := range c.refHandles {
		c.ref.Off(h)
	}
	c.refHandles = nil
}

func (c *Controls) referenceGone() {
	glog.Infof("controls: reference player %s left, returning to local store", c.ref.Player())
	c.detach()
	c.ref = c.local
	c.current = c.local.GetSlotName(0)
}

// UploadSettings publishes the viewer's store.
func (c *Controls) UploadSettings(ctx context.Context) error {
	return c.local.UploadSettings(ctx)
}

// RevertSettings discards unpublished local changes.
func (c *Controls) RevertSettings() bool {
	ok := c.local.RevertSettings()
	c.current = c.ref.ValidateSlot(c.current)
	return ok
}

// Save writes the viewer's live configuration into the selected slot. An
// empty selection creates a new auto-named slot.
func (c *Controls) Save() bool {
	payload, ok := c.local.CaptureLive()
	if !ok {
		return false
	}
	name, ok := c.ref.SaveSlotPayload(payload, c.current)
	if ok {
		c.current = name
	}
	return ok
}

// Load applies the selected slot to the viewer's live configuration. Slots
// of other players can be tried on without copying them.
func (c *Controls) Load() bool {
	if c.IsLocal() {
		_, ok := c.local.LoadSlot(c.current)
		return ok
	}
	payload, ok := c.ref.FetchSlot(c.current)
	if !ok {
		return false
	}
	return c.local.ApplyPayload(payload)
}

// Rename renames the selected slot.
func (c *Controls) Rename(newName string) bool {
	newName = strings.TrimSpace(newName)
	if !c.ref.RenameSlot(c.current, newName) {
		return false
	}
	c.current = newName
	return true
}

// NewSlot creates and selects a slot holding the world defaults.
func (c *Controls) NewSlot() bool {
	name, ok := c.ref.NewSlot()
	if ok {
		c.current = name
	}
	return ok
}

// DeleteSlot removes the selected slot and moves the selection.
func (c *Controls) DeleteSlot() bool {
	if !c.ref.DeleteSlot(c.current) {
		return false
	}
	c.current = c.ref.ValidateSlot(c.current)
	return true
}

// PreviousSlot moves the selection up, stopping at the first slot.
func (c *Controls) PreviousSlot() {
	c.step(-1)
}

// NextSlot moves the selection down, stopping at the last slot.
func (c *Controls) NextSlot() {
	c.step(1)
}

func (c *Controls) step(delta int) {
	next := c.ref.GetSlotName(c.ref.GetSlotIndex(c.current) + delta)
	c.current = c.ref.ValidateSlot(next)
}

// Select picks a slot by name. Unknown names fall back like ValidateSlot.
func (c *Controls) Select(name string) {
	c.current = c.ref.ValidateSlot(name)
}

// SetAsDefaultSlot makes the selected slot load on join. This turns off
// world defaults.
func (c *Controls) SetAsDefaultSlot() bool {
	if !c.ref.CanEdit() {
		return false
	}
	if !c.ref.SetGlobalSetting(globals.SlotToLoadByDefault, slots.Text(c.current)) {
		return false
	}
	return c.ref.SetGlobalSetting(globals.UseWorldDefaultsWhenLoading, slots.Bool(false))
}

// SetUseWorldDefaults toggles loading world defaults on join.
func (c *Controls) SetUseWorldDefaults(on bool) bool {
	return c.ref.SetGlobalSetting(globals.UseWorldDefaultsWhenLoading, slots.Bool(on))
}

// Duplicate copies the selected slot. Slots of other players are always
// copied into the viewer's own store under the same or a unique name.
func (c *Controls) Duplicate() bool {
	if !c.IsLocal() {
		payload, ok := c.ref.FetchSlot(c.current)
		if !ok {
			return false
		}
		_, ok = c.local.AddSlot(c.current, payload)
		return ok
	}
	name, ok := c.ref.DuplicateSlot(c.current)
	if ok {
		c.current = name
	}
	return ok
}

// ImportSlot imports one slot into the viewer's store and selects it.
func (c *Controls) ImportSlot(export string) bool {
	if strings.TrimSpace(export) == "" {
		return false
	}
	c.returnToLocal()
	name, ok := c.local.ImportSlot(export)
	if ok {
		c.current = name
	}
	return ok
}

// ImportDB replaces the viewer's store from an export string.
func (c *Controls) ImportDB(export string) bool {
	if strings.TrimSpace(export) == "" {
		return false
	}
	ok := c.local.ImportDB(export)
	c.returnToLocal()
	c.current = c.local.ValidateSlot(c.current)
	return ok
}

func (c *Controls) returnToLocal() {
	if c.IsLocal() {
		return
	}
	if err := c.SetReference(c.local.Player()); err != nil {
		c.detach()
		c.ref = c.local
		c.current = c.local.ValidateSlot("")
	}
}

// View is everything the panel renders.
type View struct {
	Player           string
	IsLocal          bool
	Initialized      bool
	CanEdit          bool
	CurrentSlot      string
	CurrentIndex     int
	Slots            []string
	DefaultSlot      string
	UseWorldDefaults bool
	StorageInfo      string
	StorageFull      bool
	Diverged         bool
	SlotExport       string
	DBExport         string
}

// Snapshot re-reads every getter of the reference store.
func (c *Controls) Snapshot() View {
	s := c.ref
	v := View{
		Player:       s.Player(),
		IsLocal:      c.IsLocal(),
		Initialized:  s.IsInitialized(),
		CanEdit:      s.CanEdit(),
		CurrentSlot:  c.current,
		CurrentIndex: s.GetSlotIndex(c.current),
		DefaultSlot:  s.GetDefaultSlot(),
		StorageInfo:  s.GetStorageInfo(),
		StorageFull:  s.StorageFull(),
		Diverged:     s.Diverged(),
	}
	for _, slot := range s.Slots() {
		v.Slots = append(v.Slots, slot.Name)
	}
	if val, ok := s.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading); ok {
		v.UseWorldDefaults = val.Bool()
	}
	if export, ok := s.GetSlotExport(c.current); ok {
		v.SlotExport = export
	}
	if export, ok := s.GetDBExport(); ok {
		v.DBExport = export
	}
	return v
}
