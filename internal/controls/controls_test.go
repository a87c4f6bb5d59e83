package controls

import (
	"errors"
	"testing"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/pool"
	"github.com/openflight/hangar/internal/slots"
	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/worlddefaults"
)

func setup(t *testing.T) (*Controls, *pool.Pool, *store.MemoryLive) {
	t.Helper()
	live := store.NewMemoryLive(worlddefaults.Builtin().Payload)
	p := pool.New(pool.Options{Viewer: "me", Ceiling: 8192, Live: live})
	c := New(p)
	p.Deliver("me", nil)
	return c, p, live
}

func remoteDB(t *testing.T, names ...string) []byte {
	t.Helper()
	list := make([]slots.Slot, len(names))
	for i, n := range names {
		list[i] = slots.Slot{Name: n, Payload: slots.NewPayload(
			slots.Entry{Key: "flapStrengthBase", Value: slots.Number(float64(300 + i))},
		)}
	}
	data, err := codec.Marshal(codec.NewDatabase(list, globals.Defaults()))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return data
}

func TestControls_InitialJoinSelectsDefault(t *testing.T) {
	c, _, _ := setup(t)

	if got := c.CurrentSlot(); got != worlddefaults.DefaultSlotName {
		t.Fatalf("CurrentSlot = %q, want %q", got, worlddefaults.DefaultSlotName)
	}
	if !c.Snapshot().UseWorldDefaults {
		t.Fatalf("UseWorldDefaults = false on fresh store")
	}
}

func TestControls_NavigationClamps(t *testing.T) {
	c, _, _ := setup(t)
	c.NewSlot()
	c.NewSlot()
	c.NewSlot()

	c.Select("Slot 1")
	c.PreviousSlot()
	if got := c.CurrentSlot(); got != "Slot 1" {
		t.Fatalf("PreviousSlot at top = %q, want Slot 1", got)
	}
	c.NextSlot()
	c.NextSlot()
	c.NextSlot()
	if got := c.CurrentSlot(); got != "Slot 3" {
		t.Fatalf("NextSlot at bottom = %q, want Slot 3", got)
	}

	c.Select("missing")
	if got := c.CurrentSlot(); got != "Slot 1" {
		t.Fatalf("Select(missing) = %q, want Slot 1", got)
	}
}

func TestControls_SaveRenameDelete(t *testing.T) {
	c, _, live := setup(t)
	c.NewSlot()

	live.Set("glideControl", slots.Number(3))
	if !c.Save() {
		t.Fatalf("Save = false")
	}
	if !c.Rename("  Cruise ") || c.CurrentSlot() != "Cruise" {
		t.Fatalf("Rename: current = %q", c.CurrentSlot())
	}

	live.Set("glideControl", slots.Number(1))
	if !c.Load() {
		t.Fatalf("Load = false")
	}
	if v, _ := live.Capture().Get("glideControl"); v.Number() != 3 {
		t.Fatalf("glideControl = %v, want 3", v)
	}

	if !c.DeleteSlot() {
		t.Fatalf("DeleteSlot = false")
	}
	if got := c.CurrentSlot(); got != "" {
		t.Fatalf("CurrentSlot after deleting last = %q, want empty", got)
	}
	if c.DeleteSlot() {
		t.Fatalf("DeleteSlot on empty table = true")
	}
}

func TestControls_SetAsDefaultSlot(t *testing.T) {
	c, _, _ := setup(t)
	c.NewSlot()

	if !c.SetAsDefaultSlot() {
		t.Fatalf("SetAsDefaultSlot = false")
	}
	v := c.Snapshot()
	if v.UseWorldDefaults || v.DefaultSlot != "Slot 1" {
		t.Fatalf("view = %+v, want default Slot 1 without world defaults", v)
	}

	if !c.SetUseWorldDefaults(true) {
		t.Fatalf("SetUseWorldDefaults = false")
	}
	if got := c.Snapshot().DefaultSlot; got != worlddefaults.DefaultSlotName {
		t.Fatalf("DefaultSlot = %q, want world defaults", got)
	}
}

func TestControls_SetReferenceRules(t *testing.T) {
	c, p, _ := setup(t)
	p.Join("pending")

	if err := c.SetReference("ghost"); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("SetReference(ghost) = %v, want ErrUnknownPlayer", err)
	}
	if err := c.SetReference("pending"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("SetReference(pending) = %v, want ErrNotInitialized", err)
	}
	if !c.IsLocal() {
		t.Fatalf("reference changed after refusal")
	}

	p.Deliver("amy", remoteDB(t, "Loops", "Dives"))
	if err := c.SetReference("amy"); err != nil {
		t.Fatalf("SetReference(amy): %v", err)
	}
	v := c.Snapshot()
	if v.IsLocal || v.CanEdit || v.CurrentSlot != "Loops" {
		t.Fatalf("view = %+v", v)
	}
	if c.Rename("Mine") || c.NewSlot() || c.DeleteSlot() || c.SetAsDefaultSlot() {
		t.Fatalf("mutation accepted on foreign store")
	}
}

func TestControls_DuplicateForeignCopiesToLocal(t *testing.T) {
	c, p, live := setup(t)
	p.Deliver("amy", remoteDB(t, "Loops"))
	if err := c.SetReference("amy"); err != nil {
		t.Fatalf("SetReference: %v", err)
	}

	if !c.Load() {
		t.Fatalf("Load foreign = false")
	}
	if v, _ := live.Capture().Get("flapStrengthBase"); v.Number() != 300 {
		t.Fatalf("flapStrengthBase = %v, want 300", v)
	}

	if !c.Duplicate() || !c.Duplicate() {
		t.Fatalf("Duplicate = false")
	}
	local := c.Local()
	if local.GetSlotIndex("Loops") != 0 || local.GetSlotIndex("Loops (2)") != 1 {
		t.Fatalf("local slots = %v", local.Slots())
	}
	if s, _ := p.Get("amy"); len(s.Slots()) != 1 {
		t.Fatalf("foreign store changed")
	}
}

func TestControls_ReferenceTornDownFallsBack(t *testing.T) {
	c, p, _ := setup(t)
	c.NewSlot()
	p.Deliver("amy", remoteDB(t, "Loops"))
	if err := c.SetReference("amy"); err != nil {
		t.Fatalf("SetReference: %v", err)
	}

	p.Leave("amy")
	if !c.IsLocal() {
		t.Fatalf("reference not reset after player left")
	}
	if got := c.CurrentSlot(); got != "Slot 1" {
		t.Fatalf("CurrentSlot = %q, want Slot 1", got)
	}
}

func TestControls_ImportReturnsToLocal(t *testing.T) {
	c, p, _ := setup(t)
	c.NewSlot()
	export, ok := c.Local().GetSlotExport("Slot 1")
	if !ok {
		t.Fatalf("GetSlotExport = false")
	}
	p.Deliver("amy", remoteDB(t, "Loops"))
	c.SetReference("amy")

	if !c.ImportSlot(export) {
		t.Fatalf("ImportSlot = false")
	}
	if !c.IsLocal() || c.CurrentSlot() != "Slot 1 (2)" {
		t.Fatalf("local=%v current=%q", c.IsLocal(), c.CurrentSlot())
	}
	if c.ImportSlot("   ") || c.ImportDB("") {
		t.Fatalf("blank import accepted")
	}

	dbExport, _ := c.Local().GetDBExport()
	c.DeleteSlot()
	c.Select("Slot 1")
	c.DeleteSlot()
	if !c.ImportDB(dbExport) {
		t.Fatalf("ImportDB = false")
	}
	if got := len(c.Snapshot().Slots); got != 2 {
		t.Fatalf("slots after ImportDB = %d, want 2", got)
	}
}
