package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/events"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/slots"
	"github.com/openflight/hangar/internal/worlddefaults"
)

type loopback struct {
	published [][]byte
	err       error
}

func (l *loopback) Publish(_ context.Context, _ string, data []byte) error {
	if l.err != nil {
		return l.err
	}
	l.published = append(l.published, append([]byte(nil), data...))
	return nil
}

func (l *loopback) last() []byte {
	if len(l.published) == 0 {
		return nil
	}
	return l.published[len(l.published)-1]
}

type fixture struct {
	store    *Store
	live     *MemoryLive
	pub      *loopback
	rec      map[events.Kind]int
	editable bool
}

func newFixture(t *testing.T, ceiling int) *fixture {
	t.Helper()
	f := &fixture{
		live:     NewMemoryLive(worlddefaults.Builtin().Payload),
		pub:      &loopback{},
		rec:      map[events.Kind]int{},
		editable: true,
	}
	f.store = New(Options{
		Player:    "p1",
		Ceiling:   ceiling,
		Live:      f.live,
		CanEdit:   func() bool { return f.editable },
		Publisher: f.pub,
	})
	for _, k := range []events.Kind{
		events.OnLocalDataReady,
		events.UseWorldDefaultsWhenLoadingChanged,
		events.OnRemoteDifferencesDetected,
		events.OnRemoteDifferencesResolved,
		events.OnStorageFull,
		events.OnStorageFree,
		events.OnTornDown,
	} {
		kind := k
		f.store.On(kind, func() { f.rec[kind]++ })
	}
	return f
}

func (f *fixture) ready(t *testing.T) {
	t.Helper()
	f.store.ApplyRemote(nil)
	if !f.store.IsInitialized() {
		t.Fatalf("store not initialized after first snapshot")
	}
}

func bigPayload(n int) slots.Payload {
	return slots.NewPayload(slots.Entry{Key: "notes", Value: slots.Text(strings.Repeat("x", n))})
}

func TestStore_ReadsBeforeReady(t *testing.T) {
	f := newFixture(t, 1000)
	s := f.store

	if _, ok := s.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading); ok {
		t.Fatalf("GetGlobalSetting ok before ready")
	}
	if _, ok := s.NewSlot(); ok {
		t.Fatalf("NewSlot succeeded before ready")
	}
	if got := s.GetSlotIndex("Slot 1"); got != -1 {
		t.Fatalf("GetSlotIndex = %d, want -1", got)
	}
	if got := s.GetStorageInfo(); got != "Storage: not loaded" {
		t.Fatalf("GetStorageInfo = %q", got)
	}
	if err := s.UploadSettings(context.Background()); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("UploadSettings err = %v, want ErrNotInitialized", err)
	}
}

func TestStore_FirstSnapshotFiresReadyAndLoadsDefault(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)

	if f.rec[events.OnLocalDataReady] != 1 {
		t.Fatalf("OnLocalDataReady fired %d times", f.rec[events.OnLocalDataReady])
	}
	if got := f.store.GetDefaultSlot(); got != worlddefaults.DefaultSlotName {
		t.Fatalf("GetDefaultSlot = %q, want world defaults", got)
	}
	if f.live.Applied() != 1 {
		t.Fatalf("live applied %d times, want 1", f.live.Applied())
	}
	v, ok := f.store.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading)
	if !ok || !v.Bool() {
		t.Fatalf("UseWorldDefaultsWhenLoading = (%v, %v), want (true, true)", v, ok)
	}
}

func TestStore_UnreadableFirstSnapshotStartsFromDefaults(t *testing.T) {
	f := newFixture(t, 1000)
	f.store.ApplyRemote([]byte("{not json"))

	if !f.store.IsInitialized() || len(f.store.Slots()) != 0 {
		t.Fatalf("store = %+v, want initialized and empty", f.store.Database())
	}
	if f.rec[events.OnLocalDataReady] != 1 {
		t.Fatalf("OnLocalDataReady fired %d times", f.rec[events.OnLocalDataReady])
	}
}

func TestStore_SlotLifecycle(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store

	name, ok := s.NewSlot()
	if !ok || name != "Slot 1" {
		t.Fatalf("NewSlot = (%q, %v), want (%q, true)", name, ok, "Slot 1")
	}
	if got := s.GetSlotIndex("Slot 1"); got != 0 {
		t.Fatalf("GetSlotIndex = %d, want 0", got)
	}

	if !s.RenameSlot("Slot 1", "Loop Build") {
		t.Fatalf("RenameSlot = false")
	}
	if got := s.GetSlotName(0); got != "Loop Build" {
		t.Fatalf("GetSlotName(0) = %q", got)
	}

	if !s.DeleteSlot("Loop Build") {
		t.Fatalf("DeleteSlot = false")
	}
	if got := s.ValidateSlot("Loop Build"); got != "" {
		t.Fatalf("ValidateSlot = %q, want empty sentinel", got)
	}
	if s.DeleteSlot("Loop Build") {
		t.Fatalf("second DeleteSlot = true")
	}
}

func TestStore_RenameCollisionAndDefaultFollows(t *testing.T) {
	f := newFixture(t, 2000)
	f.ready(t)
	s := f.store
	s.NewSlot()
	s.NewSlot()
	s.SetGlobalSetting(globals.SlotToLoadByDefault, slots.Text("Slot 1"))

	if s.RenameSlot("Slot 1", "Slot 2") {
		t.Fatalf("RenameSlot onto existing slot succeeded")
	}
	if !s.RenameSlot("Slot 1", "Cruise") {
		t.Fatalf("RenameSlot = false")
	}
	if got := s.GetDefaultSlot(); got != "Cruise" {
		t.Fatalf("GetDefaultSlot = %q, want Cruise", got)
	}
}

func TestStore_SaveAndLoadAppliesLive(t *testing.T) {
	f := newFixture(t, 2000)
	f.ready(t)
	s := f.store

	f.live.Set("flapStrengthBase", slots.Number(400))
	name, ok := s.SaveSlot("Fast")
	if !ok || name != "Fast" {
		t.Fatalf("SaveSlot = (%q, %v)", name, ok)
	}

	f.live.Set("flapStrengthBase", slots.Number(100))
	if _, ok := s.LoadSlot("Fast"); !ok {
		t.Fatalf("LoadSlot = false")
	}
	v, _ := f.live.Capture().Get("flapStrengthBase")
	if v.Number() != 400 {
		t.Fatalf("live flapStrengthBase = %v, want 400", v)
	}

	before := f.live.Applied()
	if _, ok := s.FetchSlot("Fast"); !ok {
		t.Fatalf("FetchSlot = false")
	}
	if _, ok := s.DuplicateSlot("Fast"); !ok {
		t.Fatalf("DuplicateSlot = false")
	}
	if f.live.Applied() != before {
		t.Fatalf("fetch or duplicate applied to live")
	}
	if got := s.GetSlotName(1); got != "Fast (2)" {
		t.Fatalf("GetSlotName(1) = %q, want %q", got, "Fast (2)")
	}
}

func TestStore_CapacityFullThenFree(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store

	if _, ok := s.SaveSlotPayload(bigPayload(350), "a"); !ok {
		t.Fatalf("first save rejected")
	}
	if _, ok := s.SaveSlotPayload(bigPayload(350), "b"); !ok {
		t.Fatalf("second save rejected")
	}

	before := s.Slots()
	if _, ok := s.SaveSlotPayload(bigPayload(2000), ""); ok {
		t.Fatalf("oversized save accepted")
	}
	if f.rec[events.OnStorageFull] != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", f.rec[events.OnStorageFull])
	}
	if got := s.Slots(); len(got) != len(before) {
		t.Fatalf("table changed on rejected save: %d slots", len(got))
	}
	if !strings.HasSuffix(s.GetStorageInfo(), "- full") {
		t.Fatalf("GetStorageInfo = %q, want full marker", s.GetStorageInfo())
	}

	// further growth stays rejected without re-firing
	if _, ok := s.NewSlot(); ok {
		t.Fatalf("NewSlot accepted while full")
	}
	if _, ok := s.DuplicateSlot("a"); ok {
		t.Fatalf("DuplicateSlot accepted while full")
	}
	if f.rec[events.OnStorageFull] != 1 {
		t.Fatalf("OnStorageFull re-fired: %d", f.rec[events.OnStorageFull])
	}

	if !s.DeleteSlot("b") {
		t.Fatalf("DeleteSlot rejected while full")
	}
	if f.rec[events.OnStorageFree] != 1 {
		t.Fatalf("OnStorageFree fired %d times, want 1", f.rec[events.OnStorageFree])
	}
	s.DeleteSlot("a")
	if f.rec[events.OnStorageFree] != 1 {
		t.Fatalf("OnStorageFree re-fired: %d", f.rec[events.OnStorageFree])
	}
	if _, ok := s.NewSlot(); !ok {
		t.Fatalf("NewSlot rejected after free")
	}
}

func TestStore_EditsStillFitWhileFull(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store

	if _, ok := s.SaveSlotPayload(bigPayload(200), "a"); !ok {
		t.Fatalf("save rejected")
	}
	if _, ok := s.SaveSlotPayload(bigPayload(2000), ""); ok {
		t.Fatalf("oversized save accepted")
	}
	if !s.StorageFull() {
		t.Fatalf("StorageFull = false after oversized save")
	}

	if !s.RenameSlot("a", "b") {
		t.Fatalf("RenameSlot rejected while full")
	}
	if !s.SetGlobalSetting(globals.SlotToLoadByDefault, slots.Text("b")) {
		t.Fatalf("SetGlobalSetting rejected while full")
	}
	if got, _ := s.GetGlobalSetting(globals.SlotToLoadByDefault); got.Text() != "b" {
		t.Fatalf("SlotToLoadByDefault = %q, want %q", got.Text(), "b")
	}
	if _, ok := s.NewSlot(); ok {
		t.Fatalf("NewSlot accepted while full")
	}
	if f.rec[events.OnStorageFull] != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", f.rec[events.OnStorageFull])
	}
}

func TestStore_OversizedSaveOnEmptyTableDoesNotStayFull(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store

	if _, ok := s.SaveSlotPayload(bigPayload(2000), ""); ok {
		t.Fatalf("oversized save accepted")
	}
	if f.rec[events.OnStorageFull] != 1 || f.rec[events.OnStorageFree] != 1 {
		t.Fatalf("full/free fired %d/%d times, want 1/1", f.rec[events.OnStorageFull], f.rec[events.OnStorageFree])
	}
	if s.StorageFull() {
		t.Fatalf("StorageFull = true with nothing left to delete")
	}
	if name, ok := s.NewSlot(); !ok || name == "" {
		t.Fatalf("NewSlot = (%q, %v), want a new slot", name, ok)
	}
}

func TestStore_ImportDBOverCeilingChangesNothing(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store
	s.SaveSlotPayload(bigPayload(100), "a")
	before := s.Database()

	export, err := codec.ExportDatabase(codec.NewDatabase(
		[]slots.Slot{{Name: "huge", Payload: bigPayload(2000)}}, globals.Defaults()))
	if err != nil {
		t.Fatalf("ExportDatabase: %v", err)
	}
	if s.ImportDB(export) {
		t.Fatalf("ImportDB over the ceiling accepted")
	}
	if !s.Database().Equal(before) {
		t.Fatalf("database changed on rejected ImportDB")
	}
	if f.rec[events.OnStorageFull] != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", f.rec[events.OnStorageFull])
	}
}

func TestStore_ImportSlotOverCeilingChangesNothing(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store
	s.SaveSlotPayload(bigPayload(100), "a")
	before := s.Database()

	huge, err := codec.ExportSlot(slots.Slot{Name: "huge", Payload: bigPayload(2000)})
	if err != nil {
		t.Fatalf("ExportSlot: %v", err)
	}
	if name, ok := s.ImportSlot(huge); ok || name != "" {
		t.Fatalf("ImportSlot = (%q, %v), want rejection", name, ok)
	}
	if !s.Database().Equal(before) {
		t.Fatalf("database changed on rejected ImportSlot")
	}

	small, err := codec.ExportSlot(slots.Slot{Name: "small", Payload: bigPayload(10)})
	if err != nil {
		t.Fatalf("ExportSlot: %v", err)
	}
	if _, ok := s.ImportSlot(small); ok {
		t.Fatalf("ImportSlot accepted while full")
	}
	if !s.Database().Equal(before) {
		t.Fatalf("database changed while full")
	}
	if f.rec[events.OnStorageFull] != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", f.rec[events.OnStorageFull])
	}
}

func TestStore_ImportMalformedChangesNothing(t *testing.T) {
	f := newFixture(t, 2000)
	f.ready(t)
	s := f.store
	s.NewSlot()
	before := s.Database()

	if name, ok := s.ImportSlot("not-a-valid-export-string"); ok || name != "" {
		t.Fatalf("ImportSlot = (%q, %v), want (\"\", false)", name, ok)
	}
	if s.ImportDB("OFD1:garbage;") {
		t.Fatalf("ImportDB accepted garbage")
	}
	if !s.Database().Equal(before) {
		t.Fatalf("database changed by malformed import")
	}
}

func TestStore_ExportImportRoundTrip(t *testing.T) {
	f := newFixture(t, 4000)
	f.ready(t)
	s := f.store
	payload := slots.NewPayload(
		slots.Entry{Key: "glideControl", Value: slots.Number(2.75)},
		slots.Entry{Key: "canGlide", Value: slots.Bool(false)},
		slots.Entry{Key: "label", Value: slots.Text("dive")},
	)
	name, _ := s.SaveSlotPayload(payload, "Dive")

	export, ok := s.GetSlotExport(name)
	if !ok {
		t.Fatalf("GetSlotExport = false")
	}
	imported, ok := s.ImportSlot(export)
	if !ok || imported != "Dive (2)" {
		t.Fatalf("ImportSlot = (%q, %v), want (%q, true)", imported, ok, "Dive (2)")
	}
	got, _ := s.FetchSlot(imported)
	if !got.Equal(payload) {
		t.Fatalf("imported payload differs: %#v", got)
	}

	dbExport, ok := s.GetDBExport()
	if !ok {
		t.Fatalf("GetDBExport = false")
	}
	want := s.Database()
	s.DeleteSlot("Dive")
	if !s.ImportDB(dbExport) {
		t.Fatalf("ImportDB = false")
	}
	if !s.Database().Equal(want) {
		t.Fatalf("ImportDB result differs")
	}
	if _, ok := s.GetSlotExport("missing"); ok {
		t.Fatalf("GetSlotExport(missing) = true")
	}
}

func TestStore_GlobalsWorldDefaultsToggle(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store
	s.NewSlot()

	if !s.SetGlobalSetting(globals.SlotToLoadByDefault, slots.Text("Slot 1")) {
		t.Fatalf("SetGlobalSetting = false")
	}
	if f.rec[events.UseWorldDefaultsWhenLoadingChanged] != 1 {
		t.Fatalf("world defaults change fired %d times", f.rec[events.UseWorldDefaultsWhenLoadingChanged])
	}
	v, _ := s.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading)
	if v.Bool() {
		t.Fatalf("UseWorldDefaultsWhenLoading still set")
	}
	if got := s.GetDefaultSlot(); got != "Slot 1" {
		t.Fatalf("GetDefaultSlot = %q, want Slot 1", got)
	}

	if s.SetGlobalSetting(globals.UseWorldDefaultsWhenLoading, slots.Text("yes")) {
		t.Fatalf("kind mismatch accepted")
	}

	s.DeleteSlot("Slot 1")
	if got := s.GetDefaultSlot(); got != worlddefaults.DefaultSlotName {
		t.Fatalf("GetDefaultSlot after delete = %q, want world defaults", got)
	}
}

func TestStore_OwnershipGate(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store
	s.NewSlot()
	before := s.Database()
	beforeValue, _ := s.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading)

	f.editable = false
	if s.SetGlobalSetting(globals.UseWorldDefaultsWhenLoading, slots.Bool(!beforeValue.Bool())) {
		t.Fatalf("SetGlobalSetting accepted without edit rights")
	}
	if _, ok := s.SaveSlot("x"); ok {
		t.Fatalf("SaveSlot accepted without edit rights")
	}
	if s.RenameSlot("Slot 1", "y") || s.DeleteSlot("Slot 1") {
		t.Fatalf("rename or delete accepted without edit rights")
	}
	if err := s.UploadSettings(context.Background()); !errors.Is(err, ErrNotEditable) {
		t.Fatalf("UploadSettings err = %v, want ErrNotEditable", err)
	}
	after, _ := s.GetGlobalSetting(globals.UseWorldDefaultsWhenLoading)
	if after.Bool() != beforeValue.Bool() || !s.Database().Equal(before) {
		t.Fatalf("state changed without edit rights")
	}

	// rights are re-checked on every call
	f.editable = true
	if _, ok := s.NewSlot(); !ok {
		t.Fatalf("NewSlot rejected after regaining edit rights")
	}
}

func TestStore_UploadConvergence(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store

	s.NewSlot()
	if !s.Diverged() || f.rec[events.OnRemoteDifferencesDetected] != 1 {
		t.Fatalf("divergence not detected after local write")
	}
	if err := s.UploadSettings(context.Background()); err != nil {
		t.Fatalf("UploadSettings: %v", err)
	}
	// still diverged until the transport echoes the snapshot
	if !s.Diverged() {
		t.Fatalf("resolved before remote delivery")
	}

	s.ApplyRemote(f.pub.last())
	if s.Diverged() || f.rec[events.OnRemoteDifferencesResolved] != 1 {
		t.Fatalf("not resolved after matching delivery")
	}
	s.ApplyRemote(f.pub.last())
	if f.rec[events.OnRemoteDifferencesResolved] != 1 {
		t.Fatalf("resolved re-fired on duplicate delivery")
	}
}

func TestStore_UploadPublisherError(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	f.pub.err = errors.New("relay down")

	if err := f.store.UploadSettings(context.Background()); err == nil {
		t.Fatalf("UploadSettings returned nil error")
	}
}

func TestStore_RevertRestoresRemote(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	s := f.store
	remote := s.Database()

	s.NewSlot()
	if !s.RevertSettings() {
		t.Fatalf("RevertSettings = false")
	}
	if !s.Database().Equal(remote) || s.Diverged() {
		t.Fatalf("revert did not restore remote state")
	}
}

func TestStore_ForeignStoreAdoptsRemote(t *testing.T) {
	s := New(Options{Player: "p2", Ceiling: 1000})
	s.ApplyRemote(nil)
	if s.CanEdit() || s.HasLive() {
		t.Fatalf("foreign store editable or live")
	}

	db := codec.NewDatabase([]slots.Slot{{Name: "Theirs"}}, globals.Defaults())
	data, err := codec.Marshal(db)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	s.ApplyRemote(data)
	if got := s.GetSlotName(0); got != "Theirs" {
		t.Fatalf("GetSlotName(0) = %q, want Theirs", got)
	}
	if s.Diverged() {
		t.Fatalf("foreign store diverged")
	}
}

func TestStore_TeardownFiresEvent(t *testing.T) {
	f := newFixture(t, 1000)
	f.ready(t)
	f.store.Teardown()

	if f.rec[events.OnTornDown] != 1 || f.store.IsInitialized() {
		t.Fatalf("teardown not observed")
	}
}
