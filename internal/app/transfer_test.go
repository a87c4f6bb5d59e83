package app

import (
	"context"
	"strings"
	"testing"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/persistence"
	"github.com/openflight/hangar/internal/slots"
)

func exportOf(t *testing.T, name string) string {
	t.Helper()
	out, err := codec.ExportSlot(slots.Slot{
		Name:    name,
		Payload: slots.NewPayload(slots.Entry{Key: "flapStrengthBase", Value: slots.Number(300)}),
	})
	if err != nil {
		t.Fatalf("ExportSlot: %v", err)
	}
	return out
}

func TestImportInto_SlotAddsUniqueName(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemory()

	for _, want := range []string{"Racer", "Racer (2)"} {
		got, err := importInto(ctx, backend, "ava", 0, exportOf(t, "Racer"))
		if err != nil {
			t.Fatalf("importInto: %v", err)
		}
		if got != want {
			t.Fatalf("imported name = %q, want %q", got, want)
		}
	}

	rec, ok, err := backend.Load(ctx, "ava")
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	db, err := codec.Unmarshal(rec.Data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(db.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(db.Slots))
	}
}

func TestImportInto_SlotWithLineBreakInPrefix(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemory()

	export := exportOf(t, "Racer")
	wrapped := export[:2] + "\n" + export[2:7] + "\r\n  " + export[7:]
	got, err := importInto(ctx, backend, "ava", 0, wrapped)
	if err != nil {
		t.Fatalf("importInto: %v", err)
	}
	if got != "Racer" {
		t.Fatalf("imported name = %q, want %q", got, "Racer")
	}
}

func TestImportInto_DatabaseReplaces(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemory()
	if _, err := importInto(ctx, backend, "ava", 0, exportOf(t, "Old")); err != nil {
		t.Fatalf("importInto: %v", err)
	}

	g := globals.Defaults()
	export, err := codec.ExportDatabase(codec.NewDatabase([]slots.Slot{{Name: "Fresh", Payload: slots.NewPayload()}}, g))
	if err != nil {
		t.Fatalf("ExportDatabase: %v", err)
	}
	name, err := importInto(ctx, backend, "ava", 0, "  "+export+"\n")
	if err != nil {
		t.Fatalf("importInto: %v", err)
	}
	if name != "" {
		t.Fatalf("database import returned slot name %q", name)
	}

	rec, _, _ := backend.Load(ctx, "ava")
	db, err := codec.Unmarshal(rec.Data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(db.Slots) != 1 || db.Slots[0].Name != "Fresh" {
		t.Fatalf("slots = %+v", db.Slots)
	}
}

func TestImportInto_RejectsGarbage(t *testing.T) {
	backend := persistence.NewMemory()
	if _, err := importInto(context.Background(), backend, "ava", 0, "OFS1:not-base64;"); err != ErrImportRejected {
		t.Fatalf("err = %v, want ErrImportRejected", err)
	}
	if _, ok, _ := backend.Load(context.Background(), "ava"); ok {
		t.Fatalf("rejected import was saved")
	}
}

func TestOfflineStore_ExportRoundTrip(t *testing.T) {
	ctx := context.Background()
	backend := persistence.NewMemory()
	if _, err := importInto(ctx, backend, "ava", 0, exportOf(t, "Racer")); err != nil {
		t.Fatalf("importInto: %v", err)
	}
	s, err := offlineStore(ctx, backend, "ava", 0)
	if err != nil {
		t.Fatalf("offlineStore: %v", err)
	}
	out, ok := s.GetSlotExport("Racer")
	if !ok || !strings.HasPrefix(out, codec.SlotPrefix) {
		t.Fatalf("GetSlotExport = %q, %v", out, ok)
	}
}
