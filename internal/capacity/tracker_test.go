package capacity

import (
	"strings"
	"testing"

	"github.com/openflight/hangar/internal/events"
)

func TestTracker_RejectOversizeFiresFullOnce(t *testing.T) {
	rec := &events.Recorder{}
	tr := NewTracker(1000, rec)
	tr.Commit(100)

	if tr.Check(2000) {
		t.Fatalf("Check(2000) = true, want false")
	}
	if tr.Check(2000) {
		t.Fatalf("second Check(2000) = true, want false")
	}
	if got := rec.Count(events.OnStorageFull); got != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", got)
	}
	if !tr.Full() {
		t.Fatalf("Full() = false after rejection")
	}
	if tr.Used() != 100 {
		t.Fatalf("Used = %d, want 100", tr.Used())
	}
}

func TestTracker_LatchedRejectsGrowthUntilShrink(t *testing.T) {
	rec := &events.Recorder{}
	tr := NewTracker(1000, rec)
	tr.Commit(900)

	tr.Check(1200)
	if tr.Check(950) {
		t.Fatalf("growth accepted while latched")
	}
	if tr.Check(900) {
		t.Fatalf("same-size write accepted while latched")
	}
	if !tr.Check(400) {
		t.Fatalf("shrinking write rejected while latched")
	}
	tr.Commit(400)
	if tr.Full() {
		t.Fatalf("latch still set after shrink")
	}
	if got := rec.Count(events.OnStorageFree); got != 1 {
		t.Fatalf("OnStorageFree fired %d times, want 1", got)
	}

	tr.Commit(300)
	if got := rec.Count(events.OnStorageFree); got != 1 {
		t.Fatalf("OnStorageFree fired %d times after second shrink, want 1", got)
	}
	if !tr.Check(950) {
		t.Fatalf("write under ceiling rejected after release")
	}
}

func TestTracker_EditsOnlyHeldToCeilingWhileLatched(t *testing.T) {
	rec := &events.Recorder{}
	tr := NewTracker(1000, rec)
	tr.Commit(240)
	tr.Check(2000)

	if tr.Check(250) {
		t.Fatalf("growing write accepted while latched")
	}
	if !tr.CheckEdit(250) {
		t.Fatalf("CheckEdit(250) = false, want true under the ceiling")
	}
	if tr.CheckEdit(1001) {
		t.Fatalf("CheckEdit over the ceiling accepted")
	}
	if got := rec.Count(events.OnStorageFull); got != 1 {
		t.Fatalf("OnStorageFull fired %d times, want 1", got)
	}
}

func TestTracker_ReleaseFiresFreeOnce(t *testing.T) {
	rec := &events.Recorder{}
	tr := NewTracker(1000, rec)
	tr.Release()
	if got := rec.Count(events.OnStorageFree); got != 0 {
		t.Fatalf("Release on a clear tracker fired OnStorageFree %d times", got)
	}

	tr.Check(2000)
	tr.Release()
	tr.Release()
	if tr.Full() {
		t.Fatalf("Full() = true after Release")
	}
	if got := rec.Count(events.OnStorageFree); got != 1 {
		t.Fatalf("OnStorageFree fired %d times, want 1", got)
	}
}

func TestTracker_ResetReleasesLatch(t *testing.T) {
	rec := &events.Recorder{}
	tr := NewTracker(100, rec)
	tr.Check(500)

	tr.Reset(10)
	if tr.Full() {
		t.Fatalf("Reset did not release latch")
	}
	if rec.Count(events.OnStorageFree) != 1 {
		t.Fatalf("OnStorageFree not fired on Reset")
	}
}

func TestTracker_InfoMentionsUsageAndFull(t *testing.T) {
	tr := NewTracker(1000, nil)
	tr.Commit(410)

	info := tr.Info()
	if !strings.Contains(info, "410 B") || !strings.Contains(info, "41%") {
		t.Fatalf("Info = %q, want usage and percent", info)
	}
	tr.Check(5000)
	if !strings.HasSuffix(tr.Info(), "full") {
		t.Fatalf("Info = %q, want full marker", tr.Info())
	}
}

func TestNewTracker_DefaultCeiling(t *testing.T) {
	if got := NewTracker(0, nil).Ceiling(); got != DefaultCeiling {
		t.Fatalf("Ceiling = %d, want %d", got, DefaultCeiling)
	}
}
