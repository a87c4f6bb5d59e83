// Package capacity accounts a store's serialized size against the
// replication transport's payload ceiling.
//
// Writes are checked before commit. A write that does not fit is rejected
// and latches the tracker "full". While latched, growing writes (Check) are
// accepted only if they strictly shrink usage; edits that keep the data's
// shape (CheckEdit) only need to fit under the ceiling. The first committed
// shrink, a Reset that fits, or an explicit Release clears the latch.
// OnStorageFull and OnStorageFree fire on those transitions only, never on
// every rejected or accepted write.
package capacity

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/events"
)

// DefaultCeiling is used when a tracker is built with a non-positive ceiling.
const DefaultCeiling = 16 * 1024

// Tracker holds usage and the full latch.
type Tracker struct {
	ceiling int
	used    int
	full    bool
	emitter events.Emitter
}

// NewTracker builds a tracker that reports transitions to emitter.
func NewTracker(ceiling int, emitter events.Emitter) *Tracker {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	return &Tracker{ceiling: ceiling, emitter: emitter}
}

// Ceiling returns the byte limit.
func (t *Tracker) Ceiling() int { return t.ceiling }

// Used returns the last committed size.
func (t *Tracker) Used() int { return t.used }

// Full reports whether the latch is set.
func (t *Tracker) Full() bool { return t.full }

// Fits reports whether a growing write producing next bytes would be
// accepted, without touching the latch.
func (t *Tracker) Fits(next int) bool {
	if next > t.ceiling {
		return false
	}
	if t.full && next >= t.used {
		return false
	}
	return true
}

// Check evaluates a pending growing write of next bytes. A rejection
// latches full and fires OnStorageFull if the latch was not already set.
func (t *Tracker) Check(next int) bool {
	return t.verdict(next, t.Fits(next))
}

// CheckEdit evaluates a pending edit, such as a rename or a settings
// change, that is held only to the ceiling even while latched.
func (t *Tracker) CheckEdit(next int) bool {
	return t.verdict(next, next <= t.ceiling)
}

func (t *Tracker) verdict(next int, fits bool) bool {
	if fits {
		return true
	}
	glog.V(1).Infof("capacity: reject write of %d bytes (used %d, ceiling %d)", next, t.used, t.ceiling)
	if !t.full {
		t.full = true
		t.emit(events.OnStorageFull)
	}
	return false
}

// Release clears the latch, firing OnStorageFree if it was set. Callers use
// it when nothing is left that could be deleted to make room.
func (t *Tracker) Release() {
	if !t.full {
		return
	}
	t.full = false
	t.emit(events.OnStorageFree)
}

// Commit records the size after an accepted write.
func (t *Tracker) Commit(size int) {
	shrunk := size < t.used
	t.used = size
	if t.full && shrunk && size < t.ceiling {
		t.full = false
		t.emit(events.OnStorageFree)
	}
}

// Reset records the size after the data was replaced wholesale, such as a
// revert or a first snapshot. A latched tracker is released if the new data
// fits.
func (t *Tracker) Reset(size int) {
	t.used = size
	if t.full && size < t.ceiling {
		t.full = false
		t.emit(events.OnStorageFree)
	}
}

// Info renders used/total accounting for display.
func (t *Tracker) Info() string {
	percent := 0
	if t.ceiling > 0 {
		percent = t.used * 100 / t.ceiling
	}
	info := fmt.Sprintf("Storage: %s / %s (%d%%)",
		humanize.Bytes(uint64(t.used)), humanize.Bytes(uint64(t.ceiling)), percent)
	if t.full {
		info += " - full"
	}
	return info
}

func (t *Tracker) emit(kind events.Kind) {
	if t.emitter != nil {
		t.emitter.Emit(kind)
	}
}
