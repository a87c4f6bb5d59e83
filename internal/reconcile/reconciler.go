// Package reconcile tracks whether a store's local data still differs from
// the copy the replication transport last delivered for the same player.
//
// Divergence is normal right after a local write, before replication
// catches up, so the reconciler re-evaluates on every remote delivery and on
// every local mutation. OnRemoteDifferencesDetected and
// OnRemoteDifferencesResolved fire on transitions only.
package reconcile

import (
	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/events"
)

// Reconciler compares local and remote snapshots.
type Reconciler struct {
	label     string
	emitter   events.Emitter
	remote    codec.Database
	hasRemote bool
	diverged  bool
}

// New builds a reconciler. label only appears in logs.
func New(label string, emitter events.Emitter) *Reconciler {
	return &Reconciler{label: label, emitter: emitter}
}

// Observe stores the latest remote snapshot. Call Evaluate afterwards.
func (r *Reconciler) Observe(remote codec.Database) {
	r.remote = remote.Clone()
	r.hasRemote = true
}

// Remote returns a copy of the latest remote snapshot.
func (r *Reconciler) Remote() (codec.Database, bool) {
	if !r.hasRemote {
		return codec.Database{}, false
	}
	return r.remote.Clone(), true
}

// Diverged reports the last evaluated state.
func (r *Reconciler) Diverged() bool { return r.diverged }

// Evaluate compares local against the remote snapshot and fires an event if
// the divergence state flipped. Without a remote snapshot nothing is
// considered diverged.
func (r *Reconciler) Evaluate(local codec.Database) bool {
	diverged := r.hasRemote && !local.Equal(r.remote)
	if diverged == r.diverged {
		return diverged
	}
	r.diverged = diverged
	if diverged {
		glog.V(1).Infof("reconcile[%s]: remote differs from local", r.label)
		r.emit(events.OnRemoteDifferencesDetected)
	} else {
		glog.V(1).Infof("reconcile[%s]: remote matches local", r.label)
		r.emit(events.OnRemoteDifferencesResolved)
	}
	return diverged
}

func (r *Reconciler) emit(kind events.Kind) {
	if r.emitter != nil {
		r.emitter.Emit(kind)
	}
}
