// Package events is a small named-event registry. Each Kind keeps an ordered
// list of listeners; Emit calls them in registration order with no payload,
// and listeners re-query whatever state they need.
package events

import "fmt"

// Kind names an event a settings store can raise.
type Kind int

const (
	OnLocalDataReady Kind = iota + 1
	UseWorldDefaultsWhenLoadingChanged
	OnRemoteDifferencesDetected
	OnRemoteDifferencesResolved
	OnStorageFull
	OnStorageFree
	// OnTornDown fires when the owning player leaves and the store goes away.
	OnTornDown
)

func (k Kind) String() string {
	switch k {
	case OnLocalDataReady:
		return "OnLocalDataReady"
	case UseWorldDefaultsWhenLoadingChanged:
		return "useWorldDefaultsWhenLoadingChanged"
	case OnRemoteDifferencesDetected:
		return "OnRemoteDifferencesDetected"
	case OnRemoteDifferencesResolved:
		return "OnRemoteDifferencesResolved"
	case OnStorageFull:
		return "OnStorageFull"
	case OnStorageFree:
		return "OnStorageFree"
	case OnTornDown:
		return "OnTornDown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Emitter raises events.
type Emitter interface {
	Emit(kind Kind)
}

// Handle identifies one registration for Off.
type Handle struct {
	kind Kind
	id   uint64
}

type listener struct {
	id uint64
	fn func()
}

// Registry maps event kinds to listeners. The zero value is ready to use.
// It is not safe for concurrent use; stores run on a single loop.
type Registry struct {
	nextID    uint64
	listeners map[Kind][]listener
}

var _ Emitter = (*Registry)(nil)

// On registers fn for kind. A nil fn is ignored and yields a zero Handle.
func (r *Registry) On(kind Kind, fn func()) Handle {
	if fn == nil {
		return Handle{}
	}
	if r.listeners == nil {
		r.listeners = make(map[Kind][]listener)
	}
	r.nextID++
	r.listeners[kind] = append(r.listeners[kind], listener{id: r.nextID, fn: fn})
	return Handle{kind: kind, id: r.nextID}
}

// Off removes a registration. Unknown handles are ignored.
func (r *Registry) Off(h Handle) {
	list := r.listeners[h.kind]
	for i, l := range list {
		if l.id == h.id {
			r.listeners[h.kind] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Count returns how many listeners kind has.
func (r *Registry) Count(kind Kind) int {
	return len(r.listeners[kind])
}

// Emit calls every listener for kind. The list is copied first, so a
// listener may register or unregister during dispatch without affecting the
// current round.
func (r *Registry) Emit(kind Kind) {
	list := r.listeners[kind]
	if len(list) == 0 {
		return
	}
	snapshot := make([]listener, len(list))
	copy(snapshot, list)
	for _, l := range snapshot {
		l.fn()
	}
}

// Recorder is an Emitter that records emitted kinds in order. Handy in tests
// of components that only need to raise events.
type Recorder struct {
	Kinds []Kind
}

// Emit records kind.
func (r *Recorder) Emit(kind Kind) {
	r.Kinds = append(r.Kinds, kind)
}

// Count returns how many times kind was emitted.
func (r *Recorder) Count(kind Kind) int {
	n := 0
	for _, k := range r.Kinds {
		if k == kind {
			n++
		}
	}
	return n
}
