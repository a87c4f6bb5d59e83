package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/openflight/hangar/internal/replication"
)

// Link describes the connection to the replication hub.
type Link struct {
	Connected           bool
	Session             string
	LastEvent           time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive connect failures
}

// IsOffline returns true when the relay has been unreachable for multiple
// attempts.
func (l Link) IsOffline() bool {
	return l.ConsecutiveFailures >= 2
}

// Inbox hands replication events from the receiver goroutine to the UI loop.
type Inbox struct {
	mu      sync.Mutex
	pending []replication.Event
	link    Link
}

// Push queues an event for the UI loop.
func (in *Inbox) Push(ev replication.Event) {
	in.mu.Lock()
	defer in.mu.Unlock()

	ev.Data = append([]byte(nil), ev.Data...)
	in.pending = append(in.pending, ev)
	in.link.LastEvent = time.Now()
}

// Drain returns the queued events in arrival order and empties the queue.
func (in *Inbox) Drain() []replication.Event {
	in.mu.Lock()
	defer in.mu.Unlock()

	out := in.pending
	in.pending = nil
	return out
}

// Pending counts queued events.
func (in *Inbox) Pending() int {
	in.mu.Lock()
	defer in.mu.Unlock()
	return len(in.pending)
}

// Connected records a successful connection.
func (in *Inbox) Connected(session string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.link.Connected = true
	in.link.Session = session
	in.link.LastError = nil
	in.link.ConsecutiveFailures = 0
}

// Disconnected records a lost connection. A nil err is a clean close and
// does not count as a failure.
func (in *Inbox) Disconnected(err error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.link.Connected = false
	in.link.Session = ""
	if err != nil {
		in.link.LastError = err
		in.link.ConsecutiveFailures++
	}
}

// Link returns a copy of the connection state.
func (in *Inbox) Link() Link {
	in.mu.Lock()
	defer in.mu.Unlock()

	link := in.link
	if in.link.LastError != nil {
		link.LastError = fmt.Errorf("%w", in.link.LastError)
	}
	return link
}
