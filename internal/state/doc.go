// Package state hands replication traffic from the network goroutine to the
// UI loop.
//
// Settings stores are single-threaded: only the UI loop may touch them. The
// receiver goroutine therefore never applies an event itself. It pushes
// events into an Inbox, and the UI loop drains the inbox on every tick and
// applies them in arrival order.
//
//	receiver goroutine:            UI loop:
//	  ev := <-transport.Events()     for _, ev := range inbox.Drain() {
//	  inbox.Push(ev)                     apply(ev)
//	                                 }
//
// The inbox also tracks the link: whether the relay is connected, the
// session id, and how many connection attempts failed in a row. Link
// returns a copy, so the UI can render it without holding the lock.
//
// The zero Inbox is ready to use.
package state
