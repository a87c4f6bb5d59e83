// Package store is the per-player settings store: a slot table, typed
// global settings, capacity accounting and remote reconciliation behind one
// facade.
//
// A Store is inert until the replication transport delivers its first
// snapshot through ApplyRemote. Until then reads return the empty sentinel
// and mutations are refused. Every mutation is also gated on CanEdit, which
// is re-evaluated on each call because ownership of the backing object can
// change at any time.
//
// Mutations are staged on a copy, measured against the capacity ceiling and
// only then committed, so a rejected write leaves the store untouched.
// Events are delivered synchronously on the caller's goroutine; a Store is
// not safe for concurrent use.
package store
