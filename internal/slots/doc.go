// Package slots holds the slot table: the ordered, uniquely named
// collection of saved flight settings owned by one player.
//
// Every lookup resolves to an existing slot or to the empty sentinel name "".
// Out-of-range indexes are clamped, missing names report index -1, and
// mutators return success plus the canonical name actually used so callers
// can keep a coherent "current slot" even when an operation fails.
//
// Payloads are ordered key/value sets of tunables. Values are a small tagged
// union (bool, number, text) and encode to JSON as [[key, value], ...] pairs
// so that order survives a round trip.
package slots
