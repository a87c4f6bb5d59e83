// Package replication carries per-player settings snapshots between
// players.
//
// A Hub is the authority: it keeps the latest snapshot of every connected
// player, persists uploads through a persistence.Backend and fans every
// change out to all sessions. Sessions attach to a Hub either in process
// (Hub.Connect) or over a websocket (Server and Dial). Both satisfy
// Transport, so the rest of the program does not care which one it has.
//
// Delivery is asynchronous. A publish is acknowledged only by the snapshot
// event that later comes back, which is what the store's reconciler waits
// for.
package replication
