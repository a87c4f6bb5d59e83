// Package ui renders the hangar controls panel with Bubble Tea.
//
// # Layout
//
//   - Header: link state, the player being viewed, a replica badge
//     (synced, diverged, full, offline, readonly, loading), storage use,
//     contributors present and the latest action result.
//   - Command bar: context-sensitive key hints and the active theme.
//   - Slots pane: the reference player's slots, the selection highlighted
//     and the slot that loads on join starred.
//   - Detail pane: the selected slot's settings, or both export strings
//     when toggled with x.
//
// # Update Loop
//
// The receiver goroutine in package app pushes replication events into a
// state.Inbox. On every tick the model drains the inbox, applies each event
// to the session on the UI goroutine and re-reads controls.View. Stores are
// never touched from any other goroutine.
//
// # Modals
//
// Rename, imports and giving control use a one-line textinput prompt;
// delete asks for confirmation. While a modal is open it receives every
// key.
//
// # Preferences
//
// The theme and the last viewed player persist to prefs.toml on theme
// change and on quit. The last viewed player is reopened once its data
// arrives.
package ui
