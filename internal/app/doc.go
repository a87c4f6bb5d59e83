// Package app is the composition root for hangar.
//
// # Overview
//
// Run wires configuration, the replication link, the settings session and
// the UI together. RunRelay serves the shared hub for a group of players.
// Export and Import operate on the local database without a UI.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read hangar config
//	       ├─────> worlddefaults.Load()   World slot and payload
//	       ├─────> contributors.Load()    Contributor list
//	       ├─────> dialer()               Relay client or private hub
//	       ├─────> StartReceiver()        Forward events into the inbox
//	       └─────> ui.Run()               Start TUI (blocks)
//
//	Receiver Loop:
//	┌─────────────────────────────────────────┐
//	│ StartReceiver() goroutine               │
//	│  ├─> dial()                             │
//	│  ├─> inbox.Push(event)                  │
//	│  └─> backoff and redial on disconnect   │
//	│      └─> UI drains inbox on each tick   │
//	└─────────────────────────────────────────┘
//
// # Connection Modes
//
// With relay_url set the receiver dials the relay over websockets. Without
// it an in-process hub runs over the configured SQLite database, so a
// single player keeps slots across restarts with no relay.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration, prefs, world defaults or contributors file invalid
//   - Database cannot be opened in local mode
//
// Recoverable errors (logged, receiver redials with backoff):
//   - Dial failures and dropped connections
//   - Publish attempts while offline return ErrOffline to the UI
package app
