// Package relayapi is an HTTP client for a hangar relay's status endpoints.
//
// The relay serves replication over a websocket at /ws and two plain HTTP
// endpoints next to it:
//
//   - /healthz: plain-text liveness check
//   - /api/status: JSON replication.Status listing connected players
//
// The client accepts the same address the TUI dials, so a relay_url of
// ws://host:7488/ws queries http://host:7488/api/status.
//
//	client, err := relayapi.NewClient("ws://127.0.0.1:7488/ws")
//	if err != nil {
//		return err
//	}
//	status, err := client.FetchStatus(ctx)
package relayapi
