// Package config loads hangar's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/hangar/config.toml
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Fields
//
//	player          = "amy"                      # defaults to the OS user name
//	capacity_bytes  = 16384                      # transport ceiling per player
//	database_path   = "~/.local/share/hangar/hangar.sqlite"
//	relay_url       = "ws://127.0.0.1:7488/ws"   # empty runs an in-process hub
//	listen          = "127.0.0.1:7488"           # relay bind address
//	world_defaults  = "~/.config/hangar/world.yaml"
//	contributors    = "~/.config/hangar/contributors.json"
//	log_dir         = "~/.local/share/hangar/logs"
//
// String values are trimmed and paths starting with "~" are expanded against
// the user's home directory and made absolute.
package config
