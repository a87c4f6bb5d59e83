package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/openflight/hangar/internal/capacity"
)

// Config holds the settings hangar reads from its TOML file.
type Config struct {
	Player        string
	CapacityBytes int
	DatabasePath  string
	RelayURL      string
	Listen        string
	WorldDefaults string
	Contributors  string
	LogDir        string
}

const (
	defaultConfigPath   = "~/.config/hangar/config.toml"
	defaultDataDir      = "~/.local/share/hangar"
	defaultLogDir       = defaultDataDir + "/logs"
	defaultDatabasePath = defaultDataDir + "/hangar.sqlite"
	defaultListen       = "127.0.0.1:7488"
)

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Player        string `toml:"player"`
		CapacityBytes int    `toml:"capacity_bytes"`
		DatabasePath  string `toml:"database_path"`
		RelayURL      string `toml:"relay_url"`
		Listen        string `toml:"listen"`
		WorldDefaults string `toml:"world_defaults"`
		Contributors  string `toml:"contributors"`
		LogDir        string `toml:"log_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Player); v != "" {
		cfg.Player = v
	}
	if raw.CapacityBytes < 0 {
		return Config{}, fmt.Errorf("parse config: capacity_bytes must not be negative")
	}
	if raw.CapacityBytes > 0 {
		cfg.CapacityBytes = raw.CapacityBytes
	}
	if v := strings.TrimSpace(raw.DatabasePath); v != "" {
		cfg.DatabasePath = mustExpand(v)
	}
	cfg.RelayURL = strings.TrimSpace(raw.RelayURL)
	if v := strings.TrimSpace(raw.Listen); v != "" {
		cfg.Listen = v
	}
	if v := strings.TrimSpace(raw.WorldDefaults); v != "" {
		cfg.WorldDefaults = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.Contributors); v != "" {
		cfg.Contributors = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}

	return cfg, nil
}

func defaults() Config {
	return Config{
		Player:        defaultPlayer(),
		CapacityBytes: capacity.DefaultCeiling,
		DatabasePath:  mustExpand(defaultDatabasePath),
		Listen:        defaultListen,
		LogDir:        mustExpand(defaultLogDir),
	}
}

func defaultPlayer() string {
	if u, err := user.Current(); err == nil && strings.TrimSpace(u.Username) != "" {
		return u.Username
	}
	return "player"
}

// UsesRelay reports whether the TUI should connect to a remote relay rather
// than running an in-process hub.
func (c Config) UsesRelay() bool {
	return c.RelayURL != ""
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
