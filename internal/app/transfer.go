package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/persistence"
	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/worlddefaults"
)

var ErrImportRejected = errors.New("import rejected")

// Export prints a player's stored data as an export string: one slot when
// slot is set, otherwise the whole database.
func Export(ctx context.Context, configPath, player, slot string) (string, error) {
	cfg, err := loadConfig(Options{ConfigPath: configPath, Player: player})
	if err != nil {
		return "", err
	}
	backend, err := persistence.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer backend.Close()

	s, err := offlineStore(ctx, backend, cfg.Player, cfg.CapacityBytes)
	if err != nil {
		return "", err
	}
	if slot != "" {
		out, ok := s.GetSlotExport(slot)
		if !ok {
			return "", fmt.Errorf("no slot named %q", slot)
		}
		return out, nil
	}
	out, ok := s.GetDBExport()
	if !ok {
		return "", fmt.Errorf("export %s failed", cfg.Player)
	}
	return out, nil
}

// Import applies an export string to a player's stored data. A slot export
// is added under a unique name; a database export replaces everything. It
// returns the imported slot name, or "" for a database import.
func Import(ctx context.Context, configPath, player, text string) (string, error) {
	cfg, err := loadConfig(Options{ConfigPath: configPath, Player: player})
	if err != nil {
		return "", err
	}
	backend, err := persistence.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}
	defer backend.Close()

	return importInto(ctx, backend, cfg.Player, cfg.CapacityBytes, text)
}

func importInto(ctx context.Context, backend persistence.Backend, player string, ceiling int, text string) (string, error) {
	s, err := offlineStore(ctx, backend, player, ceiling)
	if err != nil {
		return "", err
	}

	var name string
	if codec.IsSlotExport(text) {
		var ok bool
		if name, ok = s.ImportSlot(text); !ok {
			return "", ErrImportRejected
		}
	} else if !s.ImportDB(text) {
		return "", ErrImportRejected
	}

	data, err := codec.Marshal(s.Database())
	if err != nil {
		return "", err
	}
	if _, err := backend.Save(ctx, player, data); err != nil {
		return "", err
	}
	return name, nil
}

func offlineStore(ctx context.Context, backend persistence.Backend, player string, ceiling int) (*store.Store, error) {
	rec, _, err := backend.Load(ctx, player)
	if err != nil {
		return nil, err
	}
	s := store.New(store.Options{
		Player:  player,
		Ceiling: ceiling,
		World:   worlddefaults.Builtin(),
		CanEdit: func() bool { return true },
	})
	s.ApplyRemote(rec.Data)
	return s, nil
}
