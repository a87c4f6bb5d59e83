package app

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/config"
	"github.com/openflight/hangar/internal/contributors"
	"github.com/openflight/hangar/internal/persistence"
	"github.com/openflight/hangar/internal/prefs"
	"github.com/openflight/hangar/internal/replication"
	"github.com/openflight/hangar/internal/session"
	"github.com/openflight/hangar/internal/state"
	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/ui"
	"github.com/openflight/hangar/internal/worlddefaults"
)

// Options configure the hangar application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/hangar/prefs.toml
	Player     string // overrides the configured player
	RetryEvery int    // seconds; zero uses default
}

// Run boots the hangar TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}

	world, err := worlddefaults.Load(cfg.WorldDefaults)
	if err != nil {
		return err
	}
	names, err := contributors.Load(cfg.Contributors)
	if err != nil {
		return err
	}

	dial, cleanup, err := dialer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inbox := &state.Inbox{}
	link := &Link{}
	sess := session.New(session.Options{
		Viewer:       cfg.Player,
		Ceiling:      cfg.CapacityBytes,
		World:        world,
		Live:         store.NewMemoryLive(world.Payload),
		Publisher:    link,
		Owners:       link,
		Contributors: names,
		HideLocal:    userPrefs.HideContributor,
	})

	interval := defaultRetryInterval
	if opts.RetryEvery > 0 {
		interval = secondsToDuration(opts.RetryEvery)
	}
	StartReceiver(ctx, inbox, link, dial, interval)

	glog.Infof("hangar: starting UI for %s", cfg.Player)
	uiOpts := ui.Options{
		Context:   ctx,
		Session:   sess,
		Inbox:     inbox,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
	}
	return ui.Run(uiOpts)
}

func loadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Player != "" {
		cfg.Player = opts.Player
	}
	return cfg, nil
}

// dialer connects to the configured relay, or runs a private hub over the
// local database when no relay is configured.
func dialer(cfg config.Config) (DialFunc, func(), error) {
	if cfg.UsesRelay() {
		dial := func(ctx context.Context) (replication.Transport, error) {
			return replication.Dial(ctx, cfg.RelayURL, cfg.Player)
		}
		return dial, func() {}, nil
	}

	backend, err := persistence.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	hub := replication.NewHub(backend, cfg.CapacityBytes)
	dial := func(ctx context.Context) (replication.Transport, error) {
		return hub.Connect(ctx, cfg.Player)
	}
	cleanup := func() {
		if err := backend.Close(); err != nil {
			glog.Warningf("hangar: close database: %v", err)
		}
	}
	return dial, cleanup, nil
}
