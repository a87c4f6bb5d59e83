// Package session is the UI loop's view of the world: every player's
// store, the viewer's panel and the contributor tracker, kept current by
// replication events.
//
// A Session is owned by the UI loop. Events reach it through Apply, which
// the loop calls with whatever it drained from the inbox.
package session

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/contributors"
	"github.com/openflight/hangar/internal/controls"
	"github.com/openflight/hangar/internal/pool"
	"github.com/openflight/hangar/internal/replication"
	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/worlddefaults"
)

// Owners hands a player's data object to someone else.
type Owners interface {
	SetOwner(ctx context.Context, player, owner string) error
}

// Options configure a Session.
type Options struct {
	Viewer       string
	Ceiling      int
	World        worlddefaults.Defaults
	Live         store.Live
	Publisher    store.Publisher
	Owners       Owners
	Contributors []string
	HideLocal    bool
}

// Session ties the pool, the panel and contributor tracking together.
type Session struct {
	pool     *pool.Pool
	controls *controls.Controls
	tracker  *contributors.Tracker
	owners   Owners

	lastError   string
	lastErrorAt time.Time
}

// New builds a session. The viewer's store exists immediately but stays
// uninitialized until its first snapshot arrives.
func New(opts Options) *Session {
	p := pool.New(pool.Options{
		Viewer:    opts.Viewer,
		Ceiling:   opts.Ceiling,
		World:     opts.World,
		Live:      opts.Live,
		Publisher: opts.Publisher,
	})
	tracker := contributors.NewTracker(opts.Contributors, opts.Viewer, nil)
	tracker.HideLocal = opts.HideLocal
	return &Session{
		pool:     p,
		controls: controls.New(p),
		tracker:  tracker,
		owners:   opts.Owners,
	}
}

// Pool returns the player stores.
func (s *Session) Pool() *pool.Pool { return s.pool }

// Controls returns the viewer's panel.
func (s *Session) Controls() *controls.Controls { return s.controls }

// Contributors returns the contributor tracker.
func (s *Session) Contributors() *contributors.Tracker { return s.tracker }

// LastError returns the most recent error reported by the relay.
func (s *Session) LastError() (string, time.Time) { return s.lastError, s.lastErrorAt }

// Apply feeds one replication event into the stores.
func (s *Session) Apply(ev replication.Event) {
	viewer := s.pool.Viewer()
	switch ev.Kind {
	case replication.KindWelcome:
		// the hub replays everyone after a reconnect
		for _, p := range s.pool.Players() {
			if p != viewer {
				s.leave(p)
			}
		}
	case replication.KindJoined:
		s.pool.Join(ev.Player)
		if ev.Player != viewer {
			s.tracker.Joined(ev.Player)
		}
	case replication.KindLeft:
		if ev.Player != viewer {
			s.leave(ev.Player)
		}
	case replication.KindSnapshot:
		s.pool.Deliver(ev.Player, ev.Data)
	case replication.KindOwner:
		s.pool.SetOwner(ev.Player, ev.Owner)
	case replication.KindError:
		s.lastError = ev.Error
		s.lastErrorAt = time.Now()
		glog.Warningf("session: relay error for %s: %s", ev.Player, ev.Error)
	default:
		glog.V(1).Infof("session: ignoring event %q", ev.Kind)
	}
}

func (s *Session) leave(player string) {
	s.pool.Leave(player)
	s.tracker.Left(player)
}

// GiveControl hands the viewer's data object to another player so they can
// edit it.
func (s *Session) GiveControl(ctx context.Context, to string) error {
	if s.owners == nil {
		return nil
	}
	return s.owners.SetOwner(ctx, s.pool.Viewer(), to)
}
