package replication

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/persistence"
)

const defaultQueue = 64

// Hub owns the authoritative copy of every connected player's snapshot.
type Hub struct {
	backend persistence.Backend
	ceiling int

	publishMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]*Session
	present  map[string]int
	latest   map[string]Event
	owners   map[string]string
}

// NewHub builds a hub. Snapshots larger than ceiling bytes are refused.
func NewHub(backend persistence.Backend, ceiling int) *Hub {
	return &Hub{
		backend:  backend,
		ceiling:  ceiling,
		sessions: make(map[string]*Session),
		present:  make(map[string]int),
		latest:   make(map[string]Event),
		owners:   make(map[string]string),
	}
}

// Ceiling returns the largest accepted snapshot in bytes.
func (h *Hub) Ceiling() int { return h.ceiling }

// Players lists connected players in sorted order.
func (h *Hub) Players() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presentLocked()
}

func (h *Hub) presentLocked() []string {
	out := make([]string, 0, len(h.present))
	for p := range h.present {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Connect attaches a session for player. The session first receives a
// welcome, then the current state of every other connected player, then
// its own snapshot as everyone else sees it.
func (h *Hub) Connect(ctx context.Context, player string) (*Session, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, fmt.Errorf("%w: empty player", ErrBadHandshake)
	}

	h.mu.Lock()
	_, cached := h.latest[player]
	h.mu.Unlock()

	var stored Event
	if !cached {
		rec, ok, err := h.backend.Load(ctx, player)
		if err != nil {
			return nil, fmt.Errorf("connect %s: %w", player, err)
		}
		stored = Event{Kind: KindSnapshot, Player: player}
		if ok {
			stored.Revision = rec.Revision.String()
			stored.Data = rec.Data
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	others := h.presentLocked()
	s := &Session{
		hub:    h,
		id:     uuid.NewString(),
		player: player,
		events: make(chan Event, defaultQueue+3*len(others)+1),
	}
	s.events <- Event{Kind: KindWelcome, Session: s.id, Player: player}
	for _, p := range others {
		if p == player {
			continue
		}
		s.events <- Event{Kind: KindJoined, Player: p}
		if owner, ok := h.owners[p]; ok {
			s.events <- Event{Kind: KindOwner, Player: p, Owner: owner}
		}
		s.events <- h.latest[p]
	}

	h.sessions[s.id] = s
	h.present[player]++
	if _, ok := h.latest[player]; !ok {
		if stored.Kind == "" {
			stored = Event{Kind: KindSnapshot, Player: player}
		}
		h.latest[player] = stored
	}
	if h.present[player] == 1 {
		h.broadcastLocked(Event{Kind: KindJoined, Player: player})
		h.broadcastLocked(h.latest[player])
	} else {
		s.send(h.latest[player])
	}
	glog.Infof("replication: %s connected (session %s)", player, s.id)
	return s, nil
}

func (h *Hub) publish(ctx context.Context, s *Session, player string, data []byte) error {
	if len(data) > h.ceiling {
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), h.ceiling)
	}
	if _, err := codec.Unmarshal(data); err != nil {
		return fmt.Errorf("publish %s: %w", player, err)
	}

	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	err := h.checkEditLocked(s, player)
	h.mu.Unlock()
	if err != nil {
		return err
	}

	rec, err := h.backend.Save(ctx, player, data)
	if err != nil {
		return fmt.Errorf("publish %s: %w", player, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.present[player]; !ok {
		return nil
	}
	ev := Event{Kind: KindSnapshot, Player: player, Revision: rec.Revision.String(), Data: rec.Data}
	h.latest[player] = ev
	h.broadcastLocked(ev)
	glog.V(1).Infof("replication: %s published %d bytes as %s (rev %s)", s.player, len(data), player, ev.Revision)
	return nil
}

func (h *Hub) setOwner(s *Session, player, owner string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkEditLocked(s, player); err != nil {
		return err
	}
	if owner == "" || owner == player {
		delete(h.owners, player)
		owner = player
	} else {
		h.owners[player] = owner
	}
	h.broadcastLocked(Event{Kind: KindOwner, Player: player, Owner: owner})
	return nil
}

func (h *Hub) checkEditLocked(s *Session, player string) error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := h.present[player]; !ok {
		return fmt.Errorf("%w: %s is not connected", ErrNotOwner, player)
	}
	if player == s.player || h.owners[player] == s.player {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotOwner, player)
}

func (h *Hub) leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(s)
}

func (h *Hub) dropLocked(s *Session) {
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
	delete(h.sessions, s.id)

	h.present[s.player]--
	if h.present[s.player] > 0 {
		return
	}
	delete(h.present, s.player)
	delete(h.latest, s.player)
	delete(h.owners, s.player)
	glog.Infof("replication: %s left", s.player)
	h.broadcastLocked(Event{Kind: KindLeft, Player: s.player})
	for p, owner := range h.owners {
		if owner == s.player {
			delete(h.owners, p)
			h.broadcastLocked(Event{Kind: KindOwner, Player: p, Owner: p})
		}
	}
}

// broadcastLocked never blocks. A session that cannot keep up is dropped
// and has to reconnect.
func (h *Hub) broadcastLocked(ev Event) {
	for _, s := range h.sessions {
		if !s.send(ev) {
			glog.Warningf("replication: dropping slow session %s (%s)", s.id, s.player)
			h.dropLocked(s)
		}
	}
}

// Session is one attachment to a Hub. It implements Transport.
type Session struct {
	hub    *Hub
	id     string
	player string
	events chan Event
	closed bool
}

var _ Transport = (*Session)(nil)

func (s *Session) send(ev Event) bool {
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// Player returns the player this session speaks for.
func (s *Session) Player() string { return s.player }

func (s *Session) Session() string { return s.id }

func (s *Session) Events() <-chan Event { return s.events }

func (s *Session) Publish(ctx context.Context, player string, data []byte) error {
	return s.hub.publish(ctx, s, player, data)
}

func (s *Session) SetOwner(_ context.Context, player, owner string) error {
	return s.hub.setOwner(s, player, owner)
}

func (s *Session) Close() error {
	s.hub.leave(s)
	return nil
}
