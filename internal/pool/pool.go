// Package pool tracks one settings store per player in the world.
package pool

import (
	"sort"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/worlddefaults"
)

// Options configure every store the pool creates.
type Options struct {
	// Viewer is the local player. Only the viewer's store drives Live.
	Viewer    string
	Ceiling   int
	World     worlddefaults.Defaults
	Live      store.Live
	Publisher store.Publisher
}

// Pool maps player ids to their stores and records who owns each player's
// networked data object.
type Pool struct {
	opts   Options
	stores map[string]*store.Store
	owners map[string]string
}

// New returns an empty pool. The viewer's store is created on first Join.
func New(opts Options) *Pool {
	return &Pool{
		opts:   opts,
		stores: make(map[string]*store.Store),
		owners: make(map[string]string),
	}
}

// Viewer returns the local player id.
func (p *Pool) Viewer() string { return p.opts.Viewer }

// Join returns the store for player, creating it if needed.
func (p *Pool) Join(player string) *store.Store {
	if s, ok := p.stores[player]; ok {
		return s
	}
	opts := store.Options{
		Player:    player,
		Ceiling:   p.opts.Ceiling,
		World:     p.opts.World,
		CanEdit:   func() bool { return p.CanEdit(player) },
		Publisher: p.opts.Publisher,
	}
	if player == p.opts.Viewer {
		opts.Live = p.opts.Live
	}
	s := store.New(opts)
	p.stores[player] = s
	glog.Infof("pool: %s joined", player)
	return s
}

// Leave tears down player's store.
func (p *Pool) Leave(player string) bool {
	s, ok := p.stores[player]
	if !ok {
		return false
	}
	delete(p.stores, player)
	delete(p.owners, player)
	s.Teardown()
	glog.Infof("pool: %s left", player)
	return true
}

// Deliver routes a replicated snapshot to player's store, joining it first
// if the player is new.
func (p *Pool) Deliver(player string, data []byte) *store.Store {
	s := p.Join(player)
	s.ApplyRemote(data)
	return s
}

// Local returns the viewer's store, or nil before the viewer joined.
func (p *Pool) Local() *store.Store { return p.stores[p.opts.Viewer] }

// Get returns player's store.
func (p *Pool) Get(player string) (*store.Store, bool) {
	s, ok := p.stores[player]
	return s, ok
}

// Players lists joined players in sorted order.
func (p *Pool) Players() []string {
	out := make([]string, 0, len(p.stores))
	for id := range p.stores {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SetOwner records that owner now holds player's data object. An empty
// owner restores the default, the player themselves.
func (p *Pool) SetOwner(player, owner string) {
	if owner == "" || owner == player {
		delete(p.owners, player)
		return
	}
	p.owners[player] = owner
}

// Owner returns who currently holds player's data object.
func (p *Pool) Owner(player string) string {
	if owner, ok := p.owners[player]; ok {
		return owner
	}
	return player
}

// CanEdit reports whether the viewer may mutate player's store: always for
// the viewer's own store, otherwise only while the viewer owns the object.
func (p *Pool) CanEdit(player string) bool {
	if player == p.opts.Viewer {
		return true
	}
	return p.Owner(player) == p.opts.Viewer
}
