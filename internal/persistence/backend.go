// Package persistence keeps each player's serialized settings between
// sessions. The relay reads the latest record when a player joins and
// writes a new revision on every upload.
package persistence

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrClosed = errors.New("persistence: backend closed")

// Record is one stored revision of a player's data.
type Record struct {
	Player    string
	Revision  ulid.ULID
	Data      []byte
	UpdatedAt time.Time
}

// Backend stores the latest data per player.
type Backend interface {
	Load(ctx context.Context, player string) (Record, bool, error)
	Save(ctx context.Context, player string, data []byte) (Record, error)
	Players(ctx context.Context) ([]string, error)
	Close() error
}

func newRecord(player string, data []byte) Record {
	now := time.Now().UTC()
	return Record{
		Player:    player,
		Revision:  ulid.Make(),
		Data:      append([]byte(nil), data...),
		UpdatedAt: now,
	}
}

// Memory is an in-process Backend.
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
	closed  bool
}

var _ Backend = (*Memory)(nil)

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Load(_ context.Context, player string) (Record, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Record{}, false, ErrClosed
	}
	rec, ok := m.records[player]
	if ok {
		rec.Data = append([]byte(nil), rec.Data...)
	}
	return rec, ok, nil
}

func (m *Memory) Save(_ context.Context, player string, data []byte) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Record{}, ErrClosed
	}
	rec := newRecord(player, data)
	m.records[player] = rec
	return rec, nil
}

func (m *Memory) Players(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	out := make([]string, 0, len(m.records))
	for p := range m.records {
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
