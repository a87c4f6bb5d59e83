package replication

import (
	"context"
	"errors"
)

var (
	ErrTooLarge     = errors.New("replication: snapshot exceeds transport limit")
	ErrNotOwner     = errors.New("replication: session does not own that player's data")
	ErrClosed       = errors.New("replication: session closed")
	ErrBadHandshake = errors.New("replication: bad handshake")
)

// EventKind tags an Event.
type EventKind string

const (
	KindWelcome  EventKind = "welcome"
	KindJoined   EventKind = "joined"
	KindLeft     EventKind = "left"
	KindSnapshot EventKind = "snapshot"
	KindOwner    EventKind = "owner"
	KindError    EventKind = "error"
)

// Event is one change delivered to a session. On the wire it is a JSON text
// frame.
type Event struct {
	Kind     EventKind `json:"kind"`
	Session  string    `json:"session,omitempty"`
	Player   string    `json:"player,omitempty"`
	Owner    string    `json:"owner,omitempty"`
	Revision string    `json:"revision,omitempty"`
	Data     []byte    `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Op tags a client request.
type Op string

const (
	OpHello   Op = "hello"
	OpPublish Op = "publish"
	OpOwner   Op = "owner"
)

// Request is a client-to-hub frame.
type Request struct {
	Op     Op     `json:"op"`
	Player string `json:"player,omitempty"`
	Owner  string `json:"owner,omitempty"`
	Data   []byte `json:"data,omitempty"`
}

// Transport is one player's connection to a Hub.
type Transport interface {
	// Publish uploads data as player's snapshot.
	Publish(ctx context.Context, player string, data []byte) error
	// SetOwner hands player's data object to owner.
	SetOwner(ctx context.Context, player, owner string) error
	// Events is closed when the transport goes away.
	Events() <-chan Event
	Session() string
	Close() error
}
