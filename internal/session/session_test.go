package session

import (
	"context"
	"testing"

	"github.com/openflight/hangar/internal/codec"
	"github.com/openflight/hangar/internal/globals"
	"github.com/openflight/hangar/internal/replication"
	"github.com/openflight/hangar/internal/slots"
	"github.com/openflight/hangar/internal/store"
	"github.com/openflight/hangar/internal/worlddefaults"
)

type ownerCalls struct {
	player, owner string
}

func (o *ownerCalls) SetOwner(_ context.Context, player, owner string) error {
	o.player, o.owner = player, owner
	return nil
}

func newSession(owners Owners) *Session {
	return New(Options{
		Viewer:       "me",
		Ceiling:      4096,
		Live:         store.NewMemoryLive(worlddefaults.Builtin().Payload),
		Owners:       owners,
		Contributors: []string{"amy"},
	})
}

func snapshot(t *testing.T, player string, names ...string) replication.Event {
	t.Helper()
	list := make([]slots.Slot, len(names))
	for i, n := range names {
		list[i] = slots.Slot{Name: n}
	}
	data, err := codec.Marshal(codec.NewDatabase(list, globals.Defaults()))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return replication.Event{Kind: replication.KindSnapshot, Player: player, Data: data}
}

func TestSession_ApplyJoinSnapshotLeave(t *testing.T) {
	s := newSession(nil)
	s.Apply(replication.Event{Kind: replication.KindWelcome, Session: "x", Player: "me"})
	s.Apply(replication.Event{Kind: replication.KindJoined, Player: "me"})
	s.Apply(snapshot(t, "me"))

	if !s.Pool().Local().IsInitialized() {
		t.Fatalf("local store not initialized")
	}

	s.Apply(replication.Event{Kind: replication.KindJoined, Player: "amy"})
	s.Apply(snapshot(t, "amy", "Loops"))
	if !s.Contributors().InWorld() {
		t.Fatalf("contributor not tracked")
	}
	if err := s.Controls().SetReference("amy"); err != nil {
		t.Fatalf("SetReference: %v", err)
	}

	s.Apply(replication.Event{Kind: replication.KindLeft, Player: "amy"})
	if _, ok := s.Pool().Get("amy"); ok {
		t.Fatalf("amy still in pool")
	}
	if !s.Controls().IsLocal() {
		t.Fatalf("panel still references departed player")
	}
	if s.Contributors().InWorld() {
		t.Fatalf("contributor still tracked after leaving")
	}
}

func TestSession_WelcomeResetsForeignPlayers(t *testing.T) {
	s := newSession(nil)
	s.Apply(snapshot(t, "me"))
	s.Apply(snapshot(t, "bob", "x"))

	s.Apply(replication.Event{Kind: replication.KindWelcome, Player: "me"})
	if got := s.Pool().Players(); len(got) != 1 || got[0] != "me" {
		t.Fatalf("Players = %v, want [me]", got)
	}
	if !s.Pool().Local().IsInitialized() {
		t.Fatalf("local store reset by reconnect")
	}
}

func TestSession_OwnerAndErrors(t *testing.T) {
	calls := &ownerCalls{}
	s := newSession(calls)
	s.Apply(snapshot(t, "me"))
	s.Apply(snapshot(t, "bob"))

	s.Apply(replication.Event{Kind: replication.KindOwner, Player: "bob", Owner: "me"})
	bob, _ := s.Pool().Get("bob")
	if !bob.CanEdit() {
		t.Fatalf("bob's store not editable after ownership transfer")
	}

	s.Apply(replication.Event{Kind: replication.KindError, Error: "too large"})
	if msg, at := s.LastError(); msg != "too large" || at.IsZero() {
		t.Fatalf("LastError = %q at %v", msg, at)
	}

	if err := s.GiveControl(context.Background(), "bob"); err != nil {
		t.Fatalf("GiveControl: %v", err)
	}
	if calls.player != "me" || calls.owner != "bob" {
		t.Fatalf("SetOwner called with %+v", calls)
	}
}
