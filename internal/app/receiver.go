package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/openflight/hangar/internal/replication"
	"github.com/openflight/hangar/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
)

var (
	ErrOffline     = errors.New("relay not connected")
	errLinkDropped = errors.New("relay connection lost")
)

// DialFunc opens a fresh transport.
type DialFunc func(ctx context.Context) (replication.Transport, error)

// Link holds the current transport, if any. The stores publish through it.
type Link struct {
	mu        sync.Mutex
	transport replication.Transport
}

func (l *Link) set(t replication.Transport) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.transport = t
}

func (l *Link) current() replication.Transport {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transport
}

// Publish uploads through the current transport.
func (l *Link) Publish(ctx context.Context, player string, data []byte) error {
	t := l.current()
	if t == nil {
		return ErrOffline
	}
	return t.Publish(ctx, player, data)
}

// SetOwner hands a data object over through the current transport.
func (l *Link) SetOwner(ctx context.Context, player, owner string) error {
	t := l.current()
	if t == nil {
		return ErrOffline
	}
	return t.SetOwner(ctx, player, owner)
}

// StartReceiver launches a background goroutine that keeps a transport open
// and copies its events into inbox. It returns immediately.
func StartReceiver(ctx context.Context, inbox *state.Inbox, link *Link, dial DialFunc, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	go func() {
		failures := 0
		for {
			if err := receive(ctx, inbox, link, dial); err != nil {
				failures++
				glog.Warningf("relay: %v", err)
			} else {
				failures = 0
			}
			wait := calculateBackoff(failures, interval)
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
		}
	}()
}

// receive runs one connection until it drops. A nil error means the
// context ended.
func receive(ctx context.Context, inbox *state.Inbox, link *Link, dial DialFunc) error {
	t, err := dial(ctx)
	if err != nil {
		inbox.Disconnected(err)
		return err
	}
	defer t.Close()

	link.set(t)
	defer link.set(nil)
	inbox.Connected(t.Session())
	glog.Infof("relay: connected (session %s)", t.Session())

	for {
		select {
		case <-ctx.Done():
			inbox.Disconnected(nil)
			return nil
		case ev, ok := <-t.Events():
			if !ok {
				inbox.Disconnected(errLinkDropped)
				return errLinkDropped
			}
			inbox.Push(ev)
		}
	}
}

// calculateBackoff returns base doubled once per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}
