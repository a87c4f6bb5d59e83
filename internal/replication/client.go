package replication

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a websocket Transport.
type Client struct {
	conn    *websocket.Conn
	player  string
	session string
	events  chan Event
	done    chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

var _ Transport = (*Client)(nil)

// Dial connects to a relay at url as player and completes the handshake.
func Dial(ctx context.Context, url, player string) (*Client, error) {
	player = strings.TrimSpace(player)
	if player == "" {
		return nil, fmt.Errorf("%w: empty player", ErrBadHandshake)
	}
	d := websocket.Dialer{HandshakeTimeout: handshakeWait}
	conn, resp, err := d.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(Request{Op: OpHello, Player: player}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	var welcome Event
	if err := conn.ReadJSON(&welcome); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("welcome: %w", err)
	}
	if welcome.Kind != KindWelcome || welcome.Session == "" {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: got %q", ErrBadHandshake, welcome.Kind)
	}

	c := &Client{
		conn:    conn,
		player:  player,
		session: welcome.Session,
		events:  make(chan Event, defaultQueue),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.events)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPingHandler(func(data string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})
	for {
		var ev Event
		if err := c.conn.ReadJSON(&ev); err != nil {
			return
		}
		select {
		case c.events <- ev:
		case <-c.done:
			return
		}
	}
}

// Player returns the player this client speaks for.
func (c *Client) Player() string { return c.player }

func (c *Client) Session() string { return c.session }

func (c *Client) Events() <-chan Event { return c.events }

func (c *Client) Publish(_ context.Context, player string, data []byte) error {
	return c.write(Request{Op: OpPublish, Player: player, Data: data})
}

func (c *Client) SetOwner(_ context.Context, player, owner string) error {
	return c.write(Request{Op: OpOwner, Player: player, Owner: owner})
}

func (c *Client) write(req Request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(req); err != nil {
		return fmt.Errorf("%s: %w", req.Op, err)
	}
	return nil
}

// Close says goodbye and drops the connection. Events is closed once the
// read loop notices.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}
