package replication

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 5 * time.Second
	handshakeWait = 5 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = pongWait * 9 / 10
)

// Server exposes a Hub over websockets.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer wraps hub.
func NewServer(hub *Hub) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler serves one websocket per player. The first frame must be a hello
// request naming the player.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			glog.V(1).Infof("replication: upgrade: %v", err)
			return
		}
		defer conn.Close()
		// base64 inflates snapshot bytes by a third
		conn.SetReadLimit(int64(s.hub.Ceiling())*2 + 4096)

		sess, err := s.handshake(r.Context(), conn)
		if err != nil {
			glog.Warningf("replication: handshake from %s: %v", r.RemoteAddr, err)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
				time.Now().Add(time.Second))
			return
		}
		defer sess.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		errs := make(chan Event, 8)

		go s.writeLoop(ctx, cancel, conn, sess, errs)

		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			var req Request
			if err := conn.ReadJSON(&req); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					glog.V(1).Infof("replication: read from %s: %v", sess.Player(), err)
				}
				return
			}
			var opErr error
			switch req.Op {
			case OpPublish:
				opErr = sess.Publish(ctx, req.Player, req.Data)
			case OpOwner:
				opErr = sess.SetOwner(ctx, req.Player, req.Owner)
			default:
				opErr = errors.New("unknown op " + string(req.Op))
			}
			if opErr != nil {
				select {
				case errs <- Event{Kind: KindError, Player: req.Player, Error: opErr.Error()}:
				default:
				}
			}
		}
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (*Session, error) {
	_ = conn.SetReadDeadline(time.Now().Add(handshakeWait))
	var hello Request
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, err
	}
	if hello.Op != OpHello {
		return nil, ErrBadHandshake
	}
	return s.hub.Connect(ctx, hello.Player)
}

func (s *Server) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sess *Session, errs <-chan Event) {
	defer cancel()
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		var ev Event
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				_ = conn.Close()
				return
			}
			continue
		case ev = <-errs:
		case next, ok := <-sess.Events():
			if !ok {
				// dropped by the hub
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "session dropped"),
					time.Now().Add(time.Second))
				_ = conn.Close()
				return
			}
			ev = next
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			_ = conn.Close()
			return
		}
	}
}
