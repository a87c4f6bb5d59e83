package relayapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/openflight/hangar/internal/persistence"
	"github.com/openflight/hangar/internal/replication"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != defaultRelayAddr {
		t.Fatalf("url = %q, want http://%s", u.String(), defaultRelayAddr)
	}

	tests := []struct {
		in   string
		want string
	}{
		{"ws://relay.example:7488/ws", "http://relay.example:7488"},
		{"wss://relay.example/ws?x=1#frag", "https://relay.example"},
		{"http://example.com:1234/path", "http://example.com:1234"},
		{"10.0.0.5:9000", "http://10.0.0.5:9000"},
	}
	for _, tt := range tests {
		u, err := parseBaseURL(tt.in)
		if err != nil {
			t.Fatalf("parseBaseURL(%q) returned error: %v", tt.in, err)
		}
		if u.String() != tt.want {
			t.Fatalf("parseBaseURL(%q) = %q, want %q", tt.in, u.String(), tt.want)
		}
	}

	if _, err := parseBaseURL("ftp://relay"); err == nil {
		t.Fatalf("parseBaseURL(ftp) returned nil error")
	}
}

func TestClient_FetchStatusFromHub(t *testing.T) {
	hub := replication.NewHub(persistence.NewMemory(), 1024)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	ava, err := hub.Connect(ctx, "ava")
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { _ = ava.Close() })
	if err := ava.Publish(ctx, "ava", []byte(`{"version":1,"slots":[],"globals":{}}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	var gotUserAgent string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		replication.StatusHandler(hub)(w, r)
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := NewClient(strings.Replace(server.URL, "http://", "ws://", 1) + "/ws")
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	status, err := c.FetchStatus(ctx)
	if err != nil {
		t.Fatalf("FetchStatus returned error: %v", err)
	}
	if status.Ceiling != 1024 || status.Sessions != 1 || len(status.Players) != 1 {
		t.Fatalf("FetchStatus = %+v", status)
	}
	p := status.Players[0]
	if p.Player != "ava" || p.Bytes != len(`{"version":1,"slots":[],"globals":{}}`) {
		t.Fatalf("player = %+v", p)
	}
	if at, ok := p.UpdatedAt(); !ok || time.Since(at) > time.Minute {
		t.Fatalf("UpdatedAt = %v, %v", at, ok)
	}
	if !strings.HasPrefix(gotUserAgent, "hangar/") {
		t.Fatalf("User-Agent = %q, want hangar/*", gotUserAgent)
	}
}

func TestClient_HTTPErrorAndDecodeError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/status":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte("{not-json"))
		case "/healthz":
			http.Error(w, "nope", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = c.FetchStatus(context.Background())
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("FetchStatus error = %v, want decode response error", err)
	}

	err = c.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "returned status 500") {
		t.Fatalf("Ping error = %v, want status 500 error", err)
	}
}

func TestPlayerStatus_NoRevision(t *testing.T) {
	if _, ok := (replication.PlayerStatus{Player: "ava"}).UpdatedAt(); ok {
		t.Fatalf("UpdatedAt reported a time without a revision")
	}
}
