package replication

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

// PlayerStatus is one connected player in a hub status report.
type PlayerStatus struct {
	Player   string `json:"player"`
	Sessions int    `json:"sessions"`
	Owner    string `json:"owner,omitempty"`
	Revision string `json:"revision,omitempty"`
	Bytes    int    `json:"bytes"`
}

// UpdatedAt returns when the player's current revision was saved. Players
// that never published have no revision.
func (p PlayerStatus) UpdatedAt() (time.Time, bool) {
	id, err := ulid.ParseStrict(p.Revision)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()), true
}

// Status describes a hub.
type Status struct {
	Ceiling  int            `json:"ceiling"`
	Sessions int            `json:"sessions"`
	Players  []PlayerStatus `json:"players"`
}

// Status reports connected players in sorted order.
func (h *Hub) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := Status{Ceiling: h.ceiling, Sessions: len(h.sessions)}
	for _, p := range h.presentLocked() {
		latest := h.latest[p]
		out.Players = append(out.Players, PlayerStatus{
			Player:   p,
			Sessions: h.present[p],
			Owner:    h.owners[p],
			Revision: latest.Revision,
			Bytes:    len(latest.Data),
		})
	}
	return out
}

// StatusHandler serves the hub status as JSON.
func StatusHandler(h *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(h.Status()); err != nil {
			glog.Warningf("replication: write status: %v", err)
		}
	}
}
