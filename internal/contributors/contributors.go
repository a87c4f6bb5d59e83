// Package contributors tracks which project contributors are present in the
// world.
package contributors

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/glog"
)

type listFile struct {
	Contributors []string `json:"Contributers"`
}

// Parse reads the contributor list document: {"Contributers": ["name", ...]}.
func Parse(raw []byte) ([]string, error) {
	var f listFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse contributors: %w", err)
	}
	out := make([]string, 0, len(f.Contributors))
	for _, name := range f.Contributors {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out, nil
}

// Load reads the contributor list from path. A missing file is an empty list.
func Load(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read contributors: %w", err)
	}
	return Parse(raw)
}

// Tracker follows contributors joining and leaving.
type Tracker struct {
	known   map[string]bool
	order   []string
	local   string
	present map[string]bool

	// HideLocal keeps the local player's status private. It does not
	// affect InWorld.
	HideLocal bool
}

// NewTracker builds a tracker for the local player and checks the players
// already present.
func NewTracker(list []string, local string, players []string) *Tracker {
	t := &Tracker{
		known:   make(map[string]bool, len(list)),
		local:   local,
		present: make(map[string]bool),
	}
	for _, name := range list {
		if !t.known[name] {
			t.known[name] = true
			t.order = append(t.order, name)
		}
	}
	t.Joined(local)
	for _, p := range players {
		if p != local {
			t.Joined(p)
		}
	}
	if !t.InWorld() {
		glog.Info("contributors: none in the world")
	}
	return t
}

// IsContributor reports whether name is on the list.
func (t *Tracker) IsContributor(name string) bool { return t.known[name] }

// Joined records a player arriving.
func (t *Tracker) Joined(name string) {
	if !t.known[name] {
		return
	}
	t.present[name] = true
	glog.Infof("contributors: %s is a contributor", name)
}

// Left records a player leaving.
func (t *Tracker) Left(name string) {
	if !t.present[name] {
		return
	}
	delete(t.present, name)
	glog.Infof("contributors: %s left, %d remaining", name, len(t.present))
}

// InWorld reports whether at least one contributor is present.
func (t *Tracker) InWorld() bool { return len(t.present) > 0 }

// Present counts contributors in the world.
func (t *Tracker) Present() int { return len(t.present) }

// LocalIsContributor reports the local player's public status.
func (t *Tracker) LocalIsContributor() bool {
	return !t.HideLocal && t.known[t.local]
}

// String lists every contributor, comma separated.
func (t *Tracker) String() string {
	return strings.Join(t.order, ", ")
}
