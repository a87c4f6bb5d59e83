package contributors

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	got, err := Parse([]byte(`{"Contributers": ["Mattshark", " Happyrobot33 ", ""]}`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(got) != 2 || got[0] != "Mattshark" || got[1] != "Happyrobot33" {
		t.Fatalf("Parse = %q", got)
	}
	if _, err := Parse([]byte(`{`)); err == nil {
		t.Fatalf("Parse accepted invalid JSON")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil || len(got) != 0 {
		t.Fatalf("Load = (%q, %v), want empty", got, err)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contributors.json")
	if err := os.WriteFile(path, []byte(`{"Contributers": ["a"]}`), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	got, err := Load(path)
	if err != nil || len(got) != 1 {
		t.Fatalf("Load = (%q, %v)", got, err)
	}
}

func TestTracker_JoinLeave(t *testing.T) {
	tr := NewTracker([]string{"amy", "bob"}, "me", []string{"amy", "carl"})

	if !tr.InWorld() || tr.Present() != 1 {
		t.Fatalf("InWorld = %v, Present = %d", tr.InWorld(), tr.Present())
	}
	tr.Joined("bob")
	tr.Left("amy")
	if !tr.InWorld() {
		t.Fatalf("InWorld = false with bob present")
	}
	tr.Left("bob")
	tr.Left("carl")
	if tr.InWorld() {
		t.Fatalf("InWorld = true after all contributors left")
	}
	if got := tr.String(); got != "amy, bob" {
		t.Fatalf("String = %q", got)
	}
}

func TestTracker_HideLocal(t *testing.T) {
	tr := NewTracker([]string{"me"}, "me", nil)
	if !tr.LocalIsContributor() {
		t.Fatalf("LocalIsContributor = false")
	}
	tr.HideLocal = true
	if tr.LocalIsContributor() {
		t.Fatalf("LocalIsContributor = true while hidden")
	}
	if !tr.InWorld() {
		t.Fatalf("hiding changed InWorld")
	}
}
