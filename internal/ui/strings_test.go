package ui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"  short ", 10, "short"},
		{"exactly", 7, "exactly"},
		{"much too long", 8, "much ..."},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	got := truncateMiddle("OFS1:abcdefghijklmnop;", 9)
	if got != "OFS1…nop;" {
		t.Fatalf("truncateMiddle = %q, want %q", got, "OFS1…nop;")
	}
}

func TestWrapHard(t *testing.T) {
	lines := wrapHard("abcdefghij", 4)
	if strings.Join(lines, "|") != "abcd|efgh|ij" {
		t.Fatalf("wrapHard = %q", lines)
	}
	if got := wrapHard("", 4); len(got) != 1 || got[0] != "" {
		t.Fatalf("wrapHard empty = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight long = %q", got)
	}
}
