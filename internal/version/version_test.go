package version

import (
	"strings"
	"testing"
)

// linked sets the build variables for one test and restores them afterwards
func linked(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, BuildDate
	t.Cleanup(func() { Version, Commit, BuildDate = v, c, d })
	Version, Commit, BuildDate = version, commit, date
}

func TestInfo(t *testing.T) {
	tests := []struct {
		name   string
		commit string
		want   string
	}{
		{"no commit linked", "unknown", "1.2.0"},
		{"short hash kept out", "abc", "1.2.0"},
		{"exactly seven", "abc1234", "1.2.0"},
		{"full hash shortened", "abc1234567890", "1.2.0 (abc1234)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			linked(t, "1.2.0", tt.commit, "unknown")
			if got := Info(); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFull(t *testing.T) {
	linked(t, "1.2.0", "deadbeefcafe", "2026-01-02")

	got := Full()
	lines := strings.Split(got, "\n")
	want := []string{"batchkit version 1.2.0", "Commit: deadbeefcafe", "Built: 2026-01-02"}
	if len(lines) != len(want) {
		t.Fatalf("Full() = %q, want %d lines", got, len(want))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestCurrent(t *testing.T) {
	linked(t, "2.0.0", "c0ffee", "today")

	if got := Current(); got != (Build{Version: "2.0.0", Commit: "c0ffee", BuildDate: "today"}) {
		t.Errorf("Current() = %+v", got)
	}
}
