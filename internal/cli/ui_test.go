package cli

import (
	"strings"
	"testing"
)

func TestStatsLine(t *testing.T) {
	tests := []struct {
		name      string
		resources int
		marks     int
		cached    bool
		want      []string
	}{
		{"fresh", 2, 14, false, []string{"2 datasets", "14 marks", "rendered"}},
		{"cached singular", 1, 1, true, []string{"1 dataset", "1 mark", "cached"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statsLine(tt.resources, tt.marks, tt.cached)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("statsLine() = %q, missing %q", got, w)
				}
			}
		})
	}
}

func TestStatusLine(t *testing.T) {
	got := statusWarning.line("%d stale", 3)
	if !strings.Contains(got, "!") || !strings.Contains(got, "3 stale") {
		t.Errorf("warning line = %q", got)
	}
}
