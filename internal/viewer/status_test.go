package viewer_test

import (
	"testing"

	"bricsview/internal/viewer"
)

func TestDescribeLevels(t *testing.T) {
	cases := []struct {
		name  string
		state viewer.DisplayState
		want  viewer.Level
	}{
		{
			name:  "idle is nominal",
			state: viewer.DisplayState{Status: viewer.StatusIdle, StatusText: "idle"},
			want:  viewer.LevelNominal,
		},
		{
			name:  "loaded is nominal",
			state: viewer.DisplayState{Status: viewer.StatusLoaded, StatusText: "loaded ckpt_6999.pt (version 6999, cache)"},
			want:  viewer.LevelNominal,
		},
		{
			name:  "loading is busy",
			state: viewer.DisplayState{Status: viewer.StatusLoading, StatusText: "loading from /lib/2025-01-01"},
			want:  viewer.LevelBusy,
		},
		{
			name:  "not found is a problem",
			state: viewer.DisplayState{Status: viewer.StatusNotFound, StatusText: "no checkpoints found under /lib/x"},
			want:  viewer.LevelProblem,
		},
		{
			name:  "load error is a problem",
			state: viewer.DisplayState{Status: viewer.StatusError, StatusText: "load failed: short read"},
			want:  viewer.LevelProblem,
		},
		{
			// Word matching is suppressed while busy so transient banners
			// like "loading after error" stay yellow.
			name:  "busy wins over problem words",
			state: viewer.DisplayState{Status: viewer.StatusLoading, StatusText: "loading retry after error"},
			want:  viewer.LevelBusy,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, level := viewer.Describe(tc.state)
			if level != tc.want {
				t.Fatalf("Describe level = %v, want %v", level, tc.want)
			}
		})
	}
}

func TestDescribeFallbackText(t *testing.T) {
	text, level := viewer.Describe(viewer.DisplayState{Status: viewer.StatusIdle})
	if text != "idle" || level != viewer.LevelNominal {
		t.Fatalf("Describe = (%q, %v), want (idle, nominal)", text, level)
	}

	text, level = viewer.Describe(viewer.DisplayState{Status: viewer.StatusLoading})
	if text != "loading..." || level != viewer.LevelBusy {
		t.Fatalf("Describe = (%q, %v), want (loading..., busy)", text, level)
	}
}

func TestLevelString(t *testing.T) {
	if viewer.LevelNominal.String() != "nominal" || viewer.LevelBusy.String() != "busy" || viewer.LevelProblem.String() != "problem" {
		t.Fatal("unexpected level names")
	}
}
