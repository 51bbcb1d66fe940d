package catalog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bricsview/internal/catalog"
	"bricsview/internal/testsupport"
)

func TestDatesMissingRootIsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cat := catalog.New(cfg, nil)

	if dates := cat.Dates(); len(dates) != 0 {
		t.Fatalf("expected empty dates for missing root, got %v", dates)
	}
}

func TestDatesOrderedAscending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryRoot, "notes"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cat := catalog.New(cfg, nil)
	dates := cat.Dates()
	want := []string{"2025-01-01", "2025-01-02"}
	if len(dates) != len(want) || dates[0] != want[0] || dates[1] != want[1] {
		t.Fatalf("Dates = %v, want %v", dates, want)
	}
}

func TestDatesCachedUntilRootTouched(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000001")

	cat := catalog.New(cfg, nil)
	if got := len(cat.Dates()); got != 2 {
		t.Fatalf("initial Dates length = %d, want 2", got)
	}

	// Freeze the root mtime, then create a new date dir and restore the old
	// timestamp. The cached listing must still be served: the staleness
	// window is one level deep and keyed purely on the root mtime.
	frozen := time.Now().Add(-time.Hour)
	testsupport.SetModTime(t, cfg.Paths.LibraryRoot, frozen)
	if got := len(cat.Dates()); got != 2 {
		t.Fatalf("Dates after freeze = %d, want 2", got)
	}

	testsupport.MakeSession(t, cfg, "2025-01-03", "multisequence000001")
	testsupport.SetModTime(t, cfg.Paths.LibraryRoot, frozen)
	if got := len(cat.Dates()); got != 2 {
		t.Fatalf("Dates with restored mtime = %d, want stale 2", got)
	}

	// Touching the root invalidates the branch.
	testsupport.SetModTime(t, cfg.Paths.LibraryRoot, time.Now())
	dates := cat.Dates()
	if len(dates) != 3 || dates[2] != "2025-01-03" {
		t.Fatalf("Dates after touch = %v, want three dates ending 2025-01-03", dates)
	}
}

func TestInvalidateBypassesStalenessWindow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")

	cat := catalog.New(cfg, nil)
	if got := len(cat.Dates()); got != 1 {
		t.Fatalf("initial Dates length = %d, want 1", got)
	}

	frozen := time.Now().Add(-time.Hour)
	testsupport.SetModTime(t, cfg.Paths.LibraryRoot, frozen)
	cat.Dates()
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000001")
	testsupport.SetModTime(t, cfg.Paths.LibraryRoot, frozen)

	cat.Invalidate()
	if got := len(cat.Dates()); got != 2 {
		t.Fatalf("Dates after Invalidate = %d, want 2", got)
	}
}

func TestSequencesRequireArtifactDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	// A bare sequence directory without the artifact subdir stays invisible.
	if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryRoot, "2025-01-01", "multisequence000002"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// Non-sequence directories are ignored outright.
	if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryRoot, "2025-01-01", "calib"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cat := catalog.New(cfg, nil)
	seqs := cat.Sequences("2025-01-01")
	if len(seqs) != 1 || seqs[0] != "multisequence000001" {
		t.Fatalf("Sequences = %v, want [multisequence000001]", seqs)
	}
}

func TestSequencesUnknownDateIsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")

	cat := catalog.New(cfg, nil)
	if seqs := cat.Sequences("2024-12-31"); len(seqs) != 0 {
		t.Fatalf("expected empty sequences, got %v", seqs)
	}
}

func TestMaxDatesKeepsNewest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxDates(2))
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-03", "multisequence000001")

	cat := catalog.New(cfg, nil)
	dates := cat.Dates()
	want := []string{"2025-01-02", "2025-01-03"}
	if len(dates) != 2 || dates[0] != want[0] || dates[1] != want[1] {
		t.Fatalf("Dates = %v, want %v", dates, want)
	}
}

func TestMaxSequencesKeepsNewest(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithMaxSequences(1))
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000002")

	cat := catalog.New(cfg, nil)
	seqs := cat.Sequences("2025-01-01")
	if len(seqs) != 1 || seqs[0] != "multisequence000002" {
		t.Fatalf("Sequences = %v, want [multisequence000002]", seqs)
	}
}

func TestLatestPrefersNewestDateWithSequences(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000002")
	// Newest date has no visible sequence, so Latest falls back one date.
	if err := os.MkdirAll(filepath.Join(cfg.Paths.LibraryRoot, "2025-01-02"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cat := catalog.New(cfg, nil)
	latest, ok := cat.Latest()
	if !ok {
		t.Fatal("expected a latest session")
	}
	want := catalog.Session{Date: "2025-01-01", Sequence: "multisequence000002"}
	if latest != want {
		t.Fatalf("Latest = %v, want %v", latest, want)
	}
}

func TestContains(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")

	cat := catalog.New(cfg, nil)
	if !cat.Contains(catalog.Session{Date: "2025-01-01", Sequence: "multisequence000001"}) {
		t.Fatal("expected session to be discoverable")
	}
	if cat.Contains(catalog.Session{Date: "2025-01-01", Sequence: "multisequence000009"}) {
		t.Fatal("expected unknown sequence to be absent")
	}
}

func TestSessionsFlattened(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000001")
	testsupport.MakeSession(t, cfg, "2025-01-02", "multisequence000002")

	cat := catalog.New(cfg, nil)
	sessions := cat.Sessions()
	if len(sessions) != 3 {
		t.Fatalf("Sessions length = %d, want 3", len(sessions))
	}
	last := sessions[len(sessions)-1]
	if last.Date != "2025-01-02" || last.Sequence != "multisequence000002" {
		t.Fatalf("last session = %v", last)
	}
}
