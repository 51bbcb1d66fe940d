package checkpoint_test

import (
	"os"
	"path/filepath"
	"testing"

	"bricsview/internal/checkpoint"
	"bricsview/internal/testsupport"
)

func TestResolveLatestPicksMaxVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_7.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_10.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_10_rank0.pt")

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if !target.Found {
		t.Fatal("expected a resolved checkpoint")
	}
	if target.Version != 10 {
		t.Fatalf("Version = %d, want 10", target.Version)
	}
	base := filepath.Base(target.Path)
	if base != "ckpt_10.pt" && base != "ckpt_10_rank0.pt" {
		t.Fatalf("Path = %q, want one of the version-10 files", target.Path)
	}
}

func TestResolveLatestNumericNotLexicographic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_999.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_6999.pt")

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if target.Version != 6999 {
		t.Fatalf("Version = %d, want 6999", target.Version)
	}
}

func TestResolveLatestIgnoresNonMatchingNames(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_5.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_final.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "model_9.pt")
	testsupport.WriteCheckpoint(t, cfg, dir, "ckpt_9.onnx")

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if target.Version != 5 {
		t.Fatalf("Version = %d, want 5", target.Version)
	}
}

func TestResolveLatestChecksSessionRoot(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	// Checkpoint placed next to, not inside, the ckpts directory.
	if err := os.WriteFile(filepath.Join(dir, "ckpt_3.pth"), []byte("blob"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if !target.Found || target.Version != 3 {
		t.Fatalf("target = %+v, want version 3 found", target)
	}
}

func TestResolveLatestRecursiveFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")
	nested := filepath.Join(dir, "runs", "attempt2", "ckpts")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(nested, "ckpt_42.pt"), []byte("blob"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if !target.Found || target.Version != 42 {
		t.Fatalf("target = %+v, want version 42 via recursive fallback", target)
	}
}

func TestResolveLatestEmptyTree(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := testsupport.MakeSession(t, cfg, "2025-01-01", "multisequence000001")

	target := checkpoint.NewResolver(cfg).ResolveLatest(dir)
	if target.Found {
		t.Fatalf("expected not found, got %+v", target)
	}
	if target.Dir != dir {
		t.Fatalf("Dir = %q, want %q", target.Dir, dir)
	}
}

func TestResolveLatestMissingDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	target := checkpoint.NewResolver(cfg).ResolveLatest(filepath.Join(cfg.Paths.LibraryRoot, "nope"))
	if target.Found {
		t.Fatalf("expected not found for missing dir, got %+v", target)
	}
}

func TestTargetKeyDistinguishesVersions(t *testing.T) {
	a := checkpoint.Target{Dir: "/x", Version: 1}
	b := checkpoint.Target{Dir: "/x", Version: 2}
	if a.Key() == b.Key() {
		t.Fatal("expected distinct keys for distinct versions")
	}
}
