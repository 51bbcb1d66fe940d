package testsupport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"bricsview/internal/config"
)

// MakeSession creates <root>/<date>/<sequence>/<artifact_dir>/<ckpt_dir> and
// returns the artifact directory path.
func MakeSession(t testing.TB, cfg *config.Config, date, sequence string) string {
	t.Helper()

	artifactDir := cfg.SessionDir(date, sequence)
	if err := os.MkdirAll(filepath.Join(artifactDir, cfg.Artifacts.CkptDir), 0o755); err != nil {
		t.Fatalf("create session tree: %v", err)
	}
	return artifactDir
}

// WriteCheckpoint writes a checkpoint file with the given name under the
// session's checkpoint directory and returns its path.
func WriteCheckpoint(t testing.TB, cfg *config.Config, artifactDir, name string) string {
	t.Helper()

	path := filepath.Join(artifactDir, cfg.Artifacts.CkptDir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("ckpt-blob:"+name), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SetModTime forces a directory or file modification time, used to simulate
// out-of-band tree changes that do not touch parent timestamps.
func SetModTime(t testing.TB, path string, modTime time.Time) {
	t.Helper()

	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
