package checkpoint

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"bricsview/internal/config"
)

// Target is the outcome of resolving a session directory.
type Target struct {
	// Dir is the absolute artifact directory the resolution ran against.
	Dir string
	// Path is the newest checkpoint file; empty when Found is false.
	Path string
	// Version is the integer extracted from the checkpoint filename.
	Version int
	// Found reports whether any checkpoint matched.
	Found bool
}

// Key identifies the resolved target for cache lookups.
func (t Target) Key() string {
	return t.Dir + "#" + strconv.Itoa(t.Version)
}

// Resolver finds the highest-versioned checkpoint under a session directory.
type Resolver struct {
	ckptDir string
	pattern *regexp.Regexp
}

// NewResolver builds a resolver from the configured checkpoint naming scheme.
func NewResolver(cfg *config.Config) *Resolver {
	exts := make([]string, 0, len(cfg.Artifacts.Extensions))
	for _, ext := range cfg.Artifacts.Extensions {
		exts = append(exts, regexp.QuoteMeta(ext))
	}
	expr := fmt.Sprintf(`^%s(\d+)(?:_rank\d+)?\.(?:%s)$`,
		regexp.QuoteMeta(cfg.Artifacts.Prefix), strings.Join(exts, "|"))
	return &Resolver{
		ckptDir: cfg.Artifacts.CkptDir,
		pattern: regexp.MustCompile(expr),
	}
}

type match struct {
	path    string
	version int
}

// ResolveLatest returns the newest checkpoint under sessionDir. It scans the
// canonical checkpoint subdirectory first and falls back to a recursive walk
// of the whole session directory when the canonical location is empty. Files
// carrying a _rank suffix for the same version are deduplicated by resolved
// absolute path so they never count as distinct versions.
func (r *Resolver) ResolveLatest(sessionDir string) Target {
	target := Target{Dir: sessionDir}
	if sessionDir == "" {
		return target
	}

	seen := make(map[string]struct{})
	matches := r.scanDir(filepath.Join(sessionDir, r.ckptDir), seen)
	// Some trees place checkpoints directly in the session directory.
	matches = append(matches, r.scanDir(sessionDir, seen)...)
	if len(matches) == 0 {
		matches = r.scanRecursive(sessionDir, seen)
	}
	if len(matches) == 0 {
		return target
	}

	best := matches[0]
	for _, m := range matches[1:] {
		if m.version > best.version {
			best = m
		}
	}
	target.Path = best.path
	target.Version = best.version
	target.Found = true
	return target
}

func (r *Resolver) scanDir(dir string, seen map[string]struct{}) []match {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var matches []match
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m, ok := r.match(filepath.Join(dir, entry.Name()), entry.Name(), seen); ok {
			matches = append(matches, m)
		}
	}
	return matches
}

func (r *Resolver) scanRecursive(root string, seen map[string]struct{}) []match {
	var matches []match
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable branches degrade to "not found" for that branch.
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if m, ok := r.match(path, d.Name(), seen); ok {
			matches = append(matches, m)
		}
		return nil
	})
	return matches
}

func (r *Resolver) match(path, name string, seen map[string]struct{}) (match, bool) {
	groups := r.pattern.FindStringSubmatch(name)
	if groups == nil {
		return match{}, false
	}
	version, err := strconv.Atoi(groups[1])
	if err != nil {
		return match{}, false
	}

	resolved := path
	if abs, err := filepath.Abs(path); err == nil {
		resolved = abs
	}
	if real, err := filepath.EvalSymlinks(resolved); err == nil {
		resolved = real
	}
	if _, dup := seen[resolved]; dup {
		return match{}, false
	}
	seen[resolved] = struct{}{}
	return match{path: resolved, version: version}, true
}
