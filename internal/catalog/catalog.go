package catalog

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"bricsview/internal/config"
	"bricsview/internal/logging"
)

// Session identifies one capture/processing unit by value.
type Session struct {
	Date     string `json:"date"`
	Sequence string `json:"sequence"`
}

// String renders the session as "<date>/<sequence>".
func (s Session) String() string {
	return s.Date + "/" + s.Sequence
}

// IsZero reports whether the session is unset.
func (s Session) IsZero() bool {
	return s.Date == "" && s.Sequence == ""
}

type dateEntry struct {
	modTime   time.Time
	sequences []string
}

// Catalog scans the library root for sessions and caches listings keyed by
// directory modification time.
type Catalog struct {
	cfg    *config.Config
	logger *slog.Logger

	mu          sync.Mutex
	rootModTime time.Time
	rootCached  bool
	dates       []string
	perDate     map[string]dateEntry
}

// New constructs a catalog over the configured library root.
func New(cfg *config.Config, logger *slog.Logger) *Catalog {
	return &Catalog{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "catalog"),
		perDate: make(map[string]dateEntry),
	}
}

// Dates returns date directory names in ascending order; the latest date is
// the last element. Results are served from cache while the root directory's
// modification time is unchanged.
func (c *Catalog) Dates() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.datesLocked()...)
}

func (c *Catalog) datesLocked() []string {
	root := c.cfg.Paths.LibraryRoot

	info, err := os.Stat(root)
	if err != nil {
		c.rootCached = false
		c.dates = nil
		return nil
	}

	if c.rootCached && info.ModTime().Equal(c.rootModTime) {
		return c.dates
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		// Keep serving the previous listing; a transient read failure must
		// not blank the session dropdowns.
		c.logger.Warn("library root unreadable",
			logging.String(logging.FieldEventType, "catalog_scan_failed"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "session list may be stale"))
		return c.dates
	}

	dates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if config.IsDateName(entry.Name()) {
			dates = append(dates, entry.Name())
		}
	}
	sort.Strings(dates)
	if max := c.cfg.Catalog.MaxDates; max > 0 && len(dates) > max {
		dates = dates[len(dates)-max:]
	}

	// Drop cached branches for dates that disappeared.
	known := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		known[d] = struct{}{}
	}
	for d := range c.perDate {
		if _, ok := known[d]; !ok {
			delete(c.perDate, d)
		}
	}

	c.dates = dates
	c.rootModTime = info.ModTime()
	c.rootCached = true
	c.logger.Debug("rescanned library root", logging.Int("date_count", len(dates)))
	return c.dates
}

// Sequences returns sequence names under the given date in ascending order.
// Only directories whose name carries the sequence prefix and which contain
// the artifact subdirectory are visible.
func (c *Catalog) Sequences(date string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sequencesLocked(date)...)
}

func (c *Catalog) sequencesLocked(date string) []string {
	if date == "" {
		return nil
	}
	dateDir := filepath.Join(c.cfg.Paths.LibraryRoot, date)

	info, err := os.Stat(dateDir)
	if err != nil || !info.IsDir() {
		delete(c.perDate, date)
		return nil
	}

	if cached, ok := c.perDate[date]; ok && info.ModTime().Equal(cached.modTime) {
		return cached.sequences
	}

	entries, err := os.ReadDir(dateDir)
	if err != nil {
		c.logger.Warn("date directory unreadable",
			logging.String(logging.FieldEventType, "catalog_scan_failed"),
			logging.String("date", date),
			logging.Error(err))
		if cached, ok := c.perDate[date]; ok {
			return cached.sequences
		}
		return nil
	}

	sequences := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, c.cfg.Catalog.SequencePrefix) {
			continue
		}
		artifactDir := filepath.Join(dateDir, name, c.cfg.Artifacts.Dir)
		if stat, err := os.Stat(artifactDir); err != nil || !stat.IsDir() {
			continue
		}
		sequences = append(sequences, name)
	}
	sort.Strings(sequences)
	if max := c.cfg.Catalog.MaxSequences; max > 0 && len(sequences) > max {
		sequences = sequences[len(sequences)-max:]
	}

	c.perDate[date] = dateEntry{modTime: info.ModTime(), sequences: sequences}
	c.logger.Debug("rescanned date directory",
		logging.String("date", date),
		logging.Int("sequence_count", len(sequences)))
	return sequences
}

// Sessions returns every discoverable session, dates ascending and sequences
// ascending within each date.
func (c *Catalog) Sessions() []Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	var sessions []Session
	for _, date := range c.datesLocked() {
		for _, seq := range c.sequencesLocked(date) {
			sessions = append(sessions, Session{Date: date, Sequence: seq})
		}
	}
	return sessions
}

// Latest returns the newest discoverable session, scanning dates from newest
// to oldest until one has a visible sequence.
func (c *Catalog) Latest() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dates := c.datesLocked()
	for i := len(dates) - 1; i >= 0; i-- {
		seqs := c.sequencesLocked(dates[i])
		if len(seqs) > 0 {
			return Session{Date: dates[i], Sequence: seqs[len(seqs)-1]}, true
		}
	}
	return Session{}, false
}

// Contains reports whether the session is currently discoverable.
func (c *Catalog) Contains(s Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	found := false
	for _, date := range c.datesLocked() {
		if date == s.Date {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, seq := range c.sequencesLocked(s.Date) {
		if seq == s.Sequence {
			return true
		}
	}
	return false
}

// Invalidate drops all cached listings so the next query rescans. Used by the
// refresh path to bypass the one-level modification-time staleness window.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rootCached = false
	c.dates = nil
	c.perDate = make(map[string]dateEntry)
}
