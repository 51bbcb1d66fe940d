package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"bricsview/internal/catalog"
	"bricsview/internal/config"
	"bricsview/internal/logging"
	"bricsview/internal/viewer"
	"bricsview/internal/watch"
)

// Daemon coordinates the viewer services and enforces single-instance
// execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	catalog *catalog.Catalog
	coord   *viewer.Coordinator

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	watcher *watch.Watcher
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool
	PID        int
	LockPath   string
	SocketPath string
	Display    viewer.DisplayState
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, cat *catalog.Catalog, coord *viewer.Coordinator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || cat == nil || coord == nil {
		return nil, errors.New("daemon requires config, catalog, and coordinator")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "bricsviewd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		catalog:  cat,
		coord:    coord,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock, launches the refresh loop and watcher, and
// applies the startup selection.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	if err := os.MkdirAll(filepath.Dir(d.lockPath), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another bricsview daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.coord.Start(d.ctx)
	d.startWatcher()
	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))

	d.applyStartupSelection()
	return nil
}

// startWatcher wires the library watcher when enabled. Failure to watch is
// not fatal; the periodic refresh still covers library changes.
func (d *Daemon) startWatcher() {
	if !d.cfg.Viewer.WatchLibrary {
		return
	}
	watcher, err := watch.New(d.cfg.Paths.LibraryRoot, d.coord.RefreshNow, d.logger)
	if err != nil {
		d.logger.Warn("library watch unavailable",
			logging.String(logging.FieldEventType, "watch_unavailable"),
			logging.Error(err),
			logging.String(logging.FieldImpact, "library changes surface on the periodic refresh only"))
		return
	}
	watcher.Start(d.ctx)
	d.watcher = watcher
}

// applyStartupSelection requests the configured default session, or the
// newest available one when no default is set.
func (d *Daemon) applyStartupSelection() {
	date := strings.TrimSpace(d.cfg.Viewer.DefaultDate)
	seq := strings.TrimSpace(d.cfg.Viewer.DefaultSequence)
	if date != "" && seq != "" {
		sess := catalog.Session{Date: date, Sequence: seq}
		if d.catalog.Contains(sess) {
			d.coord.Request(sess)
			return
		}
		d.logger.Warn("configured default session not found",
			logging.String(logging.FieldSession, sess.String()),
			logging.String(logging.FieldImpact, "falling back to the newest session"))
	}
	if sess, ok := d.catalog.Latest(); ok {
		d.coord.Request(sess)
		return
	}
	d.logger.Info("library has no sessions yet")
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.watcher != nil {
		if err := d.watcher.Close(); err != nil {
			d.logger.Warn("failed to close library watcher", logging.Error(err))
		}
		d.watcher = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.coord.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Select requests the given session for display. An empty date selects the
// newest session in the library.
func (d *Daemon) Select(date, sequence string) (viewer.DisplayState, error) {
	date = strings.TrimSpace(date)
	sequence = strings.TrimSpace(sequence)

	var sess catalog.Session
	switch {
	case date == "" && sequence == "":
		latest, ok := d.catalog.Latest()
		if !ok {
			return d.coord.Snapshot(), errors.New("library has no sessions")
		}
		sess = latest
	case date == "" || sequence == "":
		return d.coord.Snapshot(), errors.New("select requires both a date and a sequence")
	default:
		sess = catalog.Session{Date: date, Sequence: sequence}
		if !d.catalog.Contains(sess) {
			return d.coord.Snapshot(), fmt.Errorf("session %s not found in library", sess)
		}
	}

	d.coord.Request(sess)
	return d.coord.Snapshot(), nil
}

// Refresh rescans the library and re-resolves the current selection.
func (d *Daemon) Refresh() viewer.DisplayState {
	d.coord.RefreshNow()
	return d.coord.Snapshot()
}

// Dates lists capture dates, newest last.
func (d *Daemon) Dates() []string {
	return d.catalog.Dates()
}

// Sequences lists sequences for one date.
func (d *Daemon) Sequences(date string) []string {
	return d.catalog.Sequences(date)
}

// Sessions lists every browsable session.
func (d *Daemon) Sessions() []catalog.Session {
	return d.catalog.Sessions()
}

// LogPath returns the stable pointer to the current daemon log file.
func (d *Daemon) LogPath() string {
	return filepath.Join(d.cfg.Paths.LogDir, "bricsview.log")
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:    d.running.Load(),
		PID:        os.Getpid(),
		LockPath:   d.lockPath,
		SocketPath: d.cfg.Paths.SocketPath,
		Display:    d.coord.Snapshot(),
	}
}
