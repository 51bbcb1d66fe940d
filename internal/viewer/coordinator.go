package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"bricsview/internal/catalog"
	"bricsview/internal/checkpoint"
	"bricsview/internal/config"
	"bricsview/internal/logging"
	"bricsview/internal/scene"
	"bricsview/internal/scenecache"
)

// Coordinator resolves selections to checkpoints and loads them off the
// interactive path. It is the only writer of DisplayState.
type Coordinator struct {
	cfg      *config.Config
	logger   *slog.Logger
	catalog  *catalog.Catalog
	resolver *checkpoint.Resolver
	cache    *scenecache.Cache
	loader   scene.Loader

	mu      sync.Mutex
	token   uint64
	state   DisplayState
	payload *scene.Payload

	loads sync.WaitGroup

	runMu   sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// New constructs a coordinator. A nil loader defaults to reading checkpoint
// files from disk.
func New(cfg *config.Config, cat *catalog.Catalog, cache *scenecache.Cache, loader scene.Loader, logger *slog.Logger) *Coordinator {
	if loader == nil {
		loader = scene.FileLoader{}
	}
	return &Coordinator{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "viewer"),
		catalog:  cat,
		resolver: checkpoint.NewResolver(cfg),
		cache:    cache,
		loader:   loader,
		state:    DisplayState{Status: StatusIdle, StatusText: "idle", UpdatedAt: time.Now().UTC()},
	}
}

// Snapshot returns a copy of the current display state.
func (c *Coordinator) Snapshot() DisplayState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload returns the currently displayed scene, or nil before the first
// publish. The payload is immutable and safe for the render path to keep
// using even after cache eviction.
func (c *Coordinator) Payload() *scene.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload
}

// Request selects a session for display. It supersedes any in-flight load,
// publishes a loading status immediately, and performs resolution plus the
// cache lookup inline; only the expensive load itself runs in the background.
// The returned token identifies this request in logs.
func (c *Coordinator) Request(session catalog.Session) uint64 {
	c.mu.Lock()
	c.token++
	token := c.token
	c.state.Session = session
	c.state.Status = StatusLoading
	c.state.StatusText = fmt.Sprintf("loading from %s", c.cfg.SessionDir(session.Date, session.Sequence))
	c.state.UpdatedAt = time.Now().UTC()
	c.mu.Unlock()

	c.logger.Info("session selected",
		logging.String(logging.FieldSession, session.String()),
		logging.Uint64(logging.FieldToken, token))

	c.resolveAndDispatch(token, session)
	return token
}

func (c *Coordinator) resolveAndDispatch(token uint64, session catalog.Session) {
	sessionDir := c.cfg.SessionDir(session.Date, session.Sequence)
	target := c.resolver.ResolveLatest(sessionDir)

	if !target.Found {
		published := c.publish(token, func(s *DisplayState) {
			s.Status = StatusNotFound
			s.StatusText = fmt.Sprintf("no checkpoints found under %s", sessionDir)
		})
		if published {
			c.logger.Warn("no checkpoints for selection",
				logging.String(logging.FieldEventType, "resolve_not_found"),
				logging.String(logging.FieldSession, session.String()),
				logging.String(logging.FieldImpact, "previous scene stays on display"))
		}
		return
	}

	// Same directory and version as the scene already on display: nothing to
	// do, not even a cache lookup.
	c.mu.Lock()
	if token == c.token && c.state.HasScene && c.state.Dir == target.Dir && c.state.Version == target.Version {
		c.state.Status = StatusLoaded
		c.state.StatusText = fmt.Sprintf("checkpoint %d already loaded", target.Version)
		c.state.UpdatedAt = time.Now().UTC()
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	key := scenecache.Key{Dir: target.Dir, Version: target.Version}
	if payload, ok := c.cache.Get(key); ok {
		if c.publishScene(token, target, payload, "cache") {
			c.logger.Info("scene published from cache",
				logging.String(logging.FieldSession, session.String()),
				logging.Int(logging.FieldVersion, target.Version))
		}
		return
	}

	c.loads.Add(1)
	go c.load(token, session, target, key)
}

// load runs on a background goroutine. Superseded loads finish and populate
// the cache; the token check at publish time keeps them off the display.
func (c *Coordinator) load(token uint64, session catalog.Session, target checkpoint.Target, key scenecache.Key) {
	defer c.loads.Done()

	ctx := c.loadContext()
	started := time.Now()
	payload, err := c.loader.Load(ctx, target.Path, target.Version)
	if err != nil {
		published := c.publish(token, func(s *DisplayState) {
			s.Status = StatusError
			s.StatusText = fmt.Sprintf("load failed: %v", err)
		})
		c.logger.Error("checkpoint load failed",
			logging.String(logging.FieldEventType, "scene_load_failed"),
			logging.String(logging.FieldSession, session.String()),
			logging.Int(logging.FieldVersion, target.Version),
			logging.Error(err),
			logging.Bool("published", published),
			logging.String(logging.FieldErrorHint, "check checkpoint file permissions and integrity"))
		return
	}

	// Cache regardless of token currency: the work is worth keeping even
	// when the selection has moved on.
	c.cache.Put(key, payload)

	if c.publishScene(token, target, payload, "load") {
		c.logger.Info("scene published",
			logging.String(logging.FieldSession, session.String()),
			logging.Int(logging.FieldVersion, target.Version),
			logging.Duration("load_time", time.Since(started)))
	} else {
		c.logger.Debug("superseded load cached",
			logging.String(logging.FieldSession, session.String()),
			logging.Int(logging.FieldVersion, target.Version),
			logging.Uint64(logging.FieldToken, token))
	}
}

// publish runs fn against the display state only while token is still the
// newest request. The comparison and the mutation form one critical section.
func (c *Coordinator) publish(token uint64, fn func(*DisplayState)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		return false
	}
	fn(&c.state)
	c.state.UpdatedAt = time.Now().UTC()
	return true
}

func (c *Coordinator) publishScene(token uint64, target checkpoint.Target, payload *scene.Payload, source string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.token {
		return false
	}
	c.payload = payload
	c.state.Dir = target.Dir
	c.state.Version = target.Version
	c.state.HasScene = true
	c.state.SceneBytes = payload.Size()
	c.state.Status = StatusLoaded
	c.state.StatusText = fmt.Sprintf("loaded %s (version %d, %s)", filepath.Base(target.Path), target.Version, source)
	c.state.UpdatedAt = time.Now().UTC()
	return true
}

// RefreshNow rescans the catalog and re-resolves the current selection,
// issuing a fresh request when a newer checkpoint version is available.
func (c *Coordinator) RefreshNow() {
	c.catalog.Invalidate()
	c.refreshCurrent()
}

func (c *Coordinator) refreshCurrent() {
	c.mu.Lock()
	session := c.state.Session
	loading := c.state.Status == StatusLoading
	displayedDir := c.state.Dir
	displayedVersion := c.state.Version
	hasScene := c.state.HasScene
	c.mu.Unlock()

	if session.IsZero() || loading {
		return
	}
	if !c.catalog.Contains(session) {
		return
	}

	target := c.resolver.ResolveLatest(c.cfg.SessionDir(session.Date, session.Sequence))
	if !target.Found {
		return
	}
	if hasScene && target.Dir == displayedDir && target.Version == displayedVersion {
		return
	}

	// Skip when the selection changed while we were resolving; the newer
	// request's token outranks anything the refresh would publish.
	c.mu.Lock()
	stale := c.state.Session != session || c.state.Status == StatusLoading
	c.mu.Unlock()
	if stale {
		return
	}

	c.logger.Info("refresh found newer checkpoint",
		logging.String(logging.FieldSession, session.String()),
		logging.Int(logging.FieldVersion, target.Version))
	c.Request(session)
}

// Start launches the periodic refresh loop. Stop cancels it.
func (c *Coordinator) Start(ctx context.Context) {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.cancel != nil {
		return
	}
	c.runCtx, c.cancel = context.WithCancel(ctx)
	c.stopped = make(chan struct{})

	interval := time.Duration(c.cfg.Viewer.RefreshSeconds) * time.Second
	go func(ctx context.Context, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.catalog.Invalidate()
				c.refreshCurrent()
			}
		}
	}(c.runCtx, c.stopped)
}

// Stop cancels the refresh loop and waits for in-flight loads to settle.
func (c *Coordinator) Stop() {
	c.runMu.Lock()
	cancel := c.cancel
	stopped := c.stopped
	c.cancel = nil
	c.runCtx = nil
	c.stopped = nil
	c.runMu.Unlock()

	if cancel != nil {
		cancel()
		<-stopped
	}
	c.loads.Wait()
}

// WaitForLoads blocks until all in-flight background loads have completed.
func (c *Coordinator) WaitForLoads() {
	c.loads.Wait()
}

func (c *Coordinator) loadContext() context.Context {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.runCtx != nil {
		return c.runCtx
	}
	return context.Background()
}
