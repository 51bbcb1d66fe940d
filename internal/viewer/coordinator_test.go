package viewer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"bricsview/internal/catalog"
	"bricsview/internal/config"
	"bricsview/internal/scene"
	"bricsview/internal/scenecache"
	"bricsview/internal/testsupport"
	"bricsview/internal/viewer"
)

// testLoader serves canned payloads with optional per-path gates and
// failures so tests can control completion order.
type testLoader struct {
	mu    sync.Mutex
	calls map[string]int
	gates map[string]chan struct{}
	fails map[string]error
}

func newTestLoader() *testLoader {
	return &testLoader{
		calls: make(map[string]int),
		gates: make(map[string]chan struct{}),
		fails: make(map[string]error),
	}
}

func (l *testLoader) gate(path string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch := make(chan struct{})
	l.gates[path] = ch
	return ch
}

func (l *testLoader) failWith(path string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fails[path] = err
}

func (l *testLoader) callCount(path string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[path]
}

func (l *testLoader) Load(_ context.Context, path string, version int) (*scene.Payload, error) {
	l.mu.Lock()
	l.calls[path]++
	gate := l.gates[path]
	err := l.fails[path]
	l.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &scene.Payload{Path: path, Version: version, Data: []byte(path), LoadedAt: time.Now().UTC()}, nil
}

type fixture struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	cache  *scenecache.Cache
	loader *testLoader
	coord  *viewer.Coordinator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cat := catalog.New(cfg, nil)
	cache := scenecache.New(cfg.Viewer.CacheCapacity, nil)
	loader := newTestLoader()
	coord := viewer.New(cfg, cat, cache, loader, nil)
	t.Cleanup(coord.Stop)
	return &fixture{cfg: cfg, cat: cat, cache: cache, loader: loader, coord: coord}
}

func (f *fixture) session(t *testing.T, date, seq, ckptName string) (catalog.Session, string) {
	t.Helper()
	dir := testsupport.MakeSession(t, f.cfg, date, seq)
	var path string
	if ckptName != "" {
		path = testsupport.WriteCheckpoint(t, f.cfg, dir, ckptName)
	}
	return catalog.Session{Date: date, Sequence: seq}, path
}

func waitForStatus(t *testing.T, coord *viewer.Coordinator, want viewer.Status) viewer.DisplayState {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		state := coord.Snapshot()
		if state.Status == want {
			return state
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for status %q, last state %+v", want, coord.Snapshot())
	return viewer.DisplayState{}
}

func TestRequestLoadsAndPublishes(t *testing.T) {
	f := newFixture(t)
	sess, _ := f.session(t, "2025-01-01", "multisequence000001", "ckpt_6999.pt")

	f.coord.Request(sess)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Status != viewer.StatusLoaded {
		t.Fatalf("Status = %q, want loaded (%q)", state.Status, state.StatusText)
	}
	if state.Version != 6999 || !state.HasScene {
		t.Fatalf("state = %+v, want version 6999 with scene", state)
	}
	if f.coord.Payload() == nil {
		t.Fatal("expected a published payload")
	}
}

func TestRequestPublishesLoadingBeforeResolution(t *testing.T) {
	f := newFixture(t)
	sess, path := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")
	gate := f.loader.gate(path)

	f.coord.Request(sess)
	state := f.coord.Snapshot()
	if state.Status != viewer.StatusLoading {
		t.Fatalf("Status = %q, want loading while gated", state.Status)
	}
	close(gate)
	f.coord.WaitForLoads()
	waitForStatus(t, f.coord, viewer.StatusLoaded)
}

func TestRequestNotFoundKeepsPriorScene(t *testing.T) {
	f := newFixture(t)
	loaded, _ := f.session(t, "2025-01-01", "multisequence000001", "ckpt_5.pt")
	empty, _ := f.session(t, "2025-01-02", "multisequence000001", "")

	f.coord.Request(loaded)
	f.coord.WaitForLoads()
	before := f.coord.Payload()

	f.coord.Request(empty)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Status != viewer.StatusNotFound {
		t.Fatalf("Status = %q, want not_found", state.Status)
	}
	if f.coord.Payload() != before {
		t.Fatal("prior payload must stay on display through NotFound")
	}
	if state.Version != 5 || !state.HasScene {
		t.Fatalf("displayed version changed: %+v", state)
	}
}

func TestRequestIdempotentShortCircuit(t *testing.T) {
	f := newFixture(t)
	sess, path := f.session(t, "2025-01-01", "multisequence000001", "ckpt_7.pt")

	f.coord.Request(sess)
	f.coord.WaitForLoads()
	first := f.coord.Payload()

	f.coord.Request(sess)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Status != viewer.StatusLoaded {
		t.Fatalf("Status = %q, want loaded", state.Status)
	}
	if got := f.loader.callCount(path); got != 1 {
		t.Fatalf("loader calls = %d, want 1 (second request short-circuits)", got)
	}
	if f.coord.Payload() != first {
		t.Fatal("payload identity must be unchanged")
	}
}

func TestLoadFailureKeepsPriorPayload(t *testing.T) {
	f := newFixture(t)
	good, _ := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")
	bad, badPath := f.session(t, "2025-01-02", "multisequence000001", "ckpt_2.pt")
	f.loader.failWith(badPath, errors.New("corrupt checkpoint"))

	f.coord.Request(good)
	f.coord.WaitForLoads()
	before := f.coord.Payload()

	f.coord.Request(bad)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Status != viewer.StatusError {
		t.Fatalf("Status = %q, want error", state.Status)
	}
	if f.coord.Payload() != before {
		t.Fatal("prior payload must survive a failed load")
	}
	if state.Version != 1 {
		t.Fatalf("displayed version = %d, want 1", state.Version)
	}
}

func TestSupersededLoadCachesWithoutPublishing(t *testing.T) {
	f := newFixture(t)
	slow, slowPath := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")
	fast, _ := f.session(t, "2025-01-02", "multisequence000001", "ckpt_2.pt")

	// Pre-warm the cache for the fast session so its request publishes
	// instantly while the slow load is still in flight.
	fastDir := f.cfg.SessionDir(fast.Date, fast.Sequence)
	f.cache.Put(scenecache.Key{Dir: fastDir, Version: 2},
		&scene.Payload{Path: "warm", Version: 2, Data: []byte("warm")})

	gate := f.loader.gate(slowPath)
	f.coord.Request(slow)
	f.coord.Request(fast)
	waitForStatus(t, f.coord, viewer.StatusLoaded)

	close(gate)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Version != 2 {
		t.Fatalf("displayed version = %d, want 2 (newest request wins)", state.Version)
	}
	if state.Session != fast {
		t.Fatalf("displayed session = %v, want %v", state.Session, fast)
	}

	// The superseded result is still cached: re-requesting the slow session
	// publishes from cache without a second load.
	f.coord.Request(slow)
	f.coord.WaitForLoads()
	state = waitForStatus(t, f.coord, viewer.StatusLoaded)
	if state.Version != 1 {
		t.Fatalf("displayed version = %d, want 1", state.Version)
	}
	if got := f.loader.callCount(slowPath); got != 1 {
		t.Fatalf("loader calls = %d, want 1 (second request is a cache hit)", got)
	}
}

func TestFinalStateMatchesMaxTokenRegardlessOfCompletionOrder(t *testing.T) {
	f := newFixture(t)
	first, firstPath := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")
	second, secondPath := f.session(t, "2025-01-02", "multisequence000001", "ckpt_2.pt")

	gateFirst := f.loader.gate(firstPath)
	gateSecond := f.loader.gate(secondPath)

	f.coord.Request(first)
	f.coord.Request(second)

	// The newer request completes before the older one.
	close(gateSecond)
	waitForStatus(t, f.coord, viewer.StatusLoaded)
	close(gateFirst)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	if state.Version != 2 || state.Session != second {
		t.Fatalf("final state = %+v, want second session at version 2", state)
	}
}

func TestRefreshNowPicksUpNewerVersion(t *testing.T) {
	f := newFixture(t)
	sess, _ := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")

	f.coord.Request(sess)
	f.coord.WaitForLoads()

	dir := f.cfg.SessionDir(sess.Date, sess.Sequence)
	testsupport.WriteCheckpoint(t, f.cfg, dir, "ckpt_2.pt")

	f.coord.RefreshNow()
	f.coord.WaitForLoads()

	state := waitForStatus(t, f.coord, viewer.StatusLoaded)
	if state.Version != 2 {
		t.Fatalf("displayed version = %d, want 2 after refresh", state.Version)
	}
}

func TestRefreshNowNoChangeIsQuiet(t *testing.T) {
	f := newFixture(t)
	sess, path := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")

	f.coord.Request(sess)
	f.coord.WaitForLoads()

	f.coord.RefreshNow()
	f.coord.WaitForLoads()

	if got := f.loader.callCount(path); got != 1 {
		t.Fatalf("loader calls = %d, want 1 (refresh with no new version reloads nothing)", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	f := newFixture(t)
	sess, _ := f.session(t, "2025-01-01", "multisequence000001", "ckpt_1.pt")
	f.coord.Request(sess)
	f.coord.WaitForLoads()

	state := f.coord.Snapshot()
	state.Version = 999
	if f.coord.Snapshot().Version == 999 {
		t.Fatal("mutating a snapshot must not affect coordinator state")
	}
}
