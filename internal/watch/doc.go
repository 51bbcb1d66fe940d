// Package watch nudges the viewer when the capture library changes on disk.
//
// It watches the library root (one level, not recursive) with fsnotify and
// debounces bursts of events into a single refresh callback. The watcher is
// an accelerator for the periodic refresh, not a correctness mechanism: the
// catalog's modification-time checks remain the source of truth.
package watch
