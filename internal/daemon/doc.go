// Package daemon owns the long-running viewer process: it acquires the
// single-instance lock, starts the coordinator's refresh loop and the
// library watcher, applies the startup selection, and exposes the operations
// the IPC layer delegates to.
package daemon
