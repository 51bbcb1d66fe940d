// Package checkpoint resolves the newest checkpoint file inside a session's
// artifact directory.
//
// Resolution is deliberately uncached: checkpoint directories change whenever
// training writes a new snapshot, and a stale answer here would surface an
// outdated scene. Callers pay one directory listing per resolution, which is
// cheap next to the load itself.
package checkpoint
