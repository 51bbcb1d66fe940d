// Package scenecache keeps a small number of loaded scenes in memory.
//
// The cache is a strict LRU over (artifact directory, checkpoint version)
// keys. Only capacity pressure evicts; there is no time-based invalidation
// because a cached payload for a given version never goes stale. Evicting a
// payload that is still on display is harmless: the display holds its own
// reference and the payload stays valid until both sides drop it.
package scenecache
