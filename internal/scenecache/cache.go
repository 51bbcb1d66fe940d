package scenecache

import (
	"container/list"
	"log/slog"
	"sync"

	"bricsview/internal/logging"
	"bricsview/internal/scene"
)

// Key identifies a cached scene by artifact directory and checkpoint version.
type Key struct {
	Dir     string
	Version int
}

type entry struct {
	key     Key
	payload *scene.Payload
}

// Cache is a bounded LRU of loaded scenes. Safe for concurrent use.
type Cache struct {
	logger   *slog.Logger
	capacity int

	mu    sync.Mutex
	order *list.List // front is most recently used
	items map[Key]*list.Element
}

// New creates a cache with the given capacity. Capacities below one are
// clamped to one.
func New(capacity int, logger *slog.Logger) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		logger:   logging.NewComponentLogger(logger, "scenecache"),
		capacity: capacity,
		order:    list.New(),
		items:    make(map[Key]*list.Element, capacity),
	}
}

// Get returns the cached payload and promotes the entry to most recently
// used. The second return value reports a hit.
func (c *Cache) Get(key Key) (*scene.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*entry).payload, true
}

// Put inserts a fully loaded payload, evicting the least recently used entry
// when at capacity. Inserting an existing key replaces its payload and
// promotes it.
func (c *Cache) Put(key Key, payload *scene.Payload) {
	if payload == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		elem.Value.(*entry).payload = payload
		c.order.MoveToFront(elem)
		return
	}

	if c.order.Len() >= c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			evicted := oldest.Value.(*entry)
			delete(c.items, evicted.key)
			c.order.Remove(oldest)
			c.logger.Debug("evicted scene",
				logging.String("dir", evicted.key.Dir),
				logging.Int(logging.FieldVersion, evicted.key.Version))
		}
	}

	c.items[key] = c.order.PushFront(&entry{key: key, payload: payload})
}

// Len returns the number of cached scenes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Keys returns cached keys from most to least recently used.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*entry).key)
	}
	return keys
}
