package observance

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Cache loads tables from a Source on first use and serves the same
// read-only *Tables to every caller until it is invalidated or reloaded.
//
// The loaded value is swapped in whole, so concurrent readers see either
// the old tables or the new ones.
type Cache struct {
	source Source
	logger *slog.Logger

	mu     sync.Mutex // serializes loads
	tables atomic.Pointer[Tables]
	loads  atomic.Int64
}

// NewCache creates a cache over src. Nothing is read until first use.
func NewCache(src Source, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{source: src, logger: logger}
}

// Tables returns the cached tables, loading them if necessary.
// A failed load is not cached; the next call tries again.
func (c *Cache) Tables(ctx context.Context) (*Tables, error) {
	if t := c.tables.Load(); t != nil {
		return t, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if t := c.tables.Load(); t != nil {
		return t, nil
	}
	return c.loadLocked(ctx)
}

// Reload reads the source again and replaces the cached tables. On error
// the previous tables stay in place.
func (c *Cache) Reload(ctx context.Context) (*Tables, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Invalidate drops the cached tables; the next Tables call reloads them.
func (c *Cache) Invalidate() {
	c.tables.Store(nil)
	c.logger.Debug("observance tables invalidated")
}

// Loads returns how many successful loads the cache has performed.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

func (c *Cache) loadLocked(ctx context.Context) (*Tables, error) {
	t, err := LoadTables(ctx, c.source, c.logger)
	if err != nil {
		return nil, err
	}
	c.tables.Store(t)
	c.loads.Add(1)
	return t, nil
}
