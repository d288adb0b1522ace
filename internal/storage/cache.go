package storage

import (
	"context"

	"github.com/coocood/freecache"
)

// DefaultCacheMB is the cache size used when none is configured.
const DefaultCacheMB = 32

// CachedStore serves reads from freecache and falls through to the backing
// store on a miss. The backing store is the source of truth: writes go
// there first and the cache only ever holds whole documents, so an evicted
// or oversized entry costs a read, never data.
type CachedStore struct {
	backing Store
	cache   *freecache.Cache
}

// NewCached wraps s with a cache of sizeMB megabytes.
func NewCached(s Store, sizeMB int) *CachedStore {
	if sizeMB <= 0 {
		sizeMB = DefaultCacheMB
	}
	return &CachedStore{
		backing: s,
		cache:   freecache.NewCache(sizeMB * 1024 * 1024),
	}
}

// Get returns the cached document or loads it from the backing store.
func (c *CachedStore) Get(ctx context.Context, key string) ([]byte, error) {
	if value, err := c.cache.Get([]byte(key)); err == nil {
		return value, nil
	}
	value, err := c.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.remember(key, value)
	return value, nil
}

// Set writes through to the backing store, then refreshes the cache.
func (c *CachedStore) Set(ctx context.Context, key string, value []byte) error {
	if err := c.backing.Set(ctx, key, value); err != nil {
		// the backing store still holds the old document; drop ours so the
		// next read agrees with it
		c.cache.Del([]byte(key))
		return err
	}
	c.remember(key, value)
	return nil
}

// remember caches value. Documents over freecache's entry limit
// (1/1024 of the cache) are refused; any stale copy is dropped instead.
func (c *CachedStore) remember(key string, value []byte) {
	if err := c.cache.Set([]byte(key), value, 0); err != nil {
		c.cache.Del([]byte(key))
	}
}

// Close drops the cache and closes the backing store.
func (c *CachedStore) Close() error {
	c.cache.Clear()
	return c.backing.Close()
}
