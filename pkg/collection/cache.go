package collection

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultCacheCleanup = 10 * time.Minute

	// FlightTimeout bounds a shared load once it no longer follows the
	// context of the caller that started it.
	FlightTimeout = 30 * time.Second
)

// Cache holds fetched pages keyed by Query.Key. Entries are never merged or
// patched: a mutation invalidates every entry of its entity kind.
type Cache struct {
	store *cache.Cache
	group singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

func NewCache(ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCacheCleanup
	}
	return &Cache{
		store: cache.New(ttl, cleanup),
		gens:  make(map[string]uint64),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, cache.DefaultExpiration)
}

func (c *Cache) generation(kind string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[kind]
}

// Load returns the cached value for key or runs fn once for all concurrent
// callers of the same key. A result whose kind was invalidated while fn was
// running is returned to the callers but not stored. A caller whose ctx ends
// stops waiting without failing the others.
func (c *Cache) Load(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}

	kind := kindOf(key)
	gen := c.generation(kind)
	flight := key + "#" + strconv.FormatUint(gen, 10)

	ch := c.group.DoChan(flight, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), FlightTimeout)
		defer cancel()
		v, err := fn(fctx)
		if err != nil {
			return nil, err
		}
		if c.generation(kind) == gen {
			c.Set(key, v)
		}
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

// Delete drops a single key.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// InvalidateKind drops every entry belonging to kind and returns how many
// were removed.
func (c *Cache) InvalidateKind(kind string) int {
	c.mu.Lock()
	c.gens[kind]++
	c.mu.Unlock()

	prefix := kind + "|"
	removed := 0
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
			removed++
		}
	}
	return removed
}

// Len reports the number of live entries.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

func kindOf(key string) string {
	if i := strings.IndexByte(key, '|'); i >= 0 {
		return key[:i]
	}
	return key
}
