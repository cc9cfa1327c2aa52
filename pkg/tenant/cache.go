package tenant

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize is the default maximum number of cached resolutions.
const DefaultCacheSize = 1000

// cacheEntry holds the tenant data portion of a resolution. Per-request
// fields (request id, user id) are never cached.
type cacheEntry struct {
	tenant *Tenant
}

// resolutionCache is a bounded TTL cache keyed by "method:resolvedFrom".
// It is purely an optimization: cached values are a pure function of
// identical input, so correctness never depends on hits.
type resolutionCache struct {
	lru *expirable.LRU[string, cacheEntry]
}

func newResolutionCache(size int, ttl time.Duration) *resolutionCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &resolutionCache{
		lru: expirable.NewLRU[string, cacheEntry](size, nil, ttl),
	}
}

func cacheKey(method Method, resolvedFrom string) string {
	return string(method) + ":" + resolvedFrom
}

func (c *resolutionCache) get(method Method, resolvedFrom string) (*Tenant, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.lru.Get(cacheKey(method, resolvedFrom))
	if !ok {
		return nil, false
	}
	return entry.tenant, true
}

func (c *resolutionCache) set(method Method, resolvedFrom string, t *Tenant) {
	if c == nil {
		return
	}
	c.lru.Add(cacheKey(method, resolvedFrom), cacheEntry{tenant: t})
}
