package tools

import (
	"crypto/md5"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long read-only tool responses are reused.
const DefaultCacheTTL = 30 * time.Minute

// ResponseCache caches tool responses for read-only tools. Implementations
// must be safe for concurrent use.
type ResponseCache interface {
	// Get returns the cached response for a tool call, if present and fresh.
	Get(tool, args string) (any, bool)

	// Set stores a response with the given TTL; ttl <= 0 uses the default.
	Set(tool, args string, response any, ttl time.Duration)

	// Invalidate drops all entries for a tool.
	Invalidate(tool string)
}

// cacheKey derives a stable key from the tool name and raw argument string.
func cacheKey(tool, args string) string {
	sum := md5.Sum([]byte(tool + ":" + args))
	return tool + ":" + hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	tool      string
	response  any
	expiresAt time.Time
}

// MemoryCache is an in-process TTL cache.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry)}
}

// Get returns a fresh cached response, evicting it lazily when expired.
func (c *MemoryCache) Get(tool, args string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(tool, args)
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.response, true
}

// Set stores a response.
func (c *MemoryCache) Set(tool, args string, response any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(tool, args)] = memoryEntry{
		tool:      tool,
		response:  response,
		expiresAt: time.Now().Add(ttl),
	}
}

// Invalidate drops every entry belonging to the tool.
func (c *MemoryCache) Invalidate(tool string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if entry.tool == tool {
			delete(c.entries, key)
		}
	}
}
