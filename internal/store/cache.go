package store

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type cacheEntry struct {
	runID     string
	expiresAt time.Time
}

// RunCache remembers which stored run answered a request. Runs are
// deterministic in their inputs, so an identical request can be served from
// the store instead of being recomputed.
type RunCache struct {
	mu    sync.RWMutex
	store map[string]cacheEntry
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

// NewRunCache returns nil when ttl <= 0; a nil cache never hits.
func NewRunCache(ttl time.Duration) *RunCache {
	if ttl <= 0 {
		return nil
	}
	c := &RunCache{
		store: make(map[string]cacheEntry),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.cleanup(min(ttl, 5*time.Minute))
	return c
}

// Get returns the cached run ID if present and not expired.
func (c *RunCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.runID, true
}

func (c *RunCache) Set(key, runID string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = cacheEntry{runID: runID, expiresAt: time.Now().Add(c.ttl)}
}

// Close stops the cleanup goroutine.
func (c *RunCache) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries.
func (c *RunCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, entry := range c.store {
				if now.After(entry.expiresAt) {
					delete(c.store, key)
				}
			}
			c.mu.Unlock()
		}
	}
}

// CacheKey hashes the request parts into a fixed-size key.
func CacheKey(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
