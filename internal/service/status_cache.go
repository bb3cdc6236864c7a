package service

import (
	"context"
	"sync"
	"time"
)

// StatusCache remembers the last backend health answer for ttl, so a burst
// of /health commands from many chats costs one probe.
type StatusCache struct {
	backend *Backend
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	status   string
	err      error
	cachedAt time.Time
}

func NewStatusCache(backend *Backend, ttl time.Duration) *StatusCache {
	return &StatusCache{backend: backend, ttl: ttl, now: time.Now}
}

// Get returns the cached result while it is fresh, otherwise probes the
// backend. Failures are cached too.
func (c *StatusCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cachedAt.IsZero() && c.now().Sub(c.cachedAt) < c.ttl {
		return c.status, c.err
	}

	c.status, c.err = c.backend.Health(ctx)
	c.cachedAt = c.now()
	return c.status, c.err
}

// Invalidate forces the next Get to probe.
func (c *StatusCache) Invalidate() {
	c.mu.Lock()
	c.cachedAt = time.Time{}
	c.mu.Unlock()
}
