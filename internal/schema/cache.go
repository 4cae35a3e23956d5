package schema

import (
	"context"
	"sync"
	"time"

	"github.com/asksql/asksql/internal/observability"
)

// CachedSource memoizes a Source for a fixed TTL. Schema changes made while an
// entry is fresh stay invisible until it expires.
type CachedSource struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	cached    Description
	expiresAt time.Time
	valid     bool
}

// NewCachedSource wraps source with a TTL cache. A non-positive ttl returns
// source unchanged, so every call introspects again.
func NewCachedSource(source Source, ttl time.Duration, now func() time.Time) Source {
	if ttl <= 0 {
		return source
	}
	if now == nil {
		now = time.Now
	}
	return &CachedSource{source: source, ttl: ttl, now: now}
}

func (c *CachedSource) Describe(ctx context.Context) (Description, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Before(c.expiresAt) {
		observability.IncrementSchemaCacheHit()
		return c.cached, nil
	}

	description, err := c.source.Describe(ctx)
	if err != nil {
		return Description{}, err
	}
	c.cached = description
	c.expiresAt = c.now().Add(c.ttl)
	c.valid = true
	return description, nil
}

func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}
