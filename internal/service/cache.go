package service

import (
	"context"
	"sync"
	"time"

	"github.com/fleveque/stock-advisor/internal/model"
)

// Source computes a fresh recommendation set. Implemented by Recommender;
// tests supply counting stubs.
type Source interface {
	Compute(ctx context.Context) []model.Recommendation
}

// Cache is a single-slot TTL cache over a recommendation Source.
//
// Refreshes are single-flight: one mutex guards the whole read-decide-
// recompute-write sequence, so concurrent callers observing a stale or empty
// slot trigger exactly one recompute and all return its result. Refresh is
// synchronous inside the observing call — there is no background refresh and
// no invalidation operation.
//
// The slot invariant: data is non-nil exactly when fetchedAt is non-zero,
// and both are replaced together.
type Cache struct {
	source Source
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	data      []model.Recommendation
	fetchedAt time.Time
}

// NewCache creates an empty cache with the given TTL.
func NewCache(source Source, ttl time.Duration) *Cache {
	return NewCacheWithClock(source, ttl, time.Now)
}

// NewCacheWithClock is NewCache with an injected clock, so tests control time.
func NewCacheWithClock(source Source, ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		source: source,
		ttl:    ttl,
		now:    now,
	}
}

// Get returns the cached recommendation set, recomputing synchronously if
// the slot is empty or older than the TTL. The caller blocks for the full
// recompute on a miss.
func (c *Cache) Get(ctx context.Context) []model.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fetchedAt.IsZero() && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.data
	}

	data := c.source.Compute(ctx)
	if data == nil {
		// An empty result is still a completed refresh; keep the slot
		// invariant (data non-nil iff fetchedAt set).
		data = []model.Recommendation{}
	}
	c.data = data
	c.fetchedAt = c.now()
	return c.data
}

// Age reports how long ago the slot was populated. ok is false while the
// cache is still empty.
func (c *Cache) Age() (age time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fetchedAt.IsZero() {
		return 0, false
	}
	return c.now().Sub(c.fetchedAt), true
}
