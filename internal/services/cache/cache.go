// Package cache memoizes normalized fact sets per query for the life of the
// process.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/j-veylop/drugsafety-dashboard-tui/internal/models"
)

// ComputeFunc produces the fact set for a key on a miss.
type ComputeFunc func(ctx context.Context) (models.FactSet, error)

// Metrics receives cache lookup events.
type Metrics interface {
	CacheHit()
	CacheMiss()
	SetCacheEntries(n int)
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()           {}
func (noopMetrics) CacheMiss()          {}
func (noopMetrics) SetCacheEntries(int) {}

// Entry is one stored fact set.
type Entry struct {
	CreatedAt time.Time
	Key       models.QueryKey
	Facts     models.FactSet
}

// Stats summarizes cache activity.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Cache stores one FactSet per QueryKey. Entries never expire and are never
// replaced once stored.
type Cache struct {
	metrics Metrics
	now     func() time.Time
	entries map[models.QueryKey]Entry
	sf      singleflight.Group
	hits    int64
	misses  int64
	mu      sync.RWMutex
}

// New creates an empty cache. m may be nil.
func New(m Metrics) *Cache {
	if m == nil {
		m = noopMetrics{}
	}
	return &Cache{
		metrics: m,
		now:     time.Now,
		entries: make(map[models.QueryKey]Entry),
	}
}

// GetOrCompute returns the stored FactSet for key, computing it on first use.
// Concurrent misses on one key share a single compute call. Errors are
// returned to every waiter and nothing is stored.
//
// The shared compute keeps the first caller's values but not its
// cancellation, so a caller that gives up only abandons its own wait.
func (c *Cache) GetOrCompute(ctx context.Context, key models.QueryKey, compute ComputeFunc) (models.FactSet, error) {
	if facts, ok := c.lookup(key); ok {
		return facts, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := c.sf.DoChan(key.String(), func() (any, error) {
		// Another caller may have stored it between lookup and Do.
		c.mu.RLock()
		e, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return e.Facts, nil
		}

		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		c.metrics.CacheMiss()

		facts, err := compute(shared)
		if err != nil {
			return nil, err
		}
		if facts == nil {
			facts = models.FactSet{}
		}

		c.mu.Lock()
		c.entries[key] = Entry{Key: key, Facts: facts, CreatedAt: c.now()}
		n := len(c.entries)
		c.mu.Unlock()
		c.metrics.SetCacheEntries(n)

		return facts, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.FactSet), nil
	}
}

func (c *Cache) lookup(key models.QueryKey) (models.FactSet, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		c.hits++
	}
	c.mu.Unlock()

	if ok {
		c.metrics.CacheHit()
	}
	return e.Facts, ok
}

// Get returns the stored FactSet without computing.
func (c *Cache) Get(key models.QueryKey) (models.FactSet, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e.Facts, ok
}

// Entries lists stored entries, oldest first.
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key.String() < out[j].Key.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Stats returns a snapshot of cache counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
