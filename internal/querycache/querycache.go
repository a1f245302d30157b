// Package querycache memoizes Record Store reads per query shape with a
// fixed TTL. It trades hit rate for correctness: any mutation clears every
// entry, because shapes overlap arbitrarily.
package querycache

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
)

type ShapeKind int

const (
	ShapeAllPosts ShapeKind = iota
	ShapeByStatuses
	ShapeByDateRange
)

// Shape is a canonical description of a read request, used as the cache key.
type Shape struct {
	Kind     ShapeKind
	Statuses []entity.PostStatus
	Start    time.Time
	End      time.Time
}

func AllPosts() Shape {
	return Shape{Kind: ShapeAllPosts}
}

func ByStatuses(statuses ...entity.PostStatus) Shape {
	return Shape{Kind: ShapeByStatuses, Statuses: statuses}
}

func ByDateRange(start, end time.Time) Shape {
	return Shape{Kind: ShapeByDateRange, Start: start, End: end}
}

// Key serializes the shape so that logically identical requests collide on
// the same entry regardless of argument ordering.
func (s Shape) Key() string {
	switch s.Kind {
	case ShapeByStatuses:
		values := make([]string, len(s.Statuses))
		for i, st := range s.Statuses {
			values[i] = string(st)
		}
		sort.Strings(values)
		return "status:" + strings.Join(values, ",")
	case ShapeByDateRange:
		return "range:" + s.Start.UTC().Format(time.RFC3339) + "/" + s.End.UTC().Format(time.RFC3339)
	default:
		return "all_posts"
	}
}

type cacheEntry struct {
	posts     []*entity.Post
	fetchedAt time.Time
}

type Cache struct {
	mu          sync.RWMutex
	entries     map[string]cacheEntry
	ttlAll      time.Duration
	ttlFiltered time.Duration
	now         func() time.Time
}

// New builds a cache with named TTLs per query shape. The cache is owned by
// the component composing Record Store access and passed by handle; there is
// no ambient cache state.
func New(ttlAll, ttlFiltered time.Duration) *Cache {
	return NewWithClock(ttlAll, ttlFiltered, time.Now)
}

// NewWithClock is New with an injectable clock, used by tests to step time.
func NewWithClock(ttlAll, ttlFiltered time.Duration, now func() time.Time) *Cache {
	return &Cache{
		entries:     make(map[string]cacheEntry),
		ttlAll:      ttlAll,
		ttlFiltered: ttlFiltered,
		now:         now,
	}
}

func (c *Cache) ttl(shape Shape) time.Duration {
	if shape.Kind == ShapeAllPosts {
		return c.ttlAll
	}
	return c.ttlFiltered
}

// Get returns the memoized result for the shape and whether it is still
// fresh. Zero-record results are cached like any other.
func (c *Cache) Get(shape Shape) ([]*entity.Post, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[shape.Key()]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl(shape) {
		return nil, false
	}
	return entry.posts, true
}

func (c *Cache) Put(shape Shape, posts []*entity.Post) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[shape.Key()] = cacheEntry{posts: posts, fetchedAt: c.now()}
}

// InvalidateAll drops every cached shape. Called after any successful
// create, update or delete; a narrower invalidation is never trusted.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports the number of live entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
