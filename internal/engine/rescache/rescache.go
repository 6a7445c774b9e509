// Package rescache is the process-wide result cache behind resilient calls:
// a bounded key/value store with a fixed TTL and least-recently-used eviction
// once the entry bound is exceeded. The store is split into shards keyed by a
// hash of the cache key, so concurrent callers on unrelated keys never contend
// on one lock. A racing lookup-then-insert on the same key may fetch twice;
// last write wins, which is acceptable for idempotent TTL-bounded data.
//
// Entries are replaced on overwrite, never edited in place. Expiry is checked
// lazily on read; a stale entry occupying a slot until then only costs memory
// already bounded by the entry cap.
package rescache

import (
	"container/list"
	"hash/fnv"
	"sync"
	"time"
)

// Defaults sized after the upstream workload: a couple hundred distinct
// operation+argument combinations per city, refreshed every few minutes.
const (
	DefaultMaxEntries = 200
	DefaultTTL        = 10 * time.Minute
)

const shardCount = 16

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

type shard struct {
	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front = most recently used
	cap   int
}

// Cache is a sharded TTL+LRU store. The zero value is not usable; construct
// with New.
type Cache struct {
	shards [shardCount]*shard
	ttl    time.Duration
	now    func() time.Time
}

// New builds a cache holding at most maxEntries values, each valid for ttl.
// Non-positive arguments fall back to the defaults.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	perShard := (maxEntries + shardCount - 1) / shardCount
	c := &Cache{ttl: ttl, now: time.Now}
	for i := range c.shards {
		c.shards[i] = &shard{
			items: make(map[string]*list.Element),
			order: list.New(),
			cap:   perShard,
		}
	}
	return c
}

func (c *Cache) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%shardCount]
}

// Get returns the live value for key. Expired entries are removed and
// reported as a miss.
func (c *Cache) Get(key string) (any, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry)
	if c.now().After(e.expiresAt) {
		s.order.Remove(el)
		delete(s.items, key)
		return nil, false
	}
	s.order.MoveToFront(el)
	return e.value, true
}

// Set stores value under key with the cache-wide TTL. An existing entry is
// replaced, and the least-recently-used entry is evicted when the shard
// exceeds its bound.
func (c *Cache) Set(key string, value any) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores value under key with an entry-specific lifetime.
// ttl <= 0 falls back to the cache-wide TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.ttl
	}
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}

	e := &entry{key: key, value: value, expiresAt: c.now().Add(ttl)}
	s.items[key] = s.order.PushFront(e)

	for s.order.Len() > s.cap {
		oldest := s.order.Back()
		if oldest == nil {
			break
		}
		s.order.Remove(oldest)
		delete(s.items, oldest.Value.(*entry).key)
	}
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.items[key]; ok {
		s.order.Remove(el)
		delete(s.items, key)
	}
}

// Len reports the number of stored entries, including not-yet-swept expired ones.
func (c *Cache) Len() int {
	n := 0
	for _, s := range c.shards {
		s.mu.Lock()
		n += s.order.Len()
		s.mu.Unlock()
	}
	return n
}
