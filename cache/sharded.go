// Package cache provides a concurrency-safe sharded LRU cache used for
// glyph metrics and outlines shared between render workers.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// ShardCount is the number of shards. Must be a power of 2.
	ShardCount = 16

	// DefaultCapacity is the default maximum number of entries per shard.
	DefaultCapacity = 256

	shardMask = ShardCount - 1
)

// Hasher computes the hash used to select a shard for a key.
type Hasher[K any] func(K) uint64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len       int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// ShardedCache is a thread-safe LRU cache split into ShardCount shards,
// each guarded by its own mutex.
type ShardedCache[K comparable, V any] struct {
	shards   [ShardCount]shard[K, V]
	hasher   Hasher[K]
	capacity int

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	// head is the most recently used entry, tail the least.
	head, tail *entry[K, V]
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// NewSharded creates a cache holding up to capacity entries per shard.
// If capacity <= 0, DefaultCapacity is used.
func NewSharded[K comparable, V any](capacity int, hasher Hasher[K]) *ShardedCache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &ShardedCache[K, V]{hasher: hasher, capacity: capacity}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*entry[K, V])
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return &c.shards[c.hasher(key)&shardMask]
}

// Get returns the cached value for key and marks it recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.moveToFront(e)
	c.hits.Add(1)
	return e.value, true
}

// Set stores a value, evicting the least recently used entries of the
// shard when it is full.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.value = value
		s.moveToFront(e)
		return
	}
	c.insert(s, key, value)
}

// GetOrCreate returns the cached value for key, calling create on a miss.
// create runs with the shard locked, so concurrent callers for the same key
// compute the value once.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.moveToFront(e)
		c.hits.Add(1)
		return e.value
	}
	c.misses.Add(1)
	value := create()
	c.insert(s, key, value)
	return value
}

// Delete removes key and reports whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.unlink(e)
	delete(s.entries, key)
	return true
}

// Clear removes all entries.
func (c *ShardedCache[K, V]) Clear() {
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		s.entries = make(map[K]*entry[K, V])
		s.head, s.tail = nil, nil
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Capacity returns the per-shard capacity.
func (c *ShardedCache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns the current counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	st := Stats{
		Len:       c.Len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
	}
	if total := hits + misses; total > 0 {
		st.HitRate = float64(hits) / float64(total)
	}
	return st
}

func (c *ShardedCache[K, V]) insert(s *shard[K, V], key K, value V) {
	for len(s.entries) >= c.capacity && s.tail != nil {
		oldest := s.tail
		s.unlink(oldest)
		delete(s.entries, oldest.key)
		c.evictions.Add(1)
	}
	e := &entry[K, V]{key: key, value: value}
	s.pushFront(e)
	s.entries[key] = e
}

func (s *shard[K, V]) pushFront(e *entry[K, V]) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *shard[K, V]) moveToFront(e *entry[K, V]) {
	if s.head == e {
		return
	}
	s.unlink(e)
	s.pushFront(e)
}

func (s *shard[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev, e.next = nil, nil
}
