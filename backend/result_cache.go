package main

import (
	"sync"
	"sync/atomic"

	"github.com/AISoldierWYN/Gomoku/internal/engine"
)

const (
	cacheBuckets            = 4
	cacheVeryOldGenerations = 8
)

// cacheKey identifies a search: the same stones, rules, side and depth
// always produce the same result.
type cacheKey struct {
	Fingerprint uint64
	Size        int
	WinLength   int
	Color       engine.Cell
	Depth       int
}

func (k cacheKey) hash() uint64 {
	h := k.Fingerprint
	h ^= uint64(k.Size)<<40 ^ uint64(k.WinLength)<<32 ^ uint64(k.Color)<<24 ^ uint64(k.Depth)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return h
}

type cacheEntry struct {
	Key         cacheKey
	Result      engine.SearchResult
	Hits        uint32
	GenWritten  uint32
	GenLastUsed uint32
	Valid       bool
}

// resultCache is a set-associative table of finished searches with one lock
// per stripe of buckets.
type resultCache struct {
	mask        uint64
	entries     []cacheEntry
	stripeLocks []sync.Mutex
	stripeMask  uint64
	gen         atomic.Uint32
}

func newResultCache(capacity int) *resultCache {
	if capacity <= 0 {
		return nil
	}
	sets := nextPowerOfTwo(uint64((capacity + cacheBuckets - 1) / cacheBuckets))
	stripes := uint64(64)
	if sets < stripes {
		stripes = sets
	}
	c := &resultCache{
		mask:        sets - 1,
		entries:     make([]cacheEntry, int(sets)*cacheBuckets),
		stripeLocks: make([]sync.Mutex, stripes),
		stripeMask:  stripes - 1,
	}
	c.gen.Store(1)
	return c
}

// NextGeneration ages every entry; stale ones become eviction candidates.
func (c *resultCache) NextGeneration() {
	if c == nil {
		return
	}
	if c.gen.Add(1) == 0 {
		c.gen.CompareAndSwap(0, 1)
	}
}

func (c *resultCache) setStart(h uint64) int {
	return int(h&c.mask) * cacheBuckets
}

func (c *resultCache) stripe(h uint64) *sync.Mutex {
	return &c.stripeLocks[(h&c.mask)&c.stripeMask]
}

func (c *resultCache) Probe(key cacheKey) (engine.SearchResult, bool) {
	if c == nil {
		return engine.SearchResult{}, false
	}
	h := key.hash()
	lock := c.stripe(h)
	lock.Lock()
	defer lock.Unlock()
	start := c.setStart(h)
	for i := start; i < start+cacheBuckets; i++ {
		entry := &c.entries[i]
		if !entry.Valid || entry.Key != key {
			continue
		}
		entry.Hits++
		entry.GenLastUsed = c.gen.Load()
		return entry.Result, true
	}
	return engine.SearchResult{}, false
}

// Store keeps res, replacing an empty slot first and otherwise the entry
// unused for the longest time.
func (c *resultCache) Store(key cacheKey, res engine.SearchResult) {
	if c == nil {
		return
	}
	h := key.hash()
	lock := c.stripe(h)
	lock.Lock()
	defer lock.Unlock()
	gen := c.gen.Load()
	fresh := cacheEntry{Key: key, Result: res, GenWritten: gen, GenLastUsed: gen, Valid: true}

	start := c.setStart(h)
	victim := -1
	var victimAge uint32
	for i := start; i < start+cacheBuckets; i++ {
		entry := c.entries[i]
		if !entry.Valid || entry.Key == key {
			c.entries[i] = fresh
			return
		}
		age := gen - entry.GenLastUsed
		if victim == -1 || age > victimAge || (age == victimAge && entry.Hits < c.entries[victim].Hits) {
			victim = i
			victimAge = age
		}
	}
	c.entries[victim] = fresh
}

func (c *resultCache) Clear() {
	if c == nil {
		return
	}
	c.lockAll()
	defer c.unlockAll()
	clear(c.entries)
	c.gen.Store(1)
}

// Prune drops entries not used for cacheVeryOldGenerations games.
func (c *resultCache) Prune() int {
	if c == nil {
		return 0
	}
	c.lockAll()
	defer c.unlockAll()
	gen := c.gen.Load()
	pruned := 0
	for i := range c.entries {
		if c.entries[i].Valid && gen-c.entries[i].GenLastUsed >= cacheVeryOldGenerations {
			c.entries[i] = cacheEntry{}
			pruned++
		}
	}
	return pruned
}

func (c *resultCache) Count() int {
	if c == nil {
		return 0
	}
	c.lockAll()
	defer c.unlockAll()
	count := 0
	for i := range c.entries {
		if c.entries[i].Valid {
			count++
		}
	}
	return count
}

func (c *resultCache) Capacity() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

func (c *resultCache) lockAll() {
	for i := range c.stripeLocks {
		c.stripeLocks[i].Lock()
	}
}

func (c *resultCache) unlockAll() {
	for i := len(c.stripeLocks) - 1; i >= 0; i-- {
		c.stripeLocks[i].Unlock()
	}
}

func nextPowerOfTwo(v uint64) uint64 {
	if v <= 1 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}

var (
	searchCacheMu sync.Mutex
	searchCache   *resultCache
	cacheSize     int
)

// sharedCache returns the process-wide cache, resized when the configured
// capacity changed.
func sharedCache() *resultCache {
	want := GetConfig().AiCacheEntries
	searchCacheMu.Lock()
	defer searchCacheMu.Unlock()
	if want != cacheSize {
		searchCache = newResultCache(want)
		cacheSize = want
	}
	return searchCache
}

type cacheStatus struct {
	Count    int     `json:"count"`
	Capacity int     `json:"capacity"`
	Usage    float64 `json:"usage"`
}

func currentCacheStatus() cacheStatus {
	c := sharedCache()
	st := cacheStatus{Count: c.Count(), Capacity: c.Capacity()}
	if st.Capacity > 0 {
		st.Usage = float64(st.Count) / float64(st.Capacity)
	}
	return st
}
