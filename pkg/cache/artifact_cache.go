// Package cache provides compiled-artifact caching for culaunch.
//
// Kernel compilation shells out to an external toolchain, which is by far
// the slowest stage of the pipeline. Caching compiled artifacts keyed by a
// content digest of (architecture, source bytes) makes notebook-style
// re-runs of an unchanged kernel effectively free.
//
// Two layers:
//   - ArtifactCache: in-process LRU with optional TTL
//   - DiskCache: badger-backed store that survives process restarts
//
// CachingCompiler composes both in front of any nvcc.Compiler.
//
// Usage:
//
//	mem := cache.NewArtifactCache(256, 0)
//	disk, _ := cache.OpenDisk(cfg.CacheDir)
//	compiler := cache.NewCachingCompiler(nvcc.NewToolchain(), mem, disk)
//
//	art, err := compiler.Compile(ctx, "kernels/vec_add.cu", "sm_70")
package cache

import (
	"container/list"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/orneryd/culaunch/pkg/nvcc"
)

// Key derives the cache key for compiling source bytes for arch. The key is
// a BLAKE2b-256 digest, so distinct sources or architectures never collide
// in practice.
//
// ELI12:
//
// The key is a fingerprint of exactly two things: what you're compiling and
// what you're compiling it for. Change a single character of the kernel, or
// target a different GPU generation, and you get a different fingerprint —
// so the cache can never hand you a stale artifact.
func Key(arch string, source []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(arch))
	h.Write([]byte{0})
	h.Write(source)
	return hex.EncodeToString(h.Sum(nil))
}

// ArtifactCache is a thread-safe LRU cache for compiled artifacts.
//
// The cache uses:
//   - Hash map for O(1) lookups
//   - Doubly-linked list for LRU ordering
//   - Optional TTL for automatic expiration
type ArtifactCache struct {
	mu sync.RWMutex

	maxSize int
	ttl     time.Duration

	list  *list.List
	items map[string]*list.Element

	hits   uint64
	misses uint64
}

type cacheEntry struct {
	key       string
	artifact  *nvcc.Artifact
	expiresAt time.Time
}

// NewArtifactCache creates a cache holding up to maxSize artifacts, each
// valid for ttl (0 = no expiration, LRU eviction only).
func NewArtifactCache(maxSize int, ttl time.Duration) *ArtifactCache {
	if maxSize <= 0 {
		maxSize = 128
	}
	return &ArtifactCache{
		maxSize: maxSize,
		ttl:     ttl,
		list:    list.New(),
		items:   make(map[string]*list.Element, maxSize),
	}
}

// Get retrieves a cached artifact if present and not expired. An accessed
// entry becomes most-recently-used.
func (c *ArtifactCache) Get(key string) (*nvcc.Artifact, bool) {
	c.mu.RLock()
	elem, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	entry := elem.Value.(*cacheEntry)

	if c.ttl > 0 && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		c.removeElement(elem)
		c.mu.Unlock()
		atomic.AddUint64(&c.misses, 1)
		return nil, false
	}

	c.mu.Lock()
	c.list.MoveToFront(elem)
	c.mu.Unlock()

	atomic.AddUint64(&c.hits, 1)
	return entry.artifact, true
}

// Put adds an artifact to the cache, evicting the least-recently-used entry
// when full. Re-putting an existing key refreshes its value and TTL.
func (c *ArtifactCache) Put(key string, art *nvcc.Artifact) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Time{}
	if c.ttl > 0 {
		expiresAt = time.Now().Add(c.ttl)
	}

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		entry.artifact = art
		entry.expiresAt = expiresAt
		c.list.MoveToFront(elem)
		return
	}

	elem := c.list.PushFront(&cacheEntry{key: key, artifact: art, expiresAt: expiresAt})
	c.items[key] = elem

	for c.list.Len() > c.maxSize {
		c.removeElement(c.list.Back())
	}
}

// Len returns the number of cached artifacts.
func (c *ArtifactCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.list.Len()
}

// Stats returns cumulative hit and miss counts.
func (c *ArtifactCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// removeElement removes an entry. Caller holds the write lock.
func (c *ArtifactCache) removeElement(elem *list.Element) {
	if elem == nil {
		return
	}
	entry := elem.Value.(*cacheEntry)
	delete(c.items, entry.key)
	c.list.Remove(elem)
}
