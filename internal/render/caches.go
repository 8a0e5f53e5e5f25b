// Package render implements the renderer, its per-view pipeline, and the
// worker pool (spec component C6). It is grounded on the teacher's
// engine/systems/manager.go (subsystem ownership, NumCPU-sized worker
// pool) and engine/systems/renderview.go (registered-views-by-lookup
// pattern), generalized from the teacher's fixed view-type switch
// (world/skybox/pick/ui) to the spec's Camera/Shadow/Light view
// typology and its fence-guarded resource caches.
package render

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/vireo-engine/rendercore/internal/fence"
)

// lookupFunc reports whether a cached entry matches the caller's
// requested configuration and, if so, attempts to lock it against f.
// It returns (locked, matched): matched is true whenever the entry is
// config-compatible, independent of whether the lock itself succeeded,
// so the caller can tell "no matching config exists" apart from
// "matched but in use" while scanning.
type lookupFunc[E any] func(entry *E, f *fence.Fence) (locked bool, matched bool)

// cache is the read/write-locked vector shared by the RenderTarget,
// ConstantBuffer and MemoryPool caches: shared-acquire to scan for a
// lockable match, exclusive-acquire only on a miss to push a new entry.
type cache[E any] struct {
	mu      sync.RWMutex
	entries []*E
}

func newCache[E any]() *cache[E] {
	return &cache[E]{}
}

// acquire implements spec's four-step lookup: shared scan, and on miss,
// exclusive-acquire + push + lock. newEntry is only called on a miss.
func (c *cache[E]) acquire(f *fence.Fence, match lookupFunc[E], newEntry func() *E) *E {
	c.mu.RLock()
	// slices.IndexFunc scans for the first config-matching entry whose
	// lock also succeeds; match has the side effect of attempting the
	// lock, so the predicate itself decides locked-and-matched.
	idx := slices.IndexFunc(c.entries, func(e *E) bool {
		locked, matched := match(e, f)
		return matched && locked
	})
	if idx >= 0 {
		e := c.entries[idx]
		c.mu.RUnlock()
		return e
	}
	c.mu.RUnlock()

	c.mu.Lock()
	e := newEntry()
	c.entries = append(c.entries, e)
	c.mu.Unlock()

	match(e, f)
	return e
}

// len reports how many entries the cache currently holds (tests only).
func (c *cache[E]) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
