package render

import (
	"github.com/vireo-engine/rendercore/internal/fence"
	"github.com/vireo-engine/rendercore/internal/gpu"
)

// RenderTargetPurpose enumerates the framebuffer roles a RenderTarget
// can serve.
type RenderTargetPurpose int

const (
	PurposeDepthPrepass RenderTargetPurpose = iota
	PurposeMomentShadowMap
	PurposeForwardLinearZ
	PurposeDeferredGBuffer
)

// Attachment describes one framebuffer attachment's format.
type Attachment struct {
	Format gpu.TextureFormat
}

// RenderTargetConfig is a value-equal description of a framebuffer.
// Two configs are equal iff every field matches.
type RenderTargetConfig struct {
	Purpose     RenderTargetPurpose
	SampleCount int
	Width       int
	Height      int
	Attachments []Attachment
}

func (a RenderTargetConfig) equal(b RenderTargetConfig) bool {
	if a.Purpose != b.Purpose || a.SampleCount != b.SampleCount || a.Width != b.Width || a.Height != b.Height {
		return false
	}
	if len(a.Attachments) != len(b.Attachments) {
		return false
	}
	for i := range a.Attachments {
		if a.Attachments[i] != b.Attachments[i] {
			return false
		}
	}
	return true
}

// renderTargetEntry is one cached framebuffer plus its attachment
// texture ids, fence-guarded like spec describes.
type renderTargetEntry struct {
	Config      RenderTargetConfig
	Framebuffer gpu.ResourceID
	Attachments []gpu.ResourceID
	lock        *fence.Lockable[struct{}]
}

// RenderTargetCache hands out the cached framebuffer matching a config,
// creating one on first request.
type RenderTargetCache struct {
	c      *cache[renderTargetEntry]
	create func(cfg RenderTargetConfig) (gpu.ResourceID, []gpu.ResourceID)
}

// NewRenderTargetCache wraps a pool-specific creation function (which
// actually allocates the GL framebuffer + attachment textures) behind
// the fence-guarded lookup pattern.
func NewRenderTargetCache(create func(cfg RenderTargetConfig) (gpu.ResourceID, []gpu.ResourceID)) *RenderTargetCache {
	return &RenderTargetCache{c: newCache[renderTargetEntry](), create: create}
}

// Acquire returns the RenderTarget matching cfg, locked against f.
func (rc *RenderTargetCache) Acquire(cfg RenderTargetConfig, f *fence.Fence) *renderTargetEntry {
	return rc.c.acquire(f,
		func(e *renderTargetEntry, f *fence.Fence) (bool, bool) {
			if !e.Config.equal(cfg) {
				return false, false
			}
			return e.lock.Lock(f), true
		},
		func() *renderTargetEntry {
			fb, atts := rc.create(cfg)
			return &renderTargetEntry{Config: cfg, Framebuffer: fb, Attachments: atts, lock: fence.NewLockable(struct{}{})}
		},
	)
}

// constantBufferEntry is a uniform buffer id plus its size, fence-
// guarded like RenderTarget.
type constantBufferEntry struct {
	ID   gpu.ResourceID
	Size int
	lock *fence.Lockable[struct{}]
}

// ConstantBufferCache hands out the smallest cached buffer whose size
// is >= the requested size.
type ConstantBufferCache struct {
	c      *cache[constantBufferEntry]
	create func(size int) gpu.ResourceID
}

func NewConstantBufferCache(create func(size int) gpu.ResourceID) *ConstantBufferCache {
	return &ConstantBufferCache{c: newCache[constantBufferEntry](), create: create}
}

// Acquire returns the smallest cached buffer with Size >= size, locked
// against f, creating one of exactly size on a miss.
func (cc *ConstantBufferCache) Acquire(size int, f *fence.Fence) *constantBufferEntry {
	best := -1
	cc.c.mu.RLock()
	for i, e := range cc.c.entries {
		if e.Size >= size && (best < 0 || e.Size < cc.c.entries[best].Size) {
			best = i
		}
	}
	var candidate *constantBufferEntry
	if best >= 0 {
		candidate = cc.c.entries[best]
	}
	cc.c.mu.RUnlock()

	if candidate != nil && candidate.lock.Lock(f) {
		return candidate
	}

	cc.c.mu.Lock()
	e := &constantBufferEntry{ID: cc.create(size), Size: size, lock: fence.NewLockable(struct{}{})}
	cc.c.entries = append(cc.c.entries, e)
	cc.c.mu.Unlock()
	e.lock.Lock(f)
	return e
}

// memoryPoolEntry wraps a scratch gpu.MemoryPool with the fence vector
// guarding its reuse.
type memoryPoolEntry struct {
	Pool *gpu.MemoryPool
	lock *fence.Lockable[struct{}]
}

// MemoryPoolCache hands out a scratch MemoryPool of at least the
// requested capacity, purging and reusing one whose fences have
// cleared.
type MemoryPoolCache struct {
	c        *cache[memoryPoolEntry]
	minBytes int
}

func NewMemoryPoolCache(minBytes int) *MemoryPoolCache {
	return &MemoryPoolCache{c: newCache[memoryPoolEntry](), minBytes: minBytes}
}

// Acquire returns a MemoryPool with capacity >= minBytes, locked
// against f and purged for reuse.
func (mc *MemoryPoolCache) Acquire(f *fence.Fence) *memoryPoolEntry {
	return mc.c.acquire(f,
		func(e *memoryPoolEntry, f *fence.Fence) (bool, bool) {
			if e.Pool.Capacity() < mc.minBytes {
				return false, false
			}
			if e.lock.Lock(f) {
				e.Pool.Purge()
				return true, true
			}
			return false, true
		},
		func() *memoryPoolEntry {
			return &memoryPoolEntry{Pool: gpu.NewMemoryPool(mc.minBytes), lock: fence.NewLockable(struct{}{})}
		},
	)
}
