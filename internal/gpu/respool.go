// Package gpu implements the render core's GPU-facing resource pool (spec
// component C1) and scratch memory pool (C2). The pool follows the
// teacher's identifier-allocator idiom (engine/core/identifier.go): a
// linear scan for the first free slot, falling back to append, except
// generalized to typed slots with a stable generation so that stale ids
// from a reused slot are rejected rather than silently aliasing a new
// resource.
package gpu

import (
	"fmt"

	"github.com/vireo-engine/rendercore/internal/corelog"
)

// ResourceID is an opaque, never-zero handle into a ResourcePool slot.
// The low 32 bits are the slot index, the high 32 bits a generation
// counter bumped on every reuse of that slot.
type ResourceID uint64

// Invalid is the id never returned by create, matching spec's
// "Never zero. Invalid = 0".
const Invalid ResourceID = 0

func makeID(slot uint32, generation uint32) ResourceID {
	return ResourceID(uint64(generation)<<32 | uint64(slot))
}

func (id ResourceID) slot() uint32       { return uint32(id) }
func (id ResourceID) generation() uint32 { return uint32(id >> 32) }

type slot struct {
	generation uint32
	refcount   uint32
	label      string
	value      interface{}
	present    bool
}

// ResourcePool is a typed slab allocator for GPU-facing handles: buffers,
// textures, programs, samplers, framebuffers and render-passes all share
// one pool, disambiguated by the type parameter passed to Create/Get.
// Fences are not kept here; the render package tracks them in its own
// fence set. It is not safe for concurrent mutation: resources are
// created on the GL thread, and ids are only read on worker threads.
type ResourcePool struct {
	slots []slot
	free  []uint32
}

// NewResourcePool returns an empty pool.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{}
}

// Create constructs value in-place and returns its id. The label is
// optional; an empty label still produces a valid resource (callers
// wanting a generated debug label should use the CreateTexture/
// CreateBuffer wrappers, which fill one in via uuid).
func Create[T any](p *ResourcePool, label string, value T) ResourceID {
	boxed := &value
	for i := range p.free {
		idx := p.free[i]
		p.free = append(p.free[:i], p.free[i+1:]...)
		s := &p.slots[idx]
		s.generation++
		s.refcount = 1
		s.label = label
		s.value = boxed
		s.present = true
		return makeID(idx, s.generation)
	}
	p.slots = append(p.slots, slot{generation: 1, refcount: 1, label: label, value: boxed, present: true})
	return makeID(uint32(len(p.slots)-1), 1)
}

// Get returns a pointer to the stored T for id, panicking on a type or
// generation mismatch (spec: "panics if id/type mismatch" — this is a
// programmer error, never a recoverable runtime condition). The returned
// pointer aliases the pool's own storage, so writes through it are
// visible to later Get calls for the same id.
func Get[T any](p *ResourcePool, id ResourceID) *T {
	s := p.lookup(id)
	v, ok := s.value.(*T)
	if !ok {
		panic(fmt.Errorf("%w: resource %d is not of the requested type", corelog.ErrProgrammer, id))
	}
	s.refcount++
	return v
}

// Release destroys the resource at id and frees its slot for reuse.
func (p *ResourcePool) Release(id ResourceID) {
	s := p.lookup(id)
	s.present = false
	s.value = nil
	s.label = ""
	p.free = append(p.free, id.slot())
}

// Label returns the debug label a resource was created with.
func (p *ResourcePool) Label(id ResourceID) string {
	return p.lookup(id).label
}

func (p *ResourcePool) lookup(id ResourceID) *slot {
	idx := id.slot()
	if int(idx) >= len(p.slots) {
		panic(fmt.Errorf("%w: resource id %d out of range", corelog.ErrResourceNotFound, id))
	}
	s := &p.slots[idx]
	if !s.present || s.generation != id.generation() {
		panic(fmt.Errorf("%w: resource id %d is stale or released", corelog.ErrResourceNotFound, id))
	}
	return s
}
