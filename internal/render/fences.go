package render

import (
	"sync"

	"github.com/vireo-engine/rendercore/internal/fence"
)

// fenceSet is the renderer's bookkeeping of every live fence. queryFence
// creates a fence the caller intends to hold (the view uses the first
// of its two initial refs); doneFence drops the renderer's own
// reference and sweeps away any fence nobody else is holding either.
type fenceSet struct {
	mu     sync.Mutex
	nextID fence.ID
	live   map[fence.ID]*fence.Fence
}

func newFenceSet() *fenceSet {
	return &fenceSet{live: make(map[fence.ID]*fence.Fence)}
}

// QueryFence creates a new fence (refcount starts at 2, per
// fence.New), registers it, and ref-increments once more so the
// renderer's own bookkeeping reference is distinct from the caller's.
func (fs *fenceSet) QueryFence(signal fence.SignalFunc) *fence.Fence {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.nextID++
	f := fence.New(fs.nextID, signal)
	f.Ref()
	fs.live[f.ID()] = f
	return f
}

// DoneFence drops the renderer's bookkeeping reference to id and runs a
// garbage pass that releases any fence whose refcount has dropped to 1
// (meaning only the renderer's own reference remains, i.e. every other
// holder has derefed).
func (fs *fenceSet) DoneFence(id fence.ID) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if f, ok := fs.live[id]; ok {
		f.Deref()
	}
	for fid, f := range fs.live {
		if f.Refcount() <= 1 {
			delete(fs.live, fid)
		}
	}
}

// Live returns the number of fences the renderer is currently tracking.
func (fs *fenceSet) Live() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return len(fs.live)
}

// Resolve looks up a fence by the raw wire id a command buffer's
// FenceSync/FenceWait opcode carries (a fence.ID, which CommandBuffer's
// width check limits to 23 bits), returning nil if it's already been
// garbage-collected by DoneFence.
func (fs *fenceSet) Resolve(id uint32) *fence.Fence {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.live[fence.ID(id)]
}
