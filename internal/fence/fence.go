// Package fence implements the render core's reference-counted GPU sync
// primitive (spec component C3: Fence and Lockable[R]). It is grounded on
// the teacher's engine/renderer/vulkan/fence.go signal/wait/reset state
// machine, generalized away from a concrete Vulkan handle to an abstract
// "signal" callback so the same type works against the go-gl command
// buffer executor.
package fence

import (
	"fmt"
	"sync"
	"time"

	"github.com/vireo-engine/rendercore/internal/corelog"
)

// ID identifies a Fence within the renderer's live fence set.
type ID uint32

// SignalFunc performs the actual GPU-side wait (e.g. glClientWaitSync).
// It returns true once the fence has signaled, or false if the timeout
// elapsed first.
type SignalFunc func(timeout time.Duration) bool

// Fence wraps a GPU sync point and a reference count. It is created with
// refcount 2 (one implicit reference for the render view that created
// it, one for the renderer's own "done fence" bookkeeping) and is
// eligible for reuse once its refcount has dropped back to 1.
type Fence struct {
	mu sync.Mutex

	id       ID
	signal   SignalFunc
	signaled bool
	refcount uint32
}

// New creates a fence with refcount 2, not yet signaled.
func New(id ID, signal SignalFunc) *Fence {
	return &Fence{id: id, signal: signal, refcount: 2}
}

func (f *Fence) ID() ID { return f.id }

// Sync marks the fence as enqueued on the GPU timeline. Until Wait (or
// an equivalent poll) observes completion, IsSignaled stays false.
func (f *Fence) Sync() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signaled = false
}

// Wait blocks until the fence signals or timeout elapses, returning
// whether it signaled.
func (f *Fence) Wait(timeout time.Duration) bool {
	f.mu.Lock()
	if f.signaled {
		f.mu.Unlock()
		return true
	}
	signal := f.signal
	f.mu.Unlock()

	if signal == nil {
		return true
	}
	ok := signal(timeout)
	if ok {
		f.mu.Lock()
		f.signaled = true
		f.mu.Unlock()
	}
	return ok
}

// IsSignaled reports the last known signaled state without blocking.
func (f *Fence) IsSignaled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signaled
}

// Ref increments the fence's reference count.
func (f *Fence) Ref() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refcount++
}

// Deref decrements the fence's reference count. It is a programmer error
// to deref below zero.
func (f *Fence) Deref() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.refcount == 0 {
		panic(fmt.Errorf("%w: fence %d derefed below zero", corelog.ErrProgrammer, f.id))
	}
	f.refcount--
	return f.refcount
}

// Refcount returns the current reference count.
func (f *Fence) Refcount() uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refcount
}

// WaitTimeout is the default the renderer passes to Wait on the GL
// thread when draining fences before a resource reuse.
const WaitTimeout = 16 * time.Millisecond
