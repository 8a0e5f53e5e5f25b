package gpu

import (
	"fmt"
	"unsafe"

	"github.com/vireo-engine/rendercore/internal/corelog"
)

// AllocAlign and AllocAlignShift fix the bump allocator's alignment
// boundary; every Handle offset is a multiple of AllocAlign, which lets
// the command buffer pack a handle's upper bits alongside other fields
// (spec §6: "memory-pool-handle >> AllocAlignShift").
const (
	AllocAlign      = 16
	AllocAlignShift = 4
)

// Handle is an integer offset into a MemoryPool's backing buffer,
// aligned to AllocAlign.
type Handle uint32

// MemoryPool is a bump allocator over one owned byte buffer, used for
// per-frame CPU data (uniform payloads, scene constants) that the
// command buffer references by Handle. Pools are reused across frames
// via fence-guarded locking (internal/fence.Lockable), so a worker can
// be writing into the next pool while the GPU still reads a prior one.
type MemoryPool struct {
	buf   []byte
	rover uint32
}

// NewMemoryPool allocates a pool with the given byte capacity.
func NewMemoryPool(capacity int) *MemoryPool {
	return &MemoryPool{buf: make([]byte, capacity)}
}

func alignUp(n uint32) uint32 {
	return (n + AllocAlign - 1) &^ (AllocAlign - 1)
}

// Alloc reserves n bytes and returns a handle to them. n is rounded up
// to AllocAlign.
func (p *MemoryPool) Alloc(n int) (Handle, error) {
	aligned := alignUp(uint32(n))
	if uint64(p.rover)+uint64(aligned) > uint64(len(p.buf)) {
		return 0, fmt.Errorf("%w: memory pool exhausted (rover=%d, want=%d, cap=%d)",
			corelog.ErrConfiguration, p.rover, aligned, len(p.buf))
	}
	h := Handle(p.rover)
	p.rover += aligned
	return h, nil
}

// Ptr dereferences handle to a mutable pointer to a T living in the
// pool's backing storage.
func Ptr[T any](p *MemoryPool, h Handle) *T {
	return (*T)(unsafe.Pointer(&p.buf[h]))
}

// Bytes returns the raw bytes written at handle for the given length,
// used by the command buffer executor to copy the payload into a GPU
// buffer without knowing its static Go type.
func (p *MemoryPool) Bytes(h Handle, length int) []byte {
	return p.buf[h : int(h)+length]
}

// Purge resets the rover to zero, reclaiming the whole pool. Safe to
// call only once every prior reader's fence has signaled.
func (p *MemoryPool) Purge() {
	p.rover = 0
}

// Used reports how many bytes of the pool are currently allocated.
func (p *MemoryPool) Used() int {
	return int(p.rover)
}

// Capacity returns the pool's total byte capacity.
func (p *MemoryPool) Capacity() int {
	return len(p.buf)
}
