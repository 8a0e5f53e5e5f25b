package ecs

import (
	"unsafe"

	"github.com/vireo-engine/rendercore/internal/bitset"
)

// PrototypeChunk is one fixed-capacity block of structure-of-arrays
// component storage for a single EntityPrototype, plus the bookkeeping
// needed to answer the reverse (prototype, alloc id) -> EntityID lookup
// without a per-entity index.
type PrototypeChunk struct {
	proto *EntityPrototype

	// chunkIndex and protoCacheID are the two halves bit-interleaved by
	// groupID to form this chunk's group id.
	chunkIndex   uint32
	protoCacheID uint32

	// columns holds one []byte per component in proto.Components, each
	// sized proto.ChunkCapacity*spec.Size. Components are addressed by
	// their position in proto.Components, not by type id, so a lookup
	// goes through proto.indexOf first.
	columns [][]byte

	// entities maps chunk slot -> owning EntityID, used for the reverse
	// lookup and for tail-compaction on destroy.
	entities []EntityID

	count int
}

func newPrototypeChunk(proto *EntityPrototype, chunkIndex, protoCacheID uint32) *PrototypeChunk {
	columns := make([][]byte, len(proto.Components))
	for i, spec := range proto.Components {
		columns[i] = make([]byte, int(spec.Size)*proto.ChunkCapacity)
	}
	return &PrototypeChunk{
		proto:        proto,
		chunkIndex:   chunkIndex,
		protoCacheID: protoCacheID,
		columns:      columns,
		entities:     make([]EntityID, proto.ChunkCapacity),
	}
}

func (c *PrototypeChunk) groupID() uint64 {
	return groupID(c.chunkIndex, c.protoCacheID)
}

func (c *PrototypeChunk) full() bool {
	return c.count >= c.proto.ChunkCapacity
}

// EntityCount reports how many live entities occupy the chunk.
func (c *PrototypeChunk) EntityCount() int {
	return c.count
}

// EntityAt returns the EntityID occupying slot.
func (c *PrototypeChunk) EntityAt(slot int) EntityID {
	return c.entities[slot]
}

// append reserves the next free slot for id and returns its slot index.
// Caller must check !full() first.
func (c *PrototypeChunk) append(id EntityID) int {
	slot := c.count
	c.entities[slot] = id
	c.count++
	return slot
}

// removeSwapBack removes the entity at slot by swapping this chunk's own
// last live entity into its place and returns the EntityID that was moved
// into slot, or InvalidEntityID if slot was already the tail. Used when the
// freed slot and the tail slot are in the same chunk; CachedPrototype.freeEntity
// handles the cross-chunk case by calling overwriteSlot directly.
func (c *PrototypeChunk) removeSwapBack(slot int) EntityID {
	last := c.count - 1
	moved := InvalidEntityID
	if slot != last {
		moved = c.entities[last]
		c.overwriteSlot(slot, c, last)
	}
	c.count--
	return moved
}

// overwriteSlot copies the entity occupying src's srcSlot (its id and every
// component column) into c's slot. src and c must belong to the same
// prototype, so their columns share layout and stride.
func (c *PrototypeChunk) overwriteSlot(slot int, src *PrototypeChunk, srcSlot int) {
	c.entities[slot] = src.entities[srcSlot]
	for i, col := range c.columns {
		stride := len(col) / c.proto.ChunkCapacity
		srcCol := src.columns[i]
		copy(col[slot*stride:(slot+1)*stride], srcCol[srcSlot*stride:(srcSlot+1)*stride])
	}
}

// componentPtr returns an unsafe pointer to the component slot'th entry
// for component id, or nil if this prototype does not carry id.
func (c *PrototypeChunk) componentPtr(id bitset.ComponentTypeID, slot int) unsafe.Pointer {
	idx := c.proto.indexOf(id)
	if idx < 0 {
		return nil
	}
	spec := c.proto.Components[idx]
	col := c.columns[idx]
	off := int(spec.Size) * slot
	return unsafe.Pointer(&col[off])
}

// ComponentAt reads component id at slot into T, the type a caller
// expects that component to be stored as. The caller is responsible for
// requesting a T matching the component's declared size.
func ComponentAt[T any](c *PrototypeChunk, id bitset.ComponentTypeID, slot int) *T {
	p := c.componentPtr(id, slot)
	if p == nil {
		return nil
	}
	return (*T)(p)
}
