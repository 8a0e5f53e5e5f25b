package ecs

// entityLocation pins down exactly where one entity's component data
// lives: which CachedPrototype (by cache id), which chunk within it, and
// which slot within that chunk.
type entityLocation struct {
	protoCacheID uint32
	chunkIndex   int
	slot         int
}

// CachedPrototype owns every chunk allocated for one EntityPrototype. New
// entities are always appended to the most recently opened chunk that
// still has room; a fresh chunk is opened once that one fills up.
type CachedPrototype struct {
	proto   *EntityPrototype
	cacheID uint32
	chunks  []*PrototypeChunk
}

func newCachedPrototype(proto *EntityPrototype, cacheID uint32) *CachedPrototype {
	return &CachedPrototype{proto: proto, cacheID: cacheID}
}

// allocEntity places id in the current open chunk (opening a new one if
// needed) and returns its location.
func (cp *CachedPrototype) allocEntity(id EntityID) entityLocation {
	if len(cp.chunks) == 0 || cp.chunks[len(cp.chunks)-1].full() {
		cp.allocChunk()
	}
	ci := len(cp.chunks) - 1
	chunk := cp.chunks[ci]
	slot := chunk.append(id)
	return entityLocation{protoCacheID: cp.cacheID, chunkIndex: ci, slot: slot}
}

func (cp *CachedPrototype) allocChunk() {
	idx := uint32(len(cp.chunks))
	cp.chunks = append(cp.chunks, newPrototypeChunk(cp.proto, idx, cp.cacheID))
}

// freeEntity removes the entity at loc, backfilling the freed slot from
// the prototype's global tail: the last live entity in the last chunk.
// This keeps every chunk but the tail at full capacity, not just the
// chunk the destroyed entity happened to live in. It returns the EntityID
// that ended up occupying loc's slot afterward (InvalidEntityID if the
// removed entity was already the global tail).
func (cp *CachedPrototype) freeEntity(loc entityLocation) EntityID {
	tailIdx := len(cp.chunks) - 1
	target := cp.chunks[loc.chunkIndex]

	if loc.chunkIndex == tailIdx {
		moved := target.removeSwapBack(loc.slot)
		if target.count == 0 {
			cp.chunks = cp.chunks[:tailIdx]
		}
		return moved
	}

	tail := cp.chunks[tailIdx]
	tailSlot := tail.count - 1
	moved := tail.entities[tailSlot]
	target.overwriteSlot(loc.slot, tail, tailSlot)
	tail.count--
	if tail.count == 0 {
		cp.chunks = cp.chunks[:tailIdx]
	}
	return moved
}
