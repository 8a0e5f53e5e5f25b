package ecs

import (
	"fmt"

	"github.com/vireo-engine/rendercore/internal/bitset"
	"github.com/vireo-engine/rendercore/internal/corelog"
)

// Store is the archetype entity store: it owns every prototype, every
// chunk, and the id generator, and answers entity creation/destruction
// and query requests. A single Store is not safe for concurrent
// creation/destruction and querying at once; callers serialize mutation
// against the extraction jobs the way the renderer's frame loop does.
type Store struct {
	ids *lfsr32

	metas map[EntityID]entityLocation

	protosByHash map[uint64]*CachedPrototype
	protosByID   []*CachedPrototype
	nextCacheID  uint32
}

// NewStore creates an empty entity store.
func NewStore() *Store {
	return &Store{
		ids:          newLFSR32(),
		metas:        make(map[EntityID]entityLocation),
		protosByHash: make(map[uint64]*CachedPrototype),
	}
}

// Prototype returns the CachedPrototype for the given component set,
// creating it on first use. Two calls with equivalent (unordered) specs
// return the same prototype.
func (s *Store) Prototype(specs []ComponentSpec) *CachedPrototype {
	proto := newEntityPrototype(specs)
	h := proto.Types.Hash()
	if cp, ok := s.protosByHash[h]; ok {
		return cp
	}
	cacheID := s.nextCacheID
	s.nextCacheID++
	cp := newCachedPrototype(proto, cacheID)
	s.protosByHash[h] = cp
	s.protosByID = append(s.protosByID, cp)
	return cp
}

// CreateEntity allocates a new EntityID and its component storage within
// the given CachedPrototype.
func (s *Store) CreateEntity(cp *CachedPrototype) EntityID {
	id := s.ids.Next()
	for {
		if _, exists := s.metas[id]; !exists {
			break
		}
		id = s.ids.Next()
	}
	loc := cp.allocEntity(id)
	s.metas[id] = loc
	return id
}

// DestroyEntity removes id from its prototype, compacting storage by
// moving the prototype's global tail entity (the last live entity in its
// last chunk) into the freed slot, so every chunk but the tail stays
// densely packed for iteration.
func (s *Store) DestroyEntity(id EntityID) error {
	loc, ok := s.metas[id]
	if !ok {
		return fmt.Errorf("%w: entity %d", corelog.ErrResourceNotFound, id)
	}
	cp := s.protosByID[loc.protoCacheID]
	moved := cp.freeEntity(loc)
	delete(s.metas, id)
	if moved != InvalidEntityID {
		s.metas[moved] = loc
	}
	return nil
}

// Alive reports whether id currently names a live entity.
func (s *Store) Alive(id EntityID) bool {
	_, ok := s.metas[id]
	return ok
}

// EntityAt resolves the (prototype, alloc id) reverse lookup: given a
// chunk's group id and a slot, returns the EntityID occupying that slot.
// This is the testable "reverse-lookup agreement" path: it must always
// agree with the forward lookup recorded in s.metas.
func (s *Store) EntityAt(groupID uint64, slot int) (EntityID, bool) {
	for _, cp := range s.protosByID {
		for _, chunk := range cp.chunks {
			if chunk.groupID() != groupID {
				continue
			}
			if slot < 0 || slot >= chunk.count {
				return InvalidEntityID, false
			}
			return chunk.entities[slot], true
		}
	}
	return InvalidEntityID, false
}

// Component fetches a typed pointer to component id belonging to entity
// id within its chunk, or nil if the entity is dead or does not carry
// that component.
func Component[T any](s *Store, e EntityID, id bitset.ComponentTypeID) *T {
	loc, ok := s.metas[e]
	if !ok {
		return nil
	}
	cp := s.protosByID[loc.protoCacheID]
	chunk := cp.chunks[loc.chunkIndex]
	return ComponentAt[T](chunk, id, loc.slot)
}

// CreateEntityQuery builds a query over every prototype currently known
// to the store matching params.
func (s *Store) CreateEntityQuery(params EntityQueryParams) *EntityQuery {
	return &EntityQuery{store: s, params: params}
}
