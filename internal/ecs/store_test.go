package ecs

import (
	"testing"

	"github.com/vireo-engine/rendercore/internal/bitset"
)

const (
	compPosition bitset.ComponentTypeID = iota
	compVelocity
	compRenderable
)

func transformSpecs() []ComponentSpec {
	return []ComponentSpec{
		{ID: compPosition, Size: 12},
		{ID: compVelocity, Size: 12},
	}
}

func TestEntityIDNeverZeroAndUnique(t *testing.T) {
	s := NewStore()
	proto := s.Prototype(transformSpecs())

	seen := make(map[EntityID]bool)
	for i := 0; i < 5000; i++ {
		id := s.CreateEntity(proto)
		if id == InvalidEntityID {
			t.Fatalf("generated id must never be zero")
		}
		if seen[id] {
			t.Fatalf("id %d reused within a single run", id)
		}
		seen[id] = true
	}
}

func TestPrototypeDeduplicatesRegardlessOfOrder(t *testing.T) {
	s := NewStore()
	a := s.Prototype([]ComponentSpec{{ID: compPosition, Size: 12}, {ID: compVelocity, Size: 12}})
	b := s.Prototype([]ComponentSpec{{ID: compVelocity, Size: 12}, {ID: compPosition, Size: 12}})
	if a != b {
		t.Fatalf("prototypes with the same component set in different order must be identical")
	}
}

func TestDestroyEntityCompactsChunk(t *testing.T) {
	s := NewStore()
	proto := s.Prototype(transformSpecs())

	var ids []EntityID
	for i := 0; i < 4; i++ {
		ids = append(ids, s.CreateEntity(proto))
	}

	if err := s.DestroyEntity(ids[1]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Alive(ids[1]) {
		t.Fatalf("destroyed entity should not be alive")
	}
	for i, id := range ids {
		if i == 1 {
			continue
		}
		if !s.Alive(id) {
			t.Fatalf("entity %d should remain alive after unrelated destroy", id)
		}
	}

	loc := s.metas[ids[3]]
	if loc.slot != 1 {
		t.Fatalf("tail entity should have been swapped into the freed slot 1, got slot %d", loc.slot)
	}
}

// smallChunkSpecs yields a prototype with a ChunkCapacity of 2, so a
// handful of entities span multiple chunks without allocating anywhere
// near defaultChunkBytes worth of real entities.
func smallChunkSpecs() []ComponentSpec {
	return []ComponentSpec{{ID: compPosition, Size: 8192}}
}

func TestDestroyEntityBackfillsFromGlobalTailChunk(t *testing.T) {
	s := NewStore()
	proto := s.Prototype(smallChunkSpecs())

	var ids []EntityID
	for i := 0; i < 5; i++ {
		ids = append(ids, s.CreateEntity(proto))
	}
	// Layout: chunk0 = [ids[0], ids[1]], chunk1 = [ids[2], ids[3]],
	// chunk2 (tail) = [ids[4]].
	if len(proto.chunks) != 3 {
		t.Fatalf("expected 3 chunks before destroy, got %d", len(proto.chunks))
	}

	if err := s.DestroyEntity(ids[0]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Alive(ids[0]) {
		t.Fatalf("destroyed entity should not be alive")
	}
	for i, id := range ids {
		if i == 0 {
			continue
		}
		if !s.Alive(id) {
			t.Fatalf("entity %d should remain alive after destroy", id)
		}
	}

	if len(proto.chunks) != 2 {
		t.Fatalf("emptied tail chunk should have been dropped, got %d chunks", len(proto.chunks))
	}
	for i, chunk := range proto.chunks {
		if chunk.EntityCount() != proto.proto.ChunkCapacity {
			t.Fatalf("chunk %d should be at full capacity after backfill, has %d", i, chunk.EntityCount())
		}
	}

	moved := s.metas[ids[4]]
	if moved.chunkIndex != 0 || moved.slot != 0 {
		t.Fatalf("global tail entity should have backfilled chunk 0 slot 0, got %+v", moved)
	}
	untouched := s.metas[ids[1]]
	if untouched.chunkIndex != 0 || untouched.slot != 1 {
		t.Fatalf("entity outside the freed slot should not have moved, got %+v", untouched)
	}
}

func TestReverseLookupAgreesWithForward(t *testing.T) {
	s := NewStore()
	proto := s.Prototype(transformSpecs())

	var ids []EntityID
	for i := 0; i < 10; i++ {
		ids = append(ids, s.CreateEntity(proto))
	}

	for _, id := range ids {
		loc := s.metas[id]
		chunk := proto.chunks[loc.chunkIndex]
		got, ok := s.EntityAt(chunk.groupID(), loc.slot)
		if !ok || got != id {
			t.Fatalf("reverse lookup mismatch: want %d got %d ok=%v", id, got, ok)
		}
	}
}

func TestQueryMatchesAllOfAndNoneOf(t *testing.T) {
	s := NewStore()
	moving := s.Prototype([]ComponentSpec{{ID: compPosition, Size: 12}, {ID: compVelocity, Size: 12}})
	rendered := s.Prototype([]ComponentSpec{{ID: compPosition, Size: 12}, {ID: compRenderable, Size: 4}})

	e1 := s.CreateEntity(moving)
	e2 := s.CreateEntity(rendered)

	q := s.CreateEntityQuery(EntityQueryParams{
		AllOf:  bitset.New(compPosition),
		NoneOf: bitset.New(compVelocity),
	})
	list := q.Collect()
	if list.Len() != 1 {
		t.Fatalf("expected exactly 1 match, got %d", list.Len())
	}
	found := list.Chunks[0].entities[0]
	if found != e2 {
		t.Fatalf("expected entity %d (no-velocity) to match, got %d", e2, found)
	}
	_ = e1
}

func TestComponentReadWrite(t *testing.T) {
	s := NewStore()
	proto := s.Prototype(transformSpecs())
	e := s.CreateEntity(proto)

	type vec3 struct{ X, Y, Z float32 }
	pos := Component[vec3](s, e, compPosition)
	if pos == nil {
		t.Fatalf("expected non-nil position component")
	}
	pos.X, pos.Y, pos.Z = 1, 2, 3

	again := Component[vec3](s, e, compPosition)
	if *again != (vec3{1, 2, 3}) {
		t.Fatalf("expected component write to persist, got %+v", *again)
	}
}
