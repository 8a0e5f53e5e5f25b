package ecs

import "github.com/vireo-engine/rendercore/internal/bitset"

// defaultChunkBytes is the fixed storage budget for one PrototypeChunk's
// component arrays, matching the render core's preferred allocation
// granularity for cache-friendly SoA iteration.
const defaultChunkBytes = 16 * 1024

// ComponentSpec describes one component kind's storage footprint within a
// prototype: its type id and its in-memory size.
type ComponentSpec struct {
	ID   bitset.ComponentTypeID
	Size uintptr
}

// EntityPrototype is the immutable shape shared by every entity created
// with the same component set: which components it carries and how many
// entities fit in one chunk of that shape.
type EntityPrototype struct {
	Types      bitset.TypeMap
	Components []ComponentSpec

	// ChunkCapacity is the number of entities that fit in one
	// PrototypeChunk of defaultChunkBytes, computed once at prototype
	// creation time.
	ChunkCapacity int
}

// newEntityPrototype builds a prototype from an unordered component list,
// sorting by type id so that two equal component sets always produce
// byte-identical prototype descriptions (and therefore equal hashes).
func newEntityPrototype(specs []ComponentSpec) *EntityPrototype {
	sorted := make([]ComponentSpec, len(specs))
	copy(sorted, specs)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].ID < sorted[j-1].ID; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	types := bitset.New()
	var perEntityBytes uintptr
	for _, s := range sorted {
		types.Set(s.ID)
		perEntityBytes += s.Size
	}

	cap := 1
	if perEntityBytes > 0 {
		cap = int(defaultChunkBytes / perEntityBytes)
		if cap < 1 {
			cap = 1
		}
	}

	return &EntityPrototype{
		Types:         types,
		Components:    sorted,
		ChunkCapacity: cap,
	}
}

// indexOf returns the position of id within Components, or -1.
func (p *EntityPrototype) indexOf(id bitset.ComponentTypeID) int {
	for i, c := range p.Components {
		if c.ID == id {
			return i
		}
	}
	return -1
}
