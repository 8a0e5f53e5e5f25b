package ecs

import "github.com/vireo-engine/rendercore/internal/bitset"

// EntityQueryParams describes which prototypes a query should match:
// every bit in AllOf must be present, at least one bit in AnyOf must be
// present (unless AnyOf is empty, which matches anything), and no bit in
// NoneOf may be present. The params carry only this predicate; no
// per-component access mode (read-only vs read-write) is recorded.
type EntityQueryParams struct {
	AllOf  bitset.TypeMap
	AnyOf  bitset.TypeMap
	NoneOf bitset.TypeMap
}

func (p EntityQueryParams) matches(proto bitset.TypeMap) bool {
	if !proto.Contains(p.AllOf) {
		return false
	}
	if !p.AnyOf.IsEmpty() && proto.Intersect(p.AnyOf).IsEmpty() {
		return false
	}
	if !proto.Intersect(p.NoneOf).IsEmpty() {
		return false
	}
	return true
}

// EntityQuery matches a fixed set of prototypes against EntityQueryParams.
// Calling Collect freezes the set of chunks the query iterates for the
// rest of the frame: prototypes created after Collect are not visible to
// the CollectedChunkList it returned, matching the extraction pass's
// expectation of a stable view over the store for the duration of a job.
type EntityQuery struct {
	store  *Store
	params EntityQueryParams
}

// CollectedChunkList is a frozen snapshot of the chunks matching a query
// at the moment Collect was called.
type CollectedChunkList struct {
	Chunks []*PrototypeChunk
}

// Collect evaluates the query against every prototype known to the store
// right now and returns the matching chunks.
func (q *EntityQuery) Collect() *CollectedChunkList {
	var out []*PrototypeChunk
	for _, cp := range q.store.protosByID {
		if !q.params.matches(cp.proto.Types) {
			continue
		}
		for _, chunk := range cp.chunks {
			if chunk.count > 0 {
				out = append(out, chunk)
			}
		}
	}
	return &CollectedChunkList{Chunks: out}
}

// Len returns the total number of live entities across every chunk in
// the list.
func (l *CollectedChunkList) Len() int {
	n := 0
	for _, c := range l.Chunks {
		n += c.count
	}
	return n
}
