// Package bitset implements the fixed-width component-type bitmap used to
// identify entity prototypes and encode query predicates. It is grounded
// in the same fixed-granularity bit-vector approach as the example corpus'
// resource-allocation bit vectors, specialized to a compile-time-bounded
// width since the set of installed component kinds (<=128) is fixed at
// build time, unlike a general growable bit vector.
package bitset

import "math/bits"

// MaxComponentTypes bounds the number of distinct component kinds the
// engine can have installed at once.
const MaxComponentTypes = 128

const words = MaxComponentTypes / 64

// ComponentTypeID identifies one installed component kind.
type ComponentTypeID uint8

// TypeMap is a fixed-width bitmap over ComponentTypeID, used both to
// describe an EntityPrototype's component set and to encode a query's
// all_of/any_of/none_of predicates.
type TypeMap struct {
	words [words]uint64
}

// New builds a TypeMap containing exactly the given ids.
func New(ids ...ComponentTypeID) TypeMap {
	var m TypeMap
	for _, id := range ids {
		m.Set(id)
	}
	return m
}

// Set marks id as present.
func (m *TypeMap) Set(id ComponentTypeID) {
	m.words[id/64] |= 1 << (id % 64)
}

// Clear marks id as absent.
func (m *TypeMap) Clear(id ComponentTypeID) {
	m.words[id/64] &^= 1 << (id % 64)
}

// Test reports whether id is present.
func (m TypeMap) Test(id ComponentTypeID) bool {
	return m.words[id/64]&(1<<(id%64)) != 0
}

// Union returns the bitwise OR of m and other.
func (m TypeMap) Union(other TypeMap) TypeMap {
	var out TypeMap
	for i := range out.words {
		out.words[i] = m.words[i] | other.words[i]
	}
	return out
}

// Intersect returns the bitwise AND of m and other.
func (m TypeMap) Intersect(other TypeMap) TypeMap {
	var out TypeMap
	for i := range out.words {
		out.words[i] = m.words[i] & other.words[i]
	}
	return out
}

// Difference returns the bits set in m but not in other.
func (m TypeMap) Difference(other TypeMap) TypeMap {
	var out TypeMap
	for i := range out.words {
		out.words[i] = m.words[i] &^ other.words[i]
	}
	return out
}

// Popcount returns the number of set bits.
func (m TypeMap) Popcount() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// IsEmpty reports whether no bit is set.
func (m TypeMap) IsEmpty() bool {
	for _, w := range m.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Contains reports whether every bit set in other is also set in m
// (other subseteq m).
func (m TypeMap) Contains(other TypeMap) bool {
	for i := range m.words {
		if other.words[i]&^m.words[i] != 0 {
			return false
		}
	}
	return true
}

// Equal reports whether m and other have identical bits.
func (m TypeMap) Equal(other TypeMap) bool {
	return m.words == other.words
}

// Hash returns a value derived from the bitmap suitable for use as a map
// key or hash-index seed; two equal TypeMaps always hash equal.
func (m TypeMap) Hash() uint64 {
	var h uint64 = 1469598103934665603 // FNV offset basis
	for _, w := range m.words {
		h ^= w
		h *= 1099511628211 // FNV prime
	}
	return h
}
