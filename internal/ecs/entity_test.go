package ecs

import "testing"

func TestLFSR32NeverYieldsZero(t *testing.T) {
	l := newLFSR32()
	for i := 0; i < 100000; i++ {
		if l.Next() == InvalidEntityID {
			t.Fatalf("lfsr32 yielded 0 at iteration %d", i)
		}
	}
}

func TestGroupIDInterleaveIsUnique(t *testing.T) {
	seen := make(map[uint64]bool)
	for chunkIdx := uint32(0); chunkIdx < 8; chunkIdx++ {
		for cacheID := uint32(0); cacheID < 8; cacheID++ {
			g := groupID(chunkIdx, cacheID)
			if seen[g] {
				t.Fatalf("group id collision for chunk=%d cache=%d", chunkIdx, cacheID)
			}
			seen[g] = true
		}
	}
}
