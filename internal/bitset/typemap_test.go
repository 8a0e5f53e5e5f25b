package bitset

import "testing"

func TestTypeMapSetTestClear(t *testing.T) {
	var m TypeMap
	if !m.IsEmpty() {
		t.Fatalf("new map should be empty")
	}
	m.Set(3)
	m.Set(70)
	if !m.Test(3) || !m.Test(70) {
		t.Fatalf("expected bits 3 and 70 set")
	}
	if m.Popcount() != 2 {
		t.Fatalf("expected popcount 2, got %d", m.Popcount())
	}
	m.Clear(3)
	if m.Test(3) {
		t.Fatalf("bit 3 should be cleared")
	}
}

func TestTypeMapSetOps(t *testing.T) {
	a := New(1, 2, 3)
	b := New(2, 3, 4)

	u := a.Union(b)
	if u.Popcount() != 4 {
		t.Fatalf("expected union popcount 4, got %d", u.Popcount())
	}

	i := a.Intersect(b)
	if !i.Equal(New(2, 3)) {
		t.Fatalf("expected intersection {2,3}")
	}

	d := a.Difference(b)
	if !d.Equal(New(1)) {
		t.Fatalf("expected difference {1}")
	}
}

func TestTypeMapContains(t *testing.T) {
	proto := New(1, 2, 3, 64, 127)
	all := New(1, 2)
	if !proto.Contains(all) {
		t.Fatalf("proto should contain all_of set")
	}
	none := New(5)
	if proto.Intersect(none).IsEmpty() == false {
		t.Fatalf("proto should not intersect none_of set")
	}
}

func TestTypeMapEqualAndHash(t *testing.T) {
	a := New(1, 2, 3)
	b := New(3, 2, 1)
	if !a.Equal(b) {
		t.Fatalf("maps built from the same ids in different order should be equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("equal maps must hash equal")
	}
}
