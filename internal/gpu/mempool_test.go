package gpu

import "testing"

func TestMemoryPoolAllocAlignsUp(t *testing.T) {
	p := NewMemoryPool(1024)
	h, err := p.Alloc(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h != 0 {
		t.Fatalf("expected first handle to be 0, got %d", h)
	}
	if p.Used() != AllocAlign {
		t.Fatalf("expected 5-byte alloc to round up to %d, got %d", AllocAlign, p.Used())
	}
}

func TestMemoryPoolExhaustionErrors(t *testing.T) {
	p := NewMemoryPool(16)
	if _, err := p.Alloc(16); err != nil {
		t.Fatalf("unexpected error filling the pool: %v", err)
	}
	if _, err := p.Alloc(1); err == nil {
		t.Fatalf("expected error allocating past capacity")
	}
}

func TestMemoryPoolPurgeResetsRover(t *testing.T) {
	p := NewMemoryPool(64)
	if _, err := p.Alloc(32); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Purge()
	if p.Used() != 0 {
		t.Fatalf("expected rover reset to 0, got %d", p.Used())
	}
}

func TestMemoryPoolPtrRoundTrips(t *testing.T) {
	p := NewMemoryPool(64)
	type payload struct{ A, B float32 }
	h, err := p.Alloc(8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := Ptr[payload](p, h)
	v.A, v.B = 1.5, 2.5

	again := Ptr[payload](p, h)
	if again.A != 1.5 || again.B != 2.5 {
		t.Fatalf("expected write through Ptr to persist, got %+v", *again)
	}
}
