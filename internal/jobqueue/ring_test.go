package jobqueue

import "testing"

func TestRingFIFOOrder(t *testing.T) {
	r := NewRing(3)
	order := []int{}
	if err := r.Enqueue(func() { order = append(order, 1) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Enqueue(func() { order = append(order, 2) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	j, err := r.Dequeue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	j()
	if len(order) != 1 || order[0] != 1 {
		t.Fatalf("expected FIFO order, got %v", order)
	}
}

func TestRingFullAndEmptyErrors(t *testing.T) {
	r := NewRing(1)
	if err := r.Enqueue(func() {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := r.Enqueue(func() {}); err == nil {
		t.Fatalf("expected error enqueueing into a full ring")
	}
	if _, err := r.Dequeue(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.Dequeue(); err == nil {
		t.Fatalf("expected error dequeueing an empty ring")
	}
}
