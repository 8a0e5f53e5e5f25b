package fence

import "testing"

func TestLockSucceedsWhenUnused(t *testing.T) {
	l := NewLockable(42)
	f := New(1, nil)
	if !l.Lock(f) {
		t.Fatalf("expected lock to succeed on an unused resource")
	}
	if f.Refcount() != 3 {
		t.Fatalf("expected lock to ref the fence (2 initial + 1), got %d", f.Refcount())
	}
}

func TestLockFailsWhileInUse(t *testing.T) {
	l := NewLockable("rt")
	f1 := New(1, nil)
	if !l.Lock(f1) {
		t.Fatalf("first lock should succeed")
	}
	// f1 still has refcount 3 (2 initial + 1 from lock), simulating an
	// active user beyond this lock.
	f2 := New(2, nil)
	if l.Lock(f2) {
		t.Fatalf("expected second lock to fail while f1 is still in use")
	}
}

func TestLockSucceedsAfterDeref(t *testing.T) {
	l := NewLockable("rt")
	f1 := New(1, nil)
	l.Lock(f1)
	// Drop the two extra refs (view + done_fence) so only the lock's own
	// ref remains, simulating the fence having been consumed elsewhere.
	f1.Deref()
	f1.Deref()

	f2 := New(2, nil)
	if !l.Lock(f2) {
		t.Fatalf("expected lock to succeed once prior fence refcount dropped to 1")
	}
}

func TestUnlockDerefsMostRecent(t *testing.T) {
	l := NewLockable(1)
	f := New(1, nil)
	l.Lock(f)
	before := f.Refcount()
	l.Unlock()
	if f.Refcount() != before-1 {
		t.Fatalf("expected unlock to deref the fence once")
	}
}
