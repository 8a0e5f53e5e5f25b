package jobqueue

import "fmt"

// Ring is a fixed-capacity circular buffer of Jobs, a direct generic
// adaptation of the teacher's RingQueue. The render WorkerPool does not
// use it: jobs go straight onto the per-worker Deques.
type Ring struct {
	data       []Job
	size       int
	readIndex  int
	writeIndex int
	count      int
}

// NewRing creates a ring buffer with the given fixed capacity.
func NewRing(size int) *Ring {
	return &Ring{data: make([]Job, size), size: size}
}

// Enqueue adds a job to the ring.
func (r *Ring) Enqueue(j Job) error {
	if r.IsFull() {
		return fmt.Errorf("jobqueue: ring is full")
	}
	r.data[r.writeIndex] = j
	r.writeIndex = (r.writeIndex + 1) % r.size
	r.count++
	return nil
}

// Dequeue removes and returns the oldest job.
func (r *Ring) Dequeue() (Job, error) {
	if r.IsEmpty() {
		return nil, fmt.Errorf("jobqueue: ring is empty")
	}
	j := r.data[r.readIndex]
	r.readIndex = (r.readIndex + 1) % r.size
	r.count--
	return j, nil
}

func (r *Ring) IsEmpty() bool { return r.count == 0 }
func (r *Ring) IsFull() bool  { return r.count == r.size }
func (r *Ring) Len() int      { return r.count }
