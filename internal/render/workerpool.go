package render

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/vireo-engine/rendercore/internal/jobqueue"
)

// JobID identifies one scheduled job, returned by ScheduleJob and
// consumed by WaitJob.
type JobID uint64

type scheduledJob struct {
	run  func() interface{}
	done chan interface{}
}

// WorkerPool runs jobs across a fixed set of workers, each with its own
// deque that it pops newest-first; a worker whose deque is empty steals
// the oldest job from a sibling's deque, and yields with runtime.Gosched
// when there is nothing to steal. This generalizes the teacher's channel-fed JobSystem
// (engine/systems/job.go) from one shared channel to one deque per
// worker so workers recursively spawning sub-jobs (extraction spawning
// per-chunk work) keep their own continuations cache-local.
type WorkerPool struct {
	deques []*jobqueue.Deque
	wg     sync.WaitGroup
	quit   chan struct{}

	nextID  uint64
	results sync.Map // JobID -> chan interface{}
}

// NewWorkerPool starts numWorkers goroutines, each owning one deque.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	p := &WorkerPool{
		deques: make([]*jobqueue.Deque, numWorkers),
		quit:   make(chan struct{}),
	}
	for i := range p.deques {
		p.deques[i] = jobqueue.NewDeque(64)
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.workerLoop(i)
	}
	return p
}

func (p *WorkerPool) workerLoop(self int) {
	defer p.wg.Done()
	n := len(p.deques)
	for {
		if job, ok := p.deques[self].PopBack(); ok {
			job()
			continue
		}
		stole := false
		for i := 1; i < n; i++ {
			victim := (self + i) % n
			if job, ok := p.deques[victim].PopFront(); ok {
				job()
				stole = true
				break
			}
		}
		if stole {
			continue
		}
		select {
		case <-p.quit:
			return
		default:
			runtime.Gosched()
		}
	}
}

// ScheduleJob enqueues fn on the least-loaded worker's deque and
// returns an id WaitJob can use to retrieve fn's result.
func (p *WorkerPool) ScheduleJob(fn func() interface{}) JobID {
	id := JobID(atomic.AddUint64(&p.nextID, 1))
	done := make(chan interface{}, 1)
	p.results.Store(id, done)

	target := 0
	best := p.deques[0].Len()
	for i, d := range p.deques {
		if l := d.Len(); l < best {
			best, target = l, i
		}
	}
	p.deques[target].PushBack(func() {
		done <- fn()
	})
	return id
}

// WaitJob blocks until the job scheduled as id completes and returns
// its result.
func (p *WorkerPool) WaitJob(id JobID) interface{} {
	v, ok := p.results.Load(id)
	if !ok {
		return nil
	}
	done := v.(chan interface{})
	result := <-done
	p.results.Delete(id)
	return result
}

// Shutdown stops every worker once its deque drains.
func (p *WorkerPool) Shutdown() {
	close(p.quit)
	p.wg.Wait()
}
