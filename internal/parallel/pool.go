// Package parallel provides the worker pool equations are rendered on.
package parallel

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("parallel: pool closed")

// Task is one unit of work. It receives the context it was submitted with.
type Task func(ctx context.Context)

type job struct {
	ctx  context.Context
	task Task
}

// run executes the job unless its context has already ended.
func (j job) run() bool {
	if j.ctx.Err() != nil {
		return false
	}
	j.task(j.ctx)
	return true
}

// WorkerPool is a fixed set of goroutines with one queue each.
//
// Submit places a task on the shortest queue. A worker whose queue is empty
// steals from the others, so one slow equation does not hold back the tasks
// queued behind it. Tasks whose context has ended by the time a worker
// picks them up are dropped without running.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan job

	// done signals workers to stop.
	done chan struct{}
	wg   sync.WaitGroup

	// mu orders Submit before Close, so no task is queued after done closes.
	mu      sync.RWMutex
	running atomic.Bool

	skipped atomic.Int64
}

// NewWorkerPool creates a pool with the given number of workers. If
// workers is 0 or negative, GOMAXPROCS is used. Workers start immediately.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan job, workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan job, queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	own := p.queues[id]
	for {
		select {
		case <-p.done:
			p.drain(own)
			return
		case j := <-own:
			p.exec(j)
			continue
		default:
		}

		if j, ok := p.steal(id); ok {
			p.exec(j)
			continue
		}

		select {
		case <-p.done:
			p.drain(own)
			return
		case j := <-own:
			p.exec(j)
		}
	}
}

func (p *WorkerPool) exec(j job) {
	if !j.run() {
		p.skipped.Add(1)
	}
}

// drain runs what is left in a queue after Close.
func (p *WorkerPool) drain(queue chan job) {
	for {
		select {
		case j := <-queue:
			p.exec(j)
		default:
			return
		}
	}
}

// steal takes one job from another worker's queue.
func (p *WorkerPool) steal(self int) (job, bool) {
	for i := 1; i < p.workers; i++ {
		select {
		case j := <-p.queues[(self+i)%p.workers]:
			return j, true
		default:
		}
	}
	return job{}, false
}

// Submit queues a task. It blocks while every queue is full, and returns
// the context's error if ctx ends first or ErrPoolClosed if the pool is
// closed. A nil task is ignored.
func (p *WorkerPool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running.Load() {
		return ErrPoolClosed
	}

	q := p.queues[p.shortest()]
	select {
	case q <- job{ctx: ctx, task: task}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *WorkerPool) shortest() int {
	idx, n := 0, len(p.queues[0])
	for i := 1; i < p.workers; i++ {
		if l := len(p.queues[i]); l < n {
			idx, n = i, l
		}
	}
	return idx
}

// Close stops accepting work, runs the tasks still queued and waits for
// the workers to exit. Close is safe to call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}

	// Wait out any Submit that saw the pool running, so that nothing is
	// queued after the workers drain.
	p.mu.Lock()
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// Pending returns the number of queued tasks. The value is approximate
// while workers are busy.
func (p *WorkerPool) Pending() int {
	total := 0
	for _, q := range p.queues {
		total += len(q)
	}
	return total
}

// Skipped returns how many tasks were dropped because their context had
// ended before they started.
func (p *WorkerPool) Skipped() int64 {
	return p.skipped.Load()
}
