// Package exec provides the task executors used by the parallel multi-level
// engine and the optimized dispatcher: a direct goroutine executor backed by
// the runtime's work-stealing scheduler, and a bounded worker pool with
// two-phase graceful shutdown.
package exec

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrShutdown is returned when work is submitted after shutdown began, or
// when shutdown cannot drain in-flight tasks within its deadline.
var ErrShutdown = errors.New("executor shut down")

// Task is a unit of work. Tasks are plain computations; they do not block
// on anything except memory. Alias so that external executor
// implementations with a plain func() signature satisfy Executor.
type Task = func()

// Executor runs tasks. Submit returns an error only when the executor is
// no longer accepting work; a nil error means the task will run.
type Executor interface {
	Submit(task Task) error
}

// Goroutines is an Executor that hands every task straight to the runtime
// scheduler. It is the default executor: unbounded, work-stealing, nothing
// to shut down.
type Goroutines struct{}

// Submit runs the task on a new goroutine.
func (Goroutines) Submit(task Task) error {
	go task()
	return nil
}

// Pool is a fixed-size worker pool with graceful shutdown. The dispatcher
// owns one when configured with bounded parallelism.
type Pool struct {
	mu      sync.RWMutex
	closed  bool
	tasks   chan Task
	workers sync.WaitGroup
	pending sync.WaitGroup
}

// NewPool starts a pool with the given number of workers. The queue is
// buffered so barrier-style submit pairs never deadlock against each other.
func NewPool(workers, queueDepth int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueDepth < workers {
		queueDepth = workers
	}

	p := &Pool{tasks: make(chan Task, queueDepth)}
	p.workers.Add(workers)
	for range workers {
		go func() {
			defer p.workers.Done()
			for task := range p.tasks {
				task()
				p.pending.Done()
			}
		}()
	}
	return p
}

// Submit queues a task for execution. Returns ErrShutdown once Shutdown
// has begun.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrShutdown
	}
	p.pending.Add(1)
	p.tasks <- task
	return nil
}

// Shutdown stops accepting work and waits up to drainTimeout for queued
// and running tasks to finish, then waits up to killTimeout for the
// workers themselves to exit. A non-nil error reports tasks that outlived
// both deadlines; it is an operational cleanup failure, not a computation
// error.
func (p *Pool) Shutdown(drainTimeout, killTimeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	drained := waitTimeout(&p.pending, drainTimeout)
	close(p.tasks)

	if !waitTimeout(&p.workers, killTimeout) {
		return fmt.Errorf("%w: tasks still running after %v drain and %v kill wait",
			ErrShutdown, drainTimeout, killTimeout)
	}
	if !drained {
		return fmt.Errorf("%w: queue drained only after forced close", ErrShutdown)
	}
	return nil
}

// waitTimeout waits on wg up to d; reports whether the wait completed.
func waitTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
