// Package workerpool runs blocking handler bodies off the event loop on a
// fixed set of goroutines fed by one FIFO queue.
package workerpool

import (
	"container/list"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

const logPrefix = "workerpool:pool"

// DefaultWorkers is used when New is given a non-positive size.
const DefaultWorkers = 4

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("worker pool closed")

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int
	Queued    int
	Enqueued  uint64
	Completed uint64
	Panicked  uint64
}

// Pool is a fixed-size worker pool with an unbounded queue. Run never waits
// for a free worker; there is no backpressure.
type Pool struct {
	size int

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  *list.List
	closed bool
	wg     sync.WaitGroup

	enqueued  atomic.Uint64
	completed atomic.Uint64
	panicked  atomic.Uint64
}

// New starts size workers.
func New(size int) *Pool {
	if size <= 0 {
		size = DefaultWorkers
	}
	p := &Pool{size: size, tasks: list.New()}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	slog.Debug(fmt.Sprintf("%s - started %d workers", logPrefix, size))
	return p
}

// Size returns the worker count.
func (p *Pool) Size() int {
	return p.size
}

// Run enqueues task and returns immediately.
func (p *Pool) Run(task func()) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("%s - %w", logPrefix, ErrClosed)
	}
	p.tasks.PushBack(task)
	p.enqueued.Add(1)
	p.mu.Unlock()
	p.cond.Signal()
	return nil
}

// Close stops accepting tasks and releases idle workers. Tasks still queued
// are dropped; tasks already running finish in the background.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	dropped := p.tasks.Len()
	p.tasks.Init()
	p.mu.Unlock()
	p.cond.Broadcast()

	if dropped > 0 {
		slog.Warn(fmt.Sprintf("%s - closed with %d queued tasks dropped", logPrefix, dropped))
	}
}

// Wait blocks until every worker has exited. Only meaningful after Close.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stats returns current counters.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	queued := p.tasks.Len()
	p.mu.Unlock()
	return Stats{
		Workers:   p.size,
		Queued:    queued,
		Enqueued:  p.enqueued.Load(),
		Completed: p.completed.Load(),
		Panicked:  p.panicked.Load(),
	}
}

func (p *Pool) worker(n int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Len() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		task := p.tasks.Remove(p.tasks.Front()).(func())
		p.mu.Unlock()

		p.execute(n, task)
	}
}

func (p *Pool) execute(n int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.panicked.Add(1)
			slog.Error(fmt.Sprintf("%s - worker %d recovered panic: %v\n%s", logPrefix, n, r, debug.Stack()))
		}
		p.completed.Add(1)
	}()
	task()
}
