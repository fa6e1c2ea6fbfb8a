package mule

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Kernel is the work callback: invoked exactly once per claimed item
// index. data is the caller-owned value given to New, worker is the
// executing worker's index (0-based) and item is the item index
// (1-based, strictly increasing, rewound only by Reset).
//
// Kernels run concurrently on up to Workers goroutines. The pool never
// inspects or mutates data; to share mutable state across invocations,
// make T a pointer type and synchronize access yourself. A panicking
// kernel is not recovered and takes the process down, as any goroutine
// panic does.
type Kernel[T any] func(data T, worker int, item uint64)

// lifecycle is the pool state machine. Transitions only move forward:
//
//	created -> running -> stopped -> closed
//
// with created -> closed allowed for pools that never start. A stopped
// or closed pool cannot return to running.
type lifecycle int32

const (
	stateCreated lifecycle = iota
	stateRunning
	stateStopped
	stateClosed
)

// Pool executes a caller-supplied kernel once per submitted item index
// on a fixed set of worker goroutines. Work carries no payload: callers
// submit a count, workers race to claim indexes with a lock-free CAS on
// the claimed counter, and all progress state lives in three atomic
// counters. The single mutex and the two condition variables exist only
// so that idle workers and synchronizers can sleep; they never guard
// the counters.
//
// All methods are safe for concurrent use except where their
// documentation says otherwise (Reset, Close).
type Pool[T any] struct {
	cfg    Config
	kernel Kernel[T]
	data   T

	progress progress

	state  atomic.Int32 // lifecycle
	active atomic.Int32 // live worker goroutines, for diagnostics

	mu        sync.Mutex
	workAvail *sync.Cond // workers park here when drained
	queueDone *sync.Cond // synchronizers park here until drained

	workers []worker[T]
	wg      sync.WaitGroup
}

// New creates a pool of workers goroutines that will invoke kernel once
// per submitted item index. data is handed unchanged to every
// invocation. No workers run until Start.
//
// workers must be in 1..MaxWorkers and kernel must be non-nil;
// violations are reported as configuration errors, never adjusted
// silently.
func New[T any](workers int, kernel Kernel[T], data T, opts ...Option) (*Pool[T], error) {
	cfg := DefaultConfig()
	cfg.Workers = workers
	for _, opt := range opts {
		opt(&cfg)
	}
	if kernel == nil {
		return nil, errInvalidConfig("kernel must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Pool[T]{
		cfg:    cfg,
		kernel: kernel,
		data:   data,
	}
	p.workAvail = sync.NewCond(&p.mu)
	p.queueDone = sync.NewCond(&p.mu)
	p.workers = make([]worker[T], cfg.Workers)
	for i := range p.workers {
		p.workers[i] = worker[T]{pool: p, idx: i}
	}
	return p, nil
}

// Start spawns the worker set. It is idempotent while the pool is
// running: a second Start adds no workers. A stopped or closed pool
// cannot be restarted; construct a new pool instead.
func (p *Pool[T]) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch lifecycle(p.state.Load()) {
	case stateRunning:
		return nil // Already running
	case stateStopped:
		return ErrPoolStopped
	case stateClosed:
		return ErrPoolClosed
	}

	p.debugf("starting %d workers", p.cfg.Workers)
	p.state.Store(int32(stateRunning))
	for i := range p.workers {
		p.wg.Add(1)
		go p.workers[i].run()
	}
	return nil
}

// Submit queues n more item indexes and wakes the workers. It returns
// the new cumulative total of items ever submitted; the indexes granted
// by this call are total-n+1 through total. n may be zero.
//
// Submit is legal before Start (items wait for workers) and after Stop
// (the queue grows but nothing consumes it). It fails only on a closed
// pool. Submit must not race a Reset; see Reset.
func (p *Pool[T]) Submit(n uint64) (uint64, error) {
	if lifecycle(p.state.Load()) == stateClosed {
		if m := p.cfg.Metrics; m != nil {
			m.RecordSubmitRejected(p.cfg.Name, "closed")
		}
		return 0, ErrPoolClosed
	}

	total := p.progress.queued.Add(n)
	if m := p.cfg.Metrics; m != nil {
		m.RecordSubmit(p.cfg.Name, n)
	}
	p.tracef("submit %d, queue at %d", n, total)
	p.workAvail.Broadcast()
	return total, nil
}

// Synchronize blocks until the queue is quenched: completed has caught
// up with queued, re-reading both on every check. Items submitted while
// a Synchronize is blocked extend the wait.
//
// Progress requires live workers; synchronizing a pool with queued
// items and no started workers blocks until they appear. Use
// SynchronizeContext to bound the wait.
func (p *Pool[T]) Synchronize() error {
	return p.SynchronizeContext(context.Background())
}

// SynchronizeContext is Synchronize with an escape hatch: cancellation
// or deadline expiry on ctx is honored at every poll interval.
func (p *Pool[T]) SynchronizeContext(ctx context.Context) error {
	if lifecycle(p.state.Load()) == stateClosed {
		return ErrPoolClosed
	}

	p.debugf("synchronize: quench queue")
	// Flush parked workers toward pending work first.
	p.workAvail.Broadcast()

	p.mu.Lock()
	defer p.mu.Unlock()
	for {
		queued, _, completed := p.progress.snapshot()
		if completed >= queued {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if lifecycle(p.state.Load()) == stateClosed {
			return ErrPoolClosed
		}
		// The completion wakeup can be lost; the timer makes the
		// re-check above unconditional.
		p.waitLocked(p.queueDone, p.cfg.SyncPollInterval)
	}
}

// Reset quenches the queue, rewinds all three counters to zero and
// wakes the workers; item indexes restart at 1. The pool keeps running.
//
// The caller must guarantee no Submit is in flight for the duration of
// the call: a racing submit can be erased by the rewind without
// detection. Stats taken during the rewind may see a transiently
// inconsistent triple.
func (p *Pool[T]) Reset() error {
	if err := p.Synchronize(); err != nil {
		return err
	}
	p.progress.zero()
	if m := p.cfg.Metrics; m != nil {
		m.RecordReset(p.cfg.Name)
	}
	p.debugf("reset: counters rewound")
	p.workAvail.Broadcast()
	return nil
}

// Stop clears the running state, wakes every parked worker and joins
// them. Workers drain the queue before exiting, so items queued before
// Stop are completed by the time Stop returns. Stop is idempotent, and
// stopping a pool that never started is a no-op.
func (p *Pool[T]) Stop() {
	p.mu.Lock()
	if lifecycle(p.state.Load()) != stateRunning {
		p.mu.Unlock()
		return
	}
	p.debugf("stop: joining workers")
	p.state.Store(int32(stateStopped))
	p.mu.Unlock()

	p.workAvail.Broadcast()
	p.wg.Wait()
	p.debugf("stop: workers joined")
}

// Close stops the pool and marks it terminal: every later operation
// reports ErrPoolClosed. Close is idempotent and must not run
// concurrently with other operations on the pool.
func (p *Pool[T]) Close() error {
	p.Stop()

	p.mu.Lock()
	if lifecycle(p.state.Load()) == stateClosed {
		p.mu.Unlock()
		return nil
	}
	p.state.Store(int32(stateClosed))
	p.mu.Unlock()

	// Flush anything still parked on either condition.
	p.workAvail.Broadcast()
	p.queueDone.Broadcast()
	p.debugf("closed")
	return nil
}

// Stats returns a point-in-time snapshot of the counters and the
// lifecycle state.
func (p *Pool[T]) Stats() Stats {
	queued, claimed, completed := p.progress.snapshot()
	return Stats{
		Name:          p.cfg.Name,
		Queued:        queued,
		Claimed:       claimed,
		Completed:     completed,
		Workers:       p.cfg.Workers,
		ActiveWorkers: int(p.active.Load()),
		Running:       p.IsRunning(),
	}
}

// IsRunning reports whether the pool is between Start and Stop.
func (p *Pool[T]) IsRunning() bool {
	return lifecycle(p.state.Load()) == stateRunning
}

// WorkerCount returns the configured number of workers.
func (p *Pool[T]) WorkerCount() int {
	return p.cfg.Workers
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.cfg.Name
}

// waitLocked blocks on c until a signal arrives or interval elapses,
// whichever is first. The caller must hold p.mu. The timer may wake a
// different waiter than its owner; every waiter re-checks its condition
// in a loop, so any wakeup is a valid wakeup.
func (p *Pool[T]) waitLocked(c *sync.Cond, interval time.Duration) {
	timer := time.AfterFunc(interval, func() {
		p.mu.Lock()
		c.Signal()
		p.mu.Unlock()
	})
	c.Wait()
	timer.Stop() // May be no-op if already fired
}

func (p *Pool[T]) debugf(format string, args ...any) {
	if l := p.cfg.Logger; l != nil {
		l.Logf(LevelDebug, p.cfg.Name+": "+format, args...)
	}
}

func (p *Pool[T]) tracef(format string, args ...any) {
	if l := p.cfg.Logger; l != nil {
		l.Logf(LevelTrace, p.cfg.Name+": "+format, args...)
	}
}
