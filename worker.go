package mule

import (
	"runtime"
	"time"
)

// worker is one member of the pool's fixed worker set.
type worker[T any] struct {
	pool *Pool[T]
	idx  int
}

// run is the claim-or-sleep loop each worker executes until the pool
// stops. The stop flag is only honored once the queue is drained, so
// every item queued before Stop is consumed before exit.
func (w *worker[T]) run() {
	p := w.pool
	defer p.wg.Done()

	if p.cfg.PinWorkerThreads {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	p.active.Add(1)
	defer p.active.Add(-1)
	p.debugf("worker %d: started", w.idx)

	for {
		// Load order pairs with progress.zero's store order: a view
		// torn by a concurrent Reset can only overstate claimed, and
		// the >= guard below turns that into a park, never a claim
		// against a stale total.
		claimed := p.progress.claimed.Load()
		queued := p.progress.queued.Load()

		if claimed >= queued {
			// Drained. Park until a submit, a stop, or the
			// revalidation timer wakes us.
			p.mu.Lock()
			if lifecycle(p.state.Load()) != stateRunning {
				p.mu.Unlock()
				break
			}
			p.tracef("worker %d: parked", w.idx)
			p.waitLocked(p.workAvail, p.cfg.IdleParkInterval)
			p.mu.Unlock()
			p.tracef("worker %d: woke", w.idx)
			continue
		}

		item := claimed + 1
		if !p.progress.claimed.CompareAndSwap(claimed, item) {
			// Another worker took this index; retry immediately.
			continue
		}
		p.tracef("worker %d: claimed item %d", w.idx, item)

		if m := p.cfg.Metrics; m != nil {
			start := time.Now()
			p.kernel(p.data, w.idx, item)
			m.RecordItemDuration(p.cfg.Name, w.idx, time.Since(start))
		} else {
			p.kernel(p.data, w.idx, item)
		}

		done := p.progress.completed.Add(1)
		p.tracef("worker %d: completed item %d", w.idx, item)
		if done == p.progress.queued.Load() {
			// Last outstanding item as of this load. Synchronize does
			// not depend on this wakeup; it re-checks on a timer.
			p.queueDone.Broadcast()
		}
	}

	p.debugf("worker %d: exiting", w.idx)
}
