// Package mule provides a fixed-capacity, lock-minimized worker pool in
// which work is represented purely as monotonically increasing item
// indexes.
//
// Callers submit a count of items rather than task objects. Workers
// race to claim item indexes with a lock-free compare-and-swap on a
// shared counter and invoke a caller-supplied kernel exactly once per
// claimed index. Three atomic counters (queued, claimed, completed)
// carry all progress state; one mutex and two condition variables exist
// solely so that idle workers and synchronizing callers can sleep.
//
// # Quick Start
//
//	counter := new(atomic.Uint64)
//	pool, err := mule.New(2, func(c *atomic.Uint64, worker int, item uint64) {
//		c.Add(1)
//	}, counter)
//	if err != nil {
//		log.Fatal(err)
//	}
//	pool.Submit(8)
//	pool.Start()
//	pool.Synchronize() // blocks until all 8 items completed
//	pool.Stop()
//	pool.Close()
//
// # Key Concepts
//
// Kernel: the work callback, invoked as kernel(data, worker, item).
// Item indexes are 1-based and strictly increasing within a round; the
// worker index identifies which of the fixed workers ran the item. The
// pool never inspects the data value.
//
// Quench: Synchronize blocks the caller until completed catches up with
// queued. Reset quenches and then rewinds the counters so indexes
// restart at 1, which lets one pool be reused across rounds.
//
// Lost wakeups: submission and completion signals are deliberately sent
// without ceremony and may be lost. Every wait in the pool is a timed
// wait (idle workers re-check on IdleParkInterval, synchronizers on
// SyncPollInterval), so a lost signal costs at most one interval, never
// liveness.
//
// # Lifecycle
//
// A pool moves forward only: created -> running -> stopped -> closed.
// Start is idempotent while running; Stop drains the queue, joins the
// workers and is idempotent; Close is terminal. Submitting is legal
// before Start and after Stop, but only a running pool makes progress.
//
// # Observability
//
// Diagnostics are injected per pool (WithLogger) at two verbosity
// levels, debug for lifecycle events and trace for per-item events.
// Instrumentation hooks (WithMetrics) feed the Prometheus adapter in
// observability/prometheus, which also exports Stats() snapshots.
package mule
