package mule

import "sync/atomic"

// cacheLinePad prevents false sharing by padding to cache line size (64 bytes).
type cacheLinePad struct {
	_ [64]byte
}

// progress holds the three monotonic counters that define the state of the
// queue. Each counter grows without bound and is rewound only by Reset.
// The counters are padded onto dedicated cache lines; workers hammer
// claimed with CAS while submitters hammer queued.
//
// Invariant outside of Reset: completed <= claimed <= queued.
type progress struct {
	_         cacheLinePad
	queued    atomic.Uint64 // items ever submitted
	_         cacheLinePad
	claimed   atomic.Uint64 // items claimed by workers; claimed value v means indexes 1..v are taken
	_         cacheLinePad
	completed atomic.Uint64 // kernel invocations finished
	_         cacheLinePad
}

// snapshot returns a consistent-enough view of the three counters.
// completed is loaded first and queued last so that concurrent growth
// can never make the result violate completed <= claimed <= queued.
func (pr *progress) snapshot() (queued, claimed, completed uint64) {
	completed = pr.completed.Load()
	claimed = pr.claimed.Load()
	queued = pr.queued.Load()
	return queued, claimed, completed
}

// zero rewinds all three counters. queued must be stored first: the
// worker loop loads claimed before queued, so a worker that sees the
// new claimed value also sees the new queued value and parks instead
// of claiming against a stale total.
func (pr *progress) zero() {
	pr.queued.Store(0)
	pr.claimed.Store(0)
	pr.completed.Store(0)
}
