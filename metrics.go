package mule

import "time"

// Metrics receives instrumentation callbacks from a pool.
// Implementations must be safe for concurrent use; workers call
// RecordItemDuration in parallel. The adapter in
// observability/prometheus implements this interface.
//
// A nil Metrics on the pool disables instrumentation entirely,
// including the per-item clock reads around the kernel.
type Metrics interface {
	// RecordSubmit is called once per accepted Submit with the
	// submitted count (which may be zero).
	RecordSubmit(pool string, count uint64)

	// RecordSubmitRejected is called when a Submit is refused.
	RecordSubmitRejected(pool string, reason string)

	// RecordItemDuration is called after every kernel invocation with
	// the executing worker's index and the kernel's wall time.
	RecordItemDuration(pool string, worker int, duration time.Duration)

	// RecordReset is called once per completed Reset.
	RecordReset(pool string)
}
