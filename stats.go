package mule

// Stats is a point-in-time snapshot of a pool's counters and lifecycle
// state, as returned by Pool.Stats. The three counters in one snapshot
// always satisfy Completed <= Claimed <= Queued, except when the
// snapshot races a Reset mid-rewind.
type Stats struct {
	// Name is the pool name.
	Name string

	// Queued is the cumulative count of items ever submitted.
	Queued uint64

	// Claimed is the cumulative count of items claimed by workers.
	Claimed uint64

	// Completed is the cumulative count of finished kernel invocations.
	Completed uint64

	// Workers is the configured worker count.
	Workers int

	// ActiveWorkers is the number of worker goroutines currently live.
	// Zero before Start and again after Stop has joined them.
	ActiveWorkers int

	// Running reports whether the pool is between Start and Stop.
	Running bool
}

// Pending returns the number of submitted items not yet completed.
func (s Stats) Pending() uint64 {
	return s.Queued - s.Completed
}
