package mule

import (
	"sync"
	"testing"
)

// TestProgress_ConcurrentClaimsAreUnique tests the raw claim protocol
// Given: a progress triple with 10000 queued items and 8 claimers
// When: every claimer runs the load/guard/CAS loop until the queue drains
// Then: each index in 1..10000 was claimed by exactly one claimer
func TestProgress_ConcurrentClaimsAreUnique(t *testing.T) {
	const (
		items    = 10000
		claimers = 8
	)

	var pr progress
	pr.queued.Store(items)

	results := make([][]uint64, claimers)
	var wg sync.WaitGroup
	for g := 0; g < claimers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for {
				claimed := pr.claimed.Load()
				queued := pr.queued.Load()
				if claimed >= queued {
					return
				}
				item := claimed + 1
				if pr.claimed.CompareAndSwap(claimed, item) {
					results[g] = append(results[g], item)
					pr.completed.Add(1)
				}
			}
		}(g)
	}
	wg.Wait()

	hits := make([]int, items+1)
	total := 0
	for _, claims := range results {
		for _, item := range claims {
			if item < 1 || item > items {
				t.Fatalf("claimed index out of range: %d", item)
			}
			hits[item]++
			total++
		}
	}
	if total != items {
		t.Fatalf("total claims: got = %d, want = %d", total, items)
	}
	for i := 1; i <= items; i++ {
		if hits[i] != 1 {
			t.Fatalf("index %d claim count: got = %d, want = 1", i, hits[i])
		}
	}
	if got := pr.completed.Load(); got != items {
		t.Errorf("completed: got = %d, want = %d", got, items)
	}
}

func TestProgress_ZeroRewindsAllCounters(t *testing.T) {
	var pr progress
	pr.queued.Store(8)
	pr.claimed.Store(8)
	pr.completed.Store(8)

	pr.zero()

	queued, claimed, completed := pr.snapshot()
	if queued != 0 || claimed != 0 || completed != 0 {
		t.Errorf("counters after zero: got = %d/%d/%d, want = 0/0/0",
			queued, claimed, completed)
	}
}

// TestProgress_SnapshotHoldsInvariant tests snapshot load ordering
// Given: a grower advancing all three counters in lockstep
// When: snapshots are taken concurrently
// Then: no snapshot shows completed > claimed or claimed > queued
func TestProgress_SnapshotHoldsInvariant(t *testing.T) {
	var pr progress
	stop := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				pr.queued.Add(1)
				pr.claimed.Add(1)
				pr.completed.Add(1)
			}
		}
	}()

	for i := 0; i < 100000; i++ {
		queued, claimed, completed := pr.snapshot()
		if completed > claimed || claimed > queued {
			close(stop)
			wg.Wait()
			t.Fatalf("snapshot %d broke invariant: %d/%d/%d", i, queued, claimed, completed)
		}
	}
	close(stop)
	wg.Wait()
}
