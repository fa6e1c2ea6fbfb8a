package mule

import (
	"sync/atomic"
	"testing"
)

// ============================================================================
// Claim Throughput
// ============================================================================

func BenchmarkPool_Throughput(b *testing.B) {
	counter := new(atomic.Uint64)
	pool, _ := New(MaxWorkers, func(c *atomic.Uint64, worker int, item uint64) {
		c.Add(1)
	}, counter)
	defer pool.Close()
	pool.Start()

	b.ResetTimer()
	pool.Submit(uint64(b.N))
	pool.Synchronize()

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "items/sec")
}

func BenchmarkPool_SubmitBatches(b *testing.B) {
	counter := new(atomic.Uint64)
	pool, _ := New(4, func(c *atomic.Uint64, worker int, item uint64) {
		c.Add(1)
	}, counter)
	defer pool.Close()
	pool.Start()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(1)
	}
	pool.Synchronize()

	b.ReportMetric(float64(b.N)/b.Elapsed().Seconds(), "items/sec")
}

// ============================================================================
// Quench Latency
// ============================================================================

func BenchmarkPool_SynchronizeRound(b *testing.B) {
	pool, _ := New(2, func(_ any, worker int, item uint64) {}, nil)
	defer pool.Close()
	pool.Start()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(64)
		pool.Synchronize()
	}
}
