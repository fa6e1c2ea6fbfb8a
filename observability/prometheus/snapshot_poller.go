package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/mulework/mule"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots.
// mule.Pool implements it for any kernel type.
type PoolSnapshotProvider interface {
	Stats() mule.Stats
}

// SnapshotPoller periodically exports pool Stats() snapshots into
// Prometheus gauges. The progress counters are plain gauges rather than
// Prometheus counters: Reset rewinds them, and a gauge follows the
// rewind where a counter could not.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolQueued        *prom.GaugeVec
	poolClaimed       *prom.GaugeVec
	poolCompleted     *prom.GaugeVec
	poolPending       *prom.GaugeVec
	poolWorkers       *prom.GaugeVec
	poolWorkersActive *prom.GaugeVec
	poolRunning       *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolQueued := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_queued",
		Help:      "Cumulative items submitted, per pool.",
	}, []string{"pool"})
	poolClaimed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_claimed",
		Help:      "Cumulative items claimed by workers, per pool.",
	}, []string{"pool"})
	poolCompleted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_completed",
		Help:      "Cumulative kernel invocations finished, per pool.",
	}, []string{"pool"})
	poolPending := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_pending",
		Help:      "Items submitted but not yet completed, per pool.",
	}, []string{"pool"})
	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_workers",
		Help:      "Configured worker count per pool.",
	}, []string{"pool"})
	poolWorkersActive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_workers_active",
		Help:      "Live worker goroutines per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "mule",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=stopped).",
	}, []string{"pool"})

	var err error
	if poolQueued, err = registerCollector(reg, poolQueued); err != nil {
		return nil, err
	}
	if poolClaimed, err = registerCollector(reg, poolClaimed); err != nil {
		return nil, err
	}
	if poolCompleted, err = registerCollector(reg, poolCompleted); err != nil {
		return nil, err
	}
	if poolPending, err = registerCollector(reg, poolPending); err != nil {
		return nil, err
	}
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolWorkersActive, err = registerCollector(reg, poolWorkersActive); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:          interval,
		pools:             make(map[string]PoolSnapshotProvider),
		poolQueued:        poolQueued,
		poolClaimed:       poolClaimed,
		poolCompleted:     poolCompleted,
		poolPending:       poolPending,
		poolWorkers:       poolWorkers,
		poolWorkersActive: poolWorkersActive,
		poolRunning:       poolRunning,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	for name, provider := range p.pools {
		stats := provider.Stats()
		p.poolQueued.WithLabelValues(name).Set(float64(stats.Queued))
		p.poolClaimed.WithLabelValues(name).Set(float64(stats.Claimed))
		p.poolCompleted.WithLabelValues(name).Set(float64(stats.Completed))
		p.poolPending.WithLabelValues(name).Set(float64(stats.Pending()))
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		p.poolWorkersActive.WithLabelValues(name).Set(float64(stats.ActiveWorkers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}
	}
	p.poolsMu.RUnlock()
}
