package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mulework/mule"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts mule.Metrics to Prometheus collectors.
type MetricsExporter struct {
	itemDurationSeconds *prom.HistogramVec
	itemsSubmittedTotal *prom.CounterVec
	submitRejectedTotal *prom.CounterVec
	resetsTotal         *prom.CounterVec
}

var _ mule.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for mule.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "mule"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "item_duration_seconds",
		Help:      "Kernel execution duration per item in seconds.",
		Buckets:   buckets,
	}, []string{"pool", "worker"})
	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "items_submitted_total",
		Help:      "Total number of items submitted.",
	}, []string{"pool"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "submit_rejected_total",
		Help:      "Total number of rejected submissions.",
	}, []string{"pool", "reason"})
	resetsVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "resets_total",
		Help:      "Total number of counter rewinds.",
	}, []string{"pool"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if resetsVec, err = registerCollector(reg, resetsVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		itemDurationSeconds: durationVec,
		itemsSubmittedTotal: submittedVec,
		submitRejectedTotal: rejectedVec,
		resetsTotal:         resetsVec,
	}, nil
}

// RecordSubmit records an accepted submission batch.
func (m *MetricsExporter) RecordSubmit(pool string, count uint64) {
	if m == nil {
		return
	}
	m.itemsSubmittedTotal.WithLabelValues(normalizeLabel(pool, "unknown")).Add(float64(count))
}

// RecordSubmitRejected records a refused submission.
func (m *MetricsExporter) RecordSubmitRejected(pool string, reason string) {
	if m == nil {
		return
	}
	m.submitRejectedTotal.WithLabelValues(normalizeLabel(pool, "unknown"), normalizeLabel(reason, "unknown")).Inc()
}

// RecordItemDuration records one kernel execution duration.
func (m *MetricsExporter) RecordItemDuration(pool string, worker int, duration time.Duration) {
	if m == nil {
		return
	}
	m.itemDurationSeconds.WithLabelValues(normalizeLabel(pool, "unknown"), strconv.Itoa(worker)).Observe(duration.Seconds())
}

// RecordReset records a completed counter rewind.
func (m *MetricsExporter) RecordReset(pool string) {
	if m == nil {
		return
	}
	m.resetsTotal.WithLabelValues(normalizeLabel(pool, "unknown")).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
