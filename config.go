package mule

import (
	"fmt"
	"time"
)

// MaxWorkers is the capacity bound on a pool's worker set. The worker
// set is fixed at construction; counts outside 1..MaxWorkers are
// rejected by New rather than truncated.
const MaxWorkers = 8

// Config contains all configuration options for a pool.
type Config struct {
	// Workers is the number of worker goroutines.
	// Fixed for the life of the pool. Must be in 1..MaxWorkers.
	Workers int

	// IdleParkInterval is the longest an idle worker sleeps before
	// re-checking the counters. The periodic re-check is what keeps
	// the pool live when a wakeup is lost, so it must be positive.
	// Defaults to 10ms.
	IdleParkInterval time.Duration

	// SyncPollInterval is the longest Synchronize sleeps between
	// re-checks of the counters. Must be positive. Defaults to 1ms.
	SyncPollInterval time.Duration

	// PinWorkerThreads pins each worker goroutine to an OS thread.
	// This can improve cache locality for CPU-bound kernels.
	PinWorkerThreads bool

	// Name identifies the pool in diagnostics and metric labels.
	// Defaults to "mule".
	Name string

	// Logger receives diagnostic lines. If nil, diagnostics are
	// disabled with no formatting cost.
	Logger Logger

	// Metrics receives instrumentation callbacks. If nil, the pool
	// skips instrumentation entirely, including kernel timing.
	Metrics Metrics
}

// DefaultConfig returns a Config with sensible defaults. The worker
// count is taken by New as a positional argument, not an option.
func DefaultConfig() Config {
	return Config{
		IdleParkInterval: 10 * time.Millisecond,
		SyncPollInterval: time.Millisecond,
		Name:             "mule",
	}
}

// Validate checks the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errInvalidConfig("Workers must be >= 1")
	}
	if c.Workers > MaxWorkers {
		return errInvalidConfig(fmt.Sprintf("Workers must be <= %d", MaxWorkers))
	}
	if c.IdleParkInterval <= 0 {
		return errInvalidConfig("IdleParkInterval must be > 0")
	}
	if c.SyncPollInterval <= 0 {
		return errInvalidConfig("SyncPollInterval must be > 0")
	}
	return nil
}

// Option customizes a pool at construction time.
type Option func(*Config)

// WithIdleParkInterval sets the idle worker re-check interval.
func WithIdleParkInterval(d time.Duration) Option {
	return func(c *Config) { c.IdleParkInterval = d }
}

// WithSyncPollInterval sets the Synchronize re-check interval.
func WithSyncPollInterval(d time.Duration) Option {
	return func(c *Config) { c.SyncPollInterval = d }
}

// WithPinnedWorkers pins each worker goroutine to an OS thread.
func WithPinnedWorkers() Option {
	return func(c *Config) { c.PinWorkerThreads = true }
}

// WithName sets the pool name used in diagnostics and metric labels.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithLogger sets the diagnostics sink.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithMetrics sets the instrumentation sink.
func WithMetrics(m Metrics) Option {
	return func(c *Config) { c.Metrics = m }
}
