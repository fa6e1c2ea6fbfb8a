// Package config loads run-configuration files for the mule driver.
//
// A file describes one driver run: the pool to build, the workload to push
// through it, and the optional metrics endpoint. Both YAML and JSON are
// accepted, selected by file extension.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mulework/mule"
)

// FileConfig is the on-disk structure of a run-configuration file.
type FileConfig struct {
	Pool     PoolConfig     `yaml:"pool" json:"pool"`
	Workload WorkloadConfig `yaml:"workload" json:"workload"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
}

// PoolConfig configures the pool the driver builds.
type PoolConfig struct {
	Name             string `yaml:"name" json:"name"`
	Workers          int    `yaml:"workers" json:"workers"`
	IdleParkInterval string `yaml:"idle_park_interval" json:"idle_park_interval"`
	SyncPollInterval string `yaml:"sync_poll_interval" json:"sync_poll_interval"`
	PinWorkers       bool   `yaml:"pin_workers" json:"pin_workers"`
}

// WorkloadConfig configures the items the driver submits.
type WorkloadConfig struct {
	Items  uint64  `yaml:"items" json:"items"`
	Rounds int     `yaml:"rounds" json:"rounds"`
	Work   string  `yaml:"work" json:"work"`
	Rate   float64 `yaml:"rate" json:"rate"`
	Burst  int     `yaml:"burst" json:"burst"`
}

// MetricsConfig configures the optional Prometheus endpoint.
type MetricsConfig struct {
	Listen       string `yaml:"listen" json:"listen"`
	PollInterval string `yaml:"poll_interval" json:"poll_interval"`
}

// LoadFile reads and parses a configuration file. The format is chosen by
// extension: .yaml/.yml or .json.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config FileConfig
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// Validate checks field ranges before any conversion. A zero value means
// "use the default" and is always accepted.
func (f *FileConfig) Validate() error {
	if f.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must be non-negative")
	}
	if f.Pool.Workers > mule.MaxWorkers {
		return fmt.Errorf("pool.workers must be at most %d", mule.MaxWorkers)
	}

	if f.Workload.Rounds < 0 {
		return fmt.Errorf("workload.rounds must be non-negative")
	}
	if f.Workload.Rate < 0 {
		return fmt.Errorf("workload.rate must be non-negative")
	}
	if f.Workload.Burst < 0 {
		return fmt.Errorf("workload.burst must be non-negative")
	}

	return nil
}

// Run is a fully resolved run profile: file values parsed and overlaid on
// the defaults, then further overridden by command-line flags in the driver.
type Run struct {
	Name       string
	Workers    int
	IdlePark   time.Duration
	SyncPoll   time.Duration
	PinWorkers bool

	Items  uint64
	Rounds int
	Work   time.Duration
	Rate   float64
	Burst  int

	MetricsListen string
	MetricsPoll   time.Duration
}

// DefaultRun returns the profile used when neither file nor flags override
// a field.
func DefaultRun() Run {
	return Run{
		Name:        "mule",
		Workers:     4,
		Items:       64,
		Rounds:      1,
		Burst:       1,
		MetricsPoll: time.Second,
	}
}

// ToRun converts the file into a Run, parsing duration strings and keeping
// defaults for absent fields.
func (f *FileConfig) ToRun() (Run, error) {
	run := DefaultRun()

	if f.Pool.Name != "" {
		run.Name = f.Pool.Name
	}
	if f.Pool.Workers > 0 {
		run.Workers = f.Pool.Workers
	}
	if f.Pool.IdleParkInterval != "" {
		d, err := time.ParseDuration(f.Pool.IdleParkInterval)
		if err != nil {
			return run, fmt.Errorf("invalid pool.idle_park_interval: %w", err)
		}
		run.IdlePark = d
	}
	if f.Pool.SyncPollInterval != "" {
		d, err := time.ParseDuration(f.Pool.SyncPollInterval)
		if err != nil {
			return run, fmt.Errorf("invalid pool.sync_poll_interval: %w", err)
		}
		run.SyncPoll = d
	}
	run.PinWorkers = f.Pool.PinWorkers

	if f.Workload.Items > 0 {
		run.Items = f.Workload.Items
	}
	if f.Workload.Rounds > 0 {
		run.Rounds = f.Workload.Rounds
	}
	if f.Workload.Work != "" {
		d, err := time.ParseDuration(f.Workload.Work)
		if err != nil {
			return run, fmt.Errorf("invalid workload.work: %w", err)
		}
		run.Work = d
	}
	if f.Workload.Rate > 0 {
		run.Rate = f.Workload.Rate
	}
	if f.Workload.Burst > 0 {
		run.Burst = f.Workload.Burst
	}

	if f.Metrics.Listen != "" {
		run.MetricsListen = f.Metrics.Listen
	}
	if f.Metrics.PollInterval != "" {
		d, err := time.ParseDuration(f.Metrics.PollInterval)
		if err != nil {
			return run, fmt.Errorf("invalid metrics.poll_interval: %w", err)
		}
		run.MetricsPoll = d
	}

	return run, nil
}

// PoolOptions materializes the pool-tuning fields as mule options. Zero
// durations are omitted so the pool keeps its own defaults.
func (r Run) PoolOptions() []mule.Option {
	opts := []mule.Option{mule.WithName(r.Name)}
	if r.IdlePark > 0 {
		opts = append(opts, mule.WithIdleParkInterval(r.IdlePark))
	}
	if r.SyncPoll > 0 {
		opts = append(opts, mule.WithSyncPollInterval(r.SyncPoll))
	}
	if r.PinWorkers {
		opts = append(opts, mule.WithPinnedWorkers())
	}
	return opts
}
