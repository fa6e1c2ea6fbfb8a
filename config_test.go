package mule

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if got, want := cfg.IdleParkInterval, 10*time.Millisecond; got != want {
		t.Errorf("IdleParkInterval: got = %v, want = %v", got, want)
	}
	if got, want := cfg.SyncPollInterval, time.Millisecond; got != want {
		t.Errorf("SyncPollInterval: got = %v, want = %v", got, want)
	}
	if got, want := cfg.Name, "mule"; got != want {
		t.Errorf("Name: got = %q, want = %q", got, want)
	}
	if cfg.Logger != nil || cfg.Metrics != nil {
		t.Error("Logger/Metrics defaults: got non-nil, want nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"full capacity", func(c *Config) { c.Workers = MaxWorkers }, false},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -3 }, true},
		{"above capacity", func(c *Config) { c.Workers = MaxWorkers + 1 }, true},
		{"zero park interval", func(c *Config) { c.IdleParkInterval = 0 }, true},
		{"negative park interval", func(c *Config) { c.IdleParkInterval = -time.Millisecond }, true},
		{"zero poll interval", func(c *Config) { c.SyncPollInterval = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Workers = 2
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate: got = nil, want = error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate: got = %v, want = nil", err)
			}
		})
	}
}

func TestOptions_Apply(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Workers = 1

	logger := NewWriterLogger(nil, LevelOff)
	for _, opt := range []Option{
		WithIdleParkInterval(3 * time.Millisecond),
		WithSyncPollInterval(2 * time.Millisecond),
		WithPinnedWorkers(),
		WithName("opts"),
		WithLogger(logger),
	} {
		opt(&cfg)
	}

	if cfg.IdleParkInterval != 3*time.Millisecond {
		t.Errorf("IdleParkInterval: got = %v, want = 3ms", cfg.IdleParkInterval)
	}
	if cfg.SyncPollInterval != 2*time.Millisecond {
		t.Errorf("SyncPollInterval: got = %v, want = 2ms", cfg.SyncPollInterval)
	}
	if !cfg.PinWorkerThreads {
		t.Error("PinWorkerThreads: got = false, want = true")
	}
	if cfg.Name != "opts" {
		t.Errorf("Name: got = %q, want = %q", cfg.Name, "opts")
	}
	if cfg.Logger != Logger(logger) {
		t.Error("Logger option not applied")
	}
}
