package mule

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestWriterLogger_VerbosityGating(t *testing.T) {
	tests := []struct {
		name      string
		verbosity LogLevel
		wantDebug bool
		wantTrace bool
	}{
		{"off drops everything", LevelOff, false, false},
		{"debug drops trace", LevelDebug, true, false},
		{"trace keeps both", LevelTrace, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewWriterLogger(&buf, tt.verbosity)

			logger.Logf(LevelDebug, "debug line %d", 1)
			logger.Logf(LevelTrace, "trace line %d", 2)

			out := buf.String()
			if got := strings.Contains(out, "debug line 1"); got != tt.wantDebug {
				t.Errorf("debug line present: got = %v, want = %v", got, tt.wantDebug)
			}
			if got := strings.Contains(out, "trace line 2"); got != tt.wantTrace {
				t.Errorf("trace line present: got = %v, want = %v", got, tt.wantTrace)
			}
		})
	}
}

func TestWriterLogger_ConcurrentUse(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, LevelTrace)

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				logger.Logf(LevelDebug, "goroutine %d line %d", g, i)
			}
		}(g)
	}
	wg.Wait()

	if got, want := strings.Count(buf.String(), "\n"), 200; got != want {
		t.Errorf("line count: got = %d, want = %d", got, want)
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelOff, "OFF"},
		{LevelDebug, "DEBUG"},
		{LevelTrace, "TRACE"},
		{LogLevel(42), "LEVEL(42)"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("String(%d): got = %q, want = %q", int32(tt.level), got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"", LevelOff, false},
		{"debug", LevelDebug, false},
		{"DEBUG", LevelDebug, false},
		{" trace ", LevelTrace, false},
		{"verbose", LevelOff, true},
	}

	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseLogLevel(%q): got = nil error, want = error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseLogLevel(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLogLevel(%q): got = %v, want = %v", tt.in, got, tt.want)
		}
	}
}
