package mule

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogLevel controls how much diagnostic output a pool emits.
// Levels are cumulative: LevelTrace includes everything LevelDebug emits.
type LogLevel int32

const (
	// LevelOff disables diagnostics entirely.
	LevelOff LogLevel = iota

	// LevelDebug emits lifecycle events: worker start/park/wake/exit,
	// pool start, stop, quench and reset.
	LevelDebug

	// LevelTrace additionally emits per-item events (claim, complete).
	// Expect heavy output under load.
	LevelTrace
)

// String returns the textual name of the level.
func (l LogLevel) String() string {
	switch l {
	case LevelOff:
		return "OFF"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return fmt.Sprintf("LEVEL(%d)", int32(l))
	}
}

// ParseLogLevel converts a textual level name ("off", "debug", "trace")
// into a LogLevel. Matching is case-insensitive.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off":
		return LevelOff, nil
	case "debug":
		return LevelDebug, nil
	case "trace":
		return LevelTrace, nil
	default:
		return LevelOff, fmt.Errorf("mule: unknown log level %q", s)
	}
}

// Logger receives the pool's diagnostic lines.
// Implementations decide where lines go and which levels to keep;
// WriterLogger is the stock implementation. A nil Logger on the pool
// disables diagnostics with no formatting cost.
type Logger interface {
	// Logf logs a single formatted line at the given level.
	// Called concurrently from worker goroutines; implementations
	// must be safe for concurrent use.
	Logf(level LogLevel, format string, args ...any)
}

// WriterLogger writes timestamped diagnostic lines to an io.Writer,
// dropping everything above its configured verbosity.
type WriterLogger struct {
	mu        sync.Mutex
	out       io.Writer
	verbosity LogLevel
}

// NewWriterLogger creates a WriterLogger emitting to out at the given
// verbosity. Lines at levels above verbosity are discarded.
func NewWriterLogger(out io.Writer, verbosity LogLevel) *WriterLogger {
	return &WriterLogger{out: out, verbosity: verbosity}
}

// Logf writes one line if level is within the configured verbosity.
func (l *WriterLogger) Logf(level LogLevel, format string, args ...any) {
	if level == LevelOff || level > l.verbosity {
		return
	}
	msg := fmt.Sprintf(format, args...)
	l.mu.Lock()
	fmt.Fprintf(l.out, "%s [%s] %s\n", time.Now().Format("15:04:05.000"), level, msg)
	l.mu.Unlock()
}
