package mule

import "fmt"

// Common errors returned by the pool.
var (
	// ErrPoolClosed is returned when an operation is attempted on a pool
	// after Close. A closed pool is terminal and cannot be reused.
	//
	// Example:
	//  pool.Close()
	//  _, err := pool.Submit(1)
	//  if errors.Is(err, mule.ErrPoolClosed) {
	//      log.Println("pool is gone")
	//  }
	ErrPoolClosed = &PoolError{msg: "pool is closed"}

	// ErrPoolStopped is returned by Start after Stop has joined the
	// workers. A stopped pool cannot be restarted; construct a new one.
	ErrPoolStopped = &PoolError{msg: "pool is stopped and cannot be restarted"}
)

// PoolError represents an error that occurred within the pool.
// It implements the error interface and supports unwrapping via
// errors.Unwrap for use with errors.Is and errors.As.
type PoolError struct {
	msg string // Human-readable error message
	err error  // Underlying error (if any)
}

// Error returns a formatted error message.
// If an underlying error exists, it is included in the output.
func (e *PoolError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("mule: %s: %v", e.msg, e.err)
	}
	return fmt.Sprintf("mule: %s", e.msg)
}

// Unwrap returns the underlying error, allowing use with errors.Is and errors.As.
func (e *PoolError) Unwrap() error {
	return e.err
}

// errInvalidConfig creates an error for invalid pool configuration.
// Returned during pool construction when validation fails.
func errInvalidConfig(msg string) error {
	return &PoolError{msg: "invalid config: " + msg}
}
