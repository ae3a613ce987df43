package trace

import (
	"errors"
	"fmt"
)

// Errors returned by configuration calls and sinks.
var (
	ErrInvalidCategory = errors.New("trace: invalid category")
	ErrWriteRejected   = errors.New("trace: write rejected by callback")
	ErrUnsupported     = errors.New("trace: unsupported control")
	ErrClosed          = errors.New("trace: sink closed")
	ErrBlockEnded      = errors.New("trace: block already ended")
	ErrShutdown        = errors.New("trace: tracer shut down")

	// ErrMisuse marks an End call that does not match the open block.
	// It is wrapped by MisuseError and never returned from End.
	ErrMisuse = errors.New("trace: end without matching begin")
)

// MisuseReason describes why an End call was rejected.
type MisuseReason uint8

const (
	// MisuseNoBlock means no block was open.
	MisuseNoBlock MisuseReason = iota
	// MisuseWrongBlock means a different block was open.
	MisuseWrongBlock
)

// String returns the reason name.
func (r MisuseReason) String() string {
	switch r {
	case MisuseNoBlock:
		return "no open block"
	case MisuseWrongBlock:
		return "block is not the open block"
	default:
		return "unknown"
	}
}

// MisuseError reports an End call that was rejected without touching the
// trace lock.
type MisuseError struct {
	Category Category
	Reason   MisuseReason
}

func (e *MisuseError) Error() string {
	return fmt.Sprintf("%v: category %s: %s", ErrMisuse, e.Category, e.Reason)
}

// Unwrap returns ErrMisuse.
func (e *MisuseError) Unwrap() error { return ErrMisuse }
