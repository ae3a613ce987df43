package trace

import (
	"io"
	"sync"
)

// Phase tells a callback which part of a trace block it is receiving.
type Phase uint8

const (
	// PhaseBegin opens a block. The buffer holds the prefix, possibly empty.
	PhaseBegin Phase = 0
	// PhaseDuring carries a chunk of the block body.
	PhaseDuring Phase = 1
	// PhaseEnd closes a block. The buffer holds the suffix, possibly empty.
	PhaseEnd Phase = 2
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "BEGIN"
	case PhaseDuring:
		return "DURING"
	case PhaseEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// Sink is the destination of trace output for one category.
//
// A Tracer owns every sink it is given: it calls Close when the sink is
// replaced, cleared, or the tracer shuts down.
type Sink interface {
	io.Writer
	io.StringWriter

	// Control notifies the sink of a block boundary. Sinks that do not
	// understand block boundaries return ErrUnsupported.
	Control(phase Phase, arg []byte) error

	// Flush pushes buffered output to the destination.
	Flush() error

	// Close releases the sink. It must be safe to call more than once.
	Close() error
}

type flusher interface {
	Flush() error
}

// WriterSink adapts an io.Writer into a direct Sink.
// It is safe for concurrent use.
type WriterSink struct {
	mu      sync.Mutex
	w       io.Writer
	noClose bool
	closed  bool
}

// NewWriterSink returns a sink writing to w. Close closes w if it is an
// io.Closer; Flush flushes w if it has a Flush method.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// NewWriterSinkNoClose is like NewWriterSink but never closes w. Use it for
// process-wide writers such as os.Stderr.
func NewWriterSinkNoClose(w io.Writer) *WriterSink {
	return &WriterSink{w: w, noClose: true}
}

// Write implements io.Writer.
func (s *WriterSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return s.w.Write(p)
}

// WriteString implements io.StringWriter.
func (s *WriterSink) WriteString(str string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return io.WriteString(s.w, str)
}

// Control implements Sink. Direct sinks have no block boundaries.
func (s *WriterSink) Control(Phase, []byte) error {
	return ErrUnsupported
}

// Flush implements Sink.
func (s *WriterSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	if f, ok := s.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// Close implements Sink. After Close, writes return ErrClosed.
func (s *WriterSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if f, ok := s.w.(flusher); ok {
		err = f.Flush()
	}
	if c, ok := s.w.(io.Closer); ok && !s.noClose {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Compile-time interface satisfaction check.
var _ Sink = (*WriterSink)(nil)
