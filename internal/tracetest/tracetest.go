// Package tracetest provides sinks and callbacks that record what the trace
// facility sends them. It is intended for tests only.
package tracetest

import (
	"bytes"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// Op is one operation observed by a RecordingSink.
type Op struct {
	Kind  string // "write", "control", "flush" or "close"
	Phase trace.Phase
	Data  string
}

// RecordingSink is a direct sink that keeps everything written to it.
// It is safe for concurrent use.
type RecordingSink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	ops    []Op
	closes int

	// OnWrite, if set, is called after every write with the written data.
	OnWrite func(data string)
}

// Write implements trace.Sink.
func (s *RecordingSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	s.buf.Write(p)
	s.ops = append(s.ops, Op{Kind: "write", Data: string(p)})
	hook := s.OnWrite
	s.mu.Unlock()

	if hook != nil {
		hook(string(p))
	}
	return len(p), nil
}

// WriteString implements trace.Sink.
func (s *RecordingSink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Control implements trace.Sink. It records the call and reports
// trace.ErrUnsupported like any direct sink.
func (s *RecordingSink) Control(phase trace.Phase, arg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, Op{Kind: "control", Phase: phase, Data: string(arg)})
	return trace.ErrUnsupported
}

// Flush implements trace.Sink.
func (s *RecordingSink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, Op{Kind: "flush"})
	return nil
}

// Close implements trace.Sink.
func (s *RecordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, Op{Kind: "close"})
	s.closes++
	return nil
}

// String returns everything written so far.
func (s *RecordingSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

// Ops returns a copy of the recorded operations.
func (s *RecordingSink) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Op(nil), s.ops...)
}

// Closes returns how many times Close was called.
func (s *RecordingSink) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

// Call is one invocation observed by a PhaseRecorder.
type Call struct {
	Category trace.Category
	Phase    trace.Phase
	Data     string
	UserData any
}

// PhaseRecorder records every invocation of its Callback.
type PhaseRecorder struct {
	mu    sync.Mutex
	calls []Call

	// Accept is returned for PhaseDuring calls. Zero means len(buf).
	Accept int
	// Reject makes every PhaseDuring call return 0.
	Reject bool
}

// Callback returns the recording callback.
func (r *PhaseRecorder) Callback() trace.Callback {
	return func(buf []byte, category trace.Category, phase trace.Phase, data any) int {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.calls = append(r.calls, Call{
			Category: category,
			Phase:    phase,
			Data:     string(buf),
			UserData: data,
		})
		if phase != trace.PhaseDuring {
			return 0
		}
		switch {
		case r.Reject:
			return 0
		case r.Accept != 0:
			return r.Accept
		default:
			return len(buf)
		}
	}
}

// Calls returns a copy of the recorded calls.
func (r *PhaseRecorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Phases returns the phase of every recorded call in order.
func (r *PhaseRecorder) Phases() []trace.Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]trace.Phase, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Phase
	}
	return out
}

// MockSink is a testify mock of trace.Sink.
type MockSink struct{ mock.Mock }

func (m *MockSink) Write(p []byte) (int, error) {
	args := m.Called(p)
	return args.Int(0), args.Error(1)
}

func (m *MockSink) WriteString(s string) (int, error) {
	args := m.Called(s)
	return args.Int(0), args.Error(1)
}

func (m *MockSink) Control(phase trace.Phase, arg []byte) error {
	args := m.Called(phase, arg)
	return args.Error(0)
}

func (m *MockSink) Flush() error {
	return m.Called().Error(0)
}

func (m *MockSink) Close() error {
	return m.Called().Error(0)
}

var (
	_ trace.Sink = (*RecordingSink)(nil)
	_ trace.Sink = (*MockSink)(nil)
)
