package trace

import "sync"

// Callback receives trace output for one category.
//
// For PhaseDuring it returns the number of bytes accepted; returning 0
// rejects the write. The return value is ignored for PhaseBegin and
// PhaseEnd. data is the value given to SetCallback.
type Callback func(buf []byte, category Category, phase Phase, data any) int

type callbackContext struct {
	fn       Callback
	category Category
	data     any
}

// CallbackSink is a Sink that forwards every write and every block boundary
// to an application Callback.
type CallbackSink struct {
	mu  sync.Mutex
	ctx *callbackContext
}

// NewCallbackSink returns a sink forwarding to fn on behalf of category.
func NewCallbackSink(fn Callback, category Category, data any) (*CallbackSink, error) {
	if fn == nil {
		return nil, ErrUnsupported
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	return &CallbackSink{
		ctx: &callbackContext{fn: fn, category: category, data: data},
	}, nil
}

func (s *CallbackSink) context() *callbackContext {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// Write delivers p with PhaseDuring.
func (s *CallbackSink) Write(p []byte) (int, error) {
	ctx := s.context()
	if ctx == nil {
		return 0, ErrClosed
	}

	n := ctx.fn(p, ctx.category, PhaseDuring, ctx.data)
	if n == 0 {
		return 0, ErrWriteRejected
	}
	return n, nil
}

// WriteString is Write for a string.
func (s *CallbackSink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Control delivers a PhaseBegin or PhaseEnd notification carrying arg. The
// callback's return value is ignored. Other phases return ErrUnsupported.
func (s *CallbackSink) Control(phase Phase, arg []byte) error {
	switch phase {
	case PhaseBegin, PhaseEnd:
	default:
		return ErrUnsupported
	}

	ctx := s.context()
	if ctx == nil {
		return ErrClosed
	}

	if arg == nil {
		arg = []byte{}
	}
	_ = ctx.fn(arg, ctx.category, phase, ctx.data)
	return nil
}

// Flush is a no-op; callbacks receive every write immediately.
func (s *CallbackSink) Flush() error { return nil }

// Close releases the callback. It is safe on a nil or closed sink.
func (s *CallbackSink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	s.ctx = nil
	s.mu.Unlock()
	return nil
}

// Compile-time interface satisfaction check.
var _ Sink = (*CallbackSink)(nil)
