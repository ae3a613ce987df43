package trace

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Tracer routes trace output for every category to its configured sink.
//
// A Tracer is created once by the embedding application, shared by all call
// sites, and shut down once. Begin and End are safe for concurrent use.
// Configuration methods are meant for single-threaded setup and teardown.
type Tracer struct {
	// lock is held from a successful Begin until the matching End.
	lock   sync.Mutex
	active atomic.Pointer[Block]

	cfgMu    sync.RWMutex
	channels [NumCategories]channel
	shut     bool

	logger   *slog.Logger
	onMisuse func(*MisuseError)
	misuses  atomic.Uint64
}

// Option configures a Tracer.
type Option func(*Tracer)

// WithLogger sets the logger for misuse reports and dropped writes.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMisuseHandler sets a function called for every End that does not
// match the open block.
func WithMisuseHandler(fn func(*MisuseError)) Option {
	return func(t *Tracer) { t.onMisuse = fn }
}

// WithStrictMisuse makes a mismatched End panic with its *MisuseError.
// Intended for tests and debug builds.
func WithStrictMisuse() Option {
	return WithMisuseHandler(func(e *MisuseError) { panic(e) })
}

// New returns a Tracer with every category disabled.
func New(opts ...Option) *Tracer {
	t := &Tracer{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Shutdown clears every channel, closing all sinks. After Shutdown, Begin
// returns nil and configuration calls return ErrShutdown.
//
// Shutdown must not run concurrently with any other call. Calling it again
// has no effect.
func (t *Tracer) Shutdown() {
	t.cfgMu.Lock()
	defer t.cfgMu.Unlock()

	if t.shut {
		return
	}
	t.shut = true

	for i := range t.channels {
		t.releaseSinkLocked(Category(i))
		t.channels[i].prefix = ""
		t.channels[i].suffix = ""
	}
	t.active.Store(nil)
}

// Misuses returns how many End calls were rejected.
func (t *Tracer) Misuses() uint64 {
	return t.misuses.Load()
}

func (t *Tracer) misuse(c Category, reason MisuseReason) {
	t.misuses.Add(1)

	e := &MisuseError{Category: c, Reason: reason}
	t.logger.Error("trace: end without matching begin",
		slog.String("category", c.String()),
		slog.String("reason", reason.String()),
	)
	if t.onMisuse != nil {
		t.onMisuse(e)
	}
}
