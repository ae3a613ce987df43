package tracelog

import (
	"bytes"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// Recorder turns the callback phases of trace blocks into Records.
//
// The tracer runs one block at a time, so a Recorder keeps a single
// in-flight record. It is still safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	cur     *pending
	logger  Logger
	clock   clockz.Clock
	newID   func() string
	maxBody int
}

type pending struct {
	rec   Record
	start time.Time
	body  bytes.Buffer
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithClock sets the clock used for timestamps and durations.
func WithClock(clock clockz.Clock) RecorderOption {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// WithIDGenerator sets the function producing block IDs.
func WithIDGenerator(fn func() string) RecorderOption {
	return func(r *Recorder) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// WithMaxBody limits captured bodies to n bytes. Zero or less means no
// limit. Writes beyond the limit are still accepted.
func WithMaxBody(n int) RecorderOption {
	return func(r *Recorder) { r.maxBody = n }
}

// NewRecorder creates a Recorder that sends finished blocks to logger.
// A nil logger discards them.
func NewRecorder(logger Logger, opts ...RecorderOption) *Recorder {
	if logger == nil {
		logger = NoopLogger{}
	}
	r := &Recorder{
		logger: logger,
		clock:  clockz.RealClock,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Callback returns the trace callback that feeds the recorder.
func (r *Recorder) Callback() trace.Callback {
	return r.handle
}

// Attach installs the recorder as the callback of each category. Without
// categories it is attached to trace.CategoryAny.
func (r *Recorder) Attach(t *trace.Tracer, categories ...trace.Category) error {
	if len(categories) == 0 {
		categories = []trace.Category{trace.CategoryAny}
	}
	for _, c := range categories {
		if err := t.SetCallback(c, r.handle, r); err != nil {
			return err
		}
	}
	return nil
}

func (r *Recorder) handle(buf []byte, c trace.Category, phase trace.Phase, _ any) int {
	switch phase {
	case trace.PhaseBegin:
		r.mu.Lock()
		r.cur = r.open(c, string(buf))
		r.mu.Unlock()
		return 0

	case trace.PhaseDuring:
		r.mu.Lock()
		if r.cur == nil {
			r.cur = r.open(c, "")
		}
		r.append(buf)
		r.mu.Unlock()
		return len(buf)

	case trace.PhaseEnd:
		r.mu.Lock()
		p := r.cur
		r.cur = nil
		r.mu.Unlock()
		if p == nil {
			return 0
		}

		p.rec.Suffix = string(buf)
		p.rec.Duration = r.clock.Now().Sub(p.start)
		if p.body.Len() > 0 {
			p.rec.Body = p.body.Bytes()
		}
		r.logger.Log(p.rec)
		return 0
	}
	return 0
}

// open starts a record. An unfinished previous record is discarded.
func (r *Recorder) open(c trace.Category, prefix string) *pending {
	now := r.clock.Now()
	name, _ := trace.CategoryName(c)
	return &pending{
		start: now,
		rec: Record{
			Timestamp:    now,
			BlockID:      r.newID(),
			Category:     c,
			CategoryName: name,
			Prefix:       prefix,
		},
	}
}

func (r *Recorder) append(buf []byte) {
	p := r.cur
	p.rec.Writes++
	if r.maxBody > 0 {
		room := r.maxBody - p.body.Len()
		if room < len(buf) {
			p.rec.Truncated = true
			if room <= 0 {
				return
			}
			buf = buf[:room]
		}
	}
	p.body.Write(buf)
}
