package trace

import (
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
)

// Block is an open trace message. It is returned by Begin and writes go
// straight to the sink of the effective category until End.
type Block struct {
	tracer    *Tracer
	requested Category
	category  Category
	mode      Mode
	sink      Sink
	ended     atomic.Bool
}

// Write implements io.Writer.
func (b *Block) Write(p []byte) (int, error) {
	if b.ended.Load() {
		return 0, ErrBlockEnded
	}
	return b.sink.Write(p)
}

// WriteString implements io.StringWriter.
func (b *Block) WriteString(s string) (int, error) {
	if b.ended.Load() {
		return 0, ErrBlockEnded
	}
	return b.sink.WriteString(s)
}

// Sink returns the sink the block writes to.
func (b *Block) Sink() Sink { return b.sink }

// Category returns the category whose channel serves the block. It is
// CategoryAny when the requested category fell back.
func (b *Block) Category() Category { return b.category }

// End ends the block. It is shorthand for tracer.End with the category the
// block was begun on.
func (b *Block) End() {
	if b == nil {
		return
	}
	b.tracer.End(b.requested, b)
}

// Begin opens a trace block on category c and returns it, or returns nil if
// tracing is disabled for c. A nil result needs no End.
//
// Begin waits until no other block is open, in any category. The caller must
// call End on every path once Begin returned a block.
func (t *Tracer) Begin(c Category) *Block {
	rc, ch, ok := t.snapshot(c)
	if !ok || ch.sink == nil {
		return nil
	}

	t.lock.Lock()

	b := &Block{
		tracer:    t,
		requested: c,
		category:  rc,
		mode:      ch.mode,
		sink:      ch.sink,
	}
	t.active.Store(b)

	opened := false
	defer func() {
		if !opened {
			b.ended.Store(true)
			t.active.Store(nil)
			t.lock.Unlock()
		}
	}()

	t.emit(b, PhaseBegin, ch.prefix)
	opened = true
	return b
}

// End closes the block b opened by Begin on category c: it flushes the sink,
// emits the suffix and lets the next Begin proceed.
//
// A nil b is ignored. If b is not the open block, End reports misuse and
// returns without writing anything or releasing the lock.
func (t *Tracer) End(c Category, b *Block) {
	if b == nil {
		return
	}

	var suffix string
	if _, ch, ok := t.snapshot(c); ok {
		suffix = ch.suffix
	}

	cur := t.active.Load()
	switch {
	case cur == nil:
		t.misuse(c, MisuseNoBlock)
		return
	case cur != b, !t.active.CompareAndSwap(b, nil):
		t.misuse(c, MisuseWrongBlock)
		return
	}
	defer t.lock.Unlock()
	b.ended.Store(true)

	if err := b.sink.Flush(); err != nil {
		t.dropped(b, "flush", err)
	}
	t.emit(b, PhaseEnd, suffix)
}

// Trace runs fn inside a block on category c and reports whether tracing was
// enabled. The block is ended even if fn panics.
func (t *Tracer) Trace(c Category, fn func(w io.Writer)) bool {
	b := t.Begin(c)
	if b == nil {
		return false
	}
	defer t.End(c, b)

	fn(b)
	return true
}

// Tracef writes one formatted message as a block on category c.
func (t *Tracer) Tracef(c Category, format string, args ...any) bool {
	return t.Trace(c, func(w io.Writer) {
		fmt.Fprintf(w, format, args...)
	})
}

// emit writes a block boundary. Direct sinks get the text followed by a
// newline, and nothing when the text is empty. Callback sinks always get a
// Control call.
func (t *Tracer) emit(b *Block, phase Phase, text string) {
	switch b.mode {
	case ModeDirect:
		if text == "" {
			return
		}
		if _, err := b.sink.WriteString(text); err != nil {
			t.dropped(b, phase.String(), err)
			return
		}
		if _, err := b.sink.WriteString("\n"); err != nil {
			t.dropped(b, phase.String(), err)
		}
	case ModeCallback:
		if err := b.sink.Control(phase, []byte(text)); err != nil {
			t.dropped(b, phase.String(), err)
		}
	}
}

func (t *Tracer) dropped(b *Block, op string, err error) {
	t.logger.Debug("trace: sink write dropped",
		slog.String("category", b.category.String()),
		slog.String("op", op),
		slog.Any("error", err),
	)
}
