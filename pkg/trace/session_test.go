package trace_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ADT-Software/openssl/internal/tracetest"
	"github.com/ADT-Software/openssl/pkg/trace"
)

func TestBeginDisabledReturnsNil(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	b := tr.Begin(trace.CategoryTLS)
	assert.Nil(t, b)

	// Ending a nil block is silent.
	tr.End(trace.CategoryTLS, b)
	b.End()
	assert.Zero(t, tr.Misuses())
}

func TestDirectBlockOutput(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "[TRACE]"))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[END]"))

	b := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, b)
	_, err := io.WriteString(b, "hello")
	require.NoError(t, err)
	tr.End(trace.CategoryTLS, b)

	assert.Equal(t, "[TRACE]\nhello[END]\n", sink.String())

	ops := sink.Ops()
	require.Len(t, ops, 6)
	assert.Equal(t, "flush", ops[3].Kind)
}

func TestDirectBlockWithoutTexts(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryConf, sink))

	b := tr.Begin(trace.CategoryConf)
	require.NotNil(t, b)
	_, _ = b.WriteString("only body")
	b.End()

	assert.Equal(t, "only body", sink.String())
	for _, op := range sink.Ops() {
		assert.NotEqual(t, "control", op.Kind)
	}
}

func TestEmptyTextsClearInsteadOfEmittingNewline(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "[TRACE]"))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[END]"))
	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, ""))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, ""))

	tr.Tracef(trace.CategoryTLS, "hello")
	assert.Equal(t, "hello", sink.String())

	rec := &tracetest.PhaseRecorder{}
	require.NoError(t, tr.SetCallback(trace.CategoryTLS, rec.Callback(), nil))
	tr.Tracef(trace.CategoryTLS, "again")
	assert.Equal(t, []trace.Phase{trace.PhaseBegin, trace.PhaseDuring, trace.PhaseEnd}, rec.Phases())
}

func TestBeginFallsBackToAny(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	anySink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryAny, anySink))
	require.NoError(t, tr.SetPrefix(trace.CategoryAny, "any>"))
	require.NoError(t, tr.SetPrefix(trace.CategoryStore, "store>"))

	b := tr.Begin(trace.CategoryStore)
	require.NotNil(t, b)
	assert.Same(t, anySink, b.Sink())
	assert.Equal(t, trace.CategoryAny, b.Category())
	_, _ = b.WriteString("x")
	tr.End(trace.CategoryStore, b)

	// The prefix follows the channel that serves the block.
	assert.Equal(t, "any>\nx", anySink.String())
}

func TestOwnChannelWinsOverAny(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	anySink := &tracetest.RecordingSink{}
	ownSink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryAny, anySink))
	require.NoError(t, tr.SetSink(trace.CategoryStore, ownSink))

	require.True(t, tr.Tracef(trace.CategoryStore, "n=%d", 3))
	assert.Equal(t, "n=3", ownSink.String())
	assert.Empty(t, anySink.String())
}

func TestCallbackBlockPhases(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	rec := &tracetest.PhaseRecorder{}
	require.NoError(t, tr.SetCallback(trace.CategoryCMP, rec.Callback(), "ctx"))
	require.NoError(t, tr.SetPrefix(trace.CategoryCMP, "[P]"))

	b := tr.Begin(trace.CategoryCMP)
	require.NotNil(t, b)
	_, err := b.WriteString("one")
	require.NoError(t, err)
	_, err = b.Write([]byte("two"))
	require.NoError(t, err)
	tr.End(trace.CategoryCMP, b)

	assert.Equal(t, []trace.Phase{
		trace.PhaseBegin, trace.PhaseDuring, trace.PhaseDuring, trace.PhaseEnd,
	}, rec.Phases())

	calls := rec.Calls()
	assert.Equal(t, "[P]", calls[0].Data)
	assert.Equal(t, "one", calls[1].Data)
	assert.Equal(t, "two", calls[2].Data)
	// An unset suffix still produces an END call, with empty text.
	assert.Equal(t, "", calls[3].Data)
	for _, c := range calls {
		assert.Equal(t, trace.CategoryCMP, c.Category)
		assert.Equal(t, "ctx", c.UserData)
	}
}

func TestWriteAfterEnd(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))

	b := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, b)
	tr.End(trace.CategoryTLS, b)

	_, err := b.WriteString("late")
	assert.ErrorIs(t, err, trace.ErrBlockEnded)
	_, err = b.Write([]byte("late"))
	assert.ErrorIs(t, err, trace.ErrBlockEnded)
	assert.Empty(t, sink.String())
}

func TestBlocksSerialize(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryAny, sink))
	require.NoError(t, tr.SetPrefix(trace.CategoryAny, "B"))
	require.NoError(t, tr.SetSuffix(trace.CategoryAny, "E"))

	first := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, first)

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		b := tr.Begin(trace.CategoryConf)
		_, _ = b.WriteString("second")
		tr.End(trace.CategoryConf, b)
		close(done)
	}()

	<-started
	select {
	case <-done:
		t.Fatal("second block ran while the first was open")
	case <-time.After(50 * time.Millisecond):
	}

	_, _ = first.WriteString("first")
	tr.End(trace.CategoryTLS, first)
	<-done

	assert.Equal(t, "B\nfirstE\nB\nsecondE\n", sink.String())
}

func TestConcurrentBlocksDoNotInterleave(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryAny, sink))
	require.NoError(t, tr.SetPrefix(trace.CategoryAny, "<"))
	require.NoError(t, tr.SetSuffix(trace.CategoryAny, ">"))

	const workers, rounds = 8, 50
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rounds {
				tr.Trace(trace.Categories()[1+w%3], func(out io.Writer) {
					for _, part := range []string{"w", fmt.Sprint(w), ":", fmt.Sprint(i)} {
						_, _ = io.WriteString(out, part)
					}
				})
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(sink.String(), "\n"), "\n")
	require.Len(t, lines, 2*workers*rounds)
	for i := 0; i < len(lines); i += 2 {
		assert.Equal(t, "<", lines[i])
		body := lines[i+1]
		require.True(t, strings.HasSuffix(body, ">"), "line %q", body)
		var w, n int
		_, err := fmt.Sscanf(strings.TrimSuffix(body, ">"), "w%d:%d", &w, &n)
		assert.NoError(t, err, "body %q", body)
	}
}

func TestEndWithoutBeginIsMisuse(t *testing.T) {
	var logs bytes.Buffer
	var reported []*trace.MisuseError
	tr := trace.New(
		trace.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		trace.WithMisuseHandler(func(e *trace.MisuseError) { reported = append(reported, e) }),
	)
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[END]"))

	b := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, b)
	tr.End(trace.CategoryTLS, b)
	before := sink.String()

	// The same handle again: nothing is open any more.
	tr.End(trace.CategoryTLS, b)

	assert.Equal(t, before, sink.String())
	assert.Equal(t, uint64(1), tr.Misuses())
	require.Len(t, reported, 1)
	assert.Equal(t, trace.MisuseNoBlock, reported[0].Reason)
	assert.Equal(t, trace.CategoryTLS, reported[0].Category)
	assert.True(t, errors.Is(reported[0], trace.ErrMisuse))
	assert.Contains(t, logs.String(), "end without matching begin")
	assert.Contains(t, logs.String(), "category=TLS")

	// The lock was not released twice: a new block still works.
	require.True(t, tr.Tracef(trace.CategoryTLS, "ok"))
}

func TestEndWithWrongBlockKeepsLock(t *testing.T) {
	var reported []*trace.MisuseError
	tr := trace.New(trace.WithMisuseHandler(func(e *trace.MisuseError) {
		reported = append(reported, e)
	}))
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryAny, sink))
	require.NoError(t, tr.SetSuffix(trace.CategoryAny, "E"))

	stale := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, stale)
	tr.End(trace.CategoryTLS, stale)

	open := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, open)
	before := sink.String()

	tr.End(trace.CategoryTLS, stale)
	assert.Equal(t, before, sink.String())
	require.Len(t, reported, 1)
	assert.Equal(t, trace.MisuseWrongBlock, reported[0].Reason)

	// The open block still holds the lock.
	done := make(chan struct{})
	go func() {
		tr.Tracef(trace.CategoryConf, "next")
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("lock was released by a mismatched End")
	case <-time.After(50 * time.Millisecond):
	}

	_, _ = open.WriteString("still open")
	tr.End(trace.CategoryTLS, open)
	<-done
	assert.Equal(t, "E\nstill openE\nnextE\n", sink.String())
}

func TestStrictMisusePanics(t *testing.T) {
	tr := trace.New(trace.WithStrictMisuse())
	defer tr.Shutdown()

	require.NoError(t, tr.SetSink(trace.CategoryTLS, &tracetest.RecordingSink{}))
	b := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, b)
	b.End()

	defer func() {
		r := recover()
		e, ok := r.(*trace.MisuseError)
		require.True(t, ok, "recovered %v", r)
		assert.Equal(t, trace.MisuseNoBlock, e.Reason)
	}()
	b.End()
}

func TestTraceEndsBlockOnPanic(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[END]"))

	func() {
		defer func() { _ = recover() }()
		tr.Trace(trace.CategoryTLS, func(w io.Writer) {
			_, _ = io.WriteString(w, "partial")
			panic("boom")
		})
	}()

	assert.Equal(t, "partial[END]\n", sink.String())
	assert.True(t, tr.Tracef(trace.CategoryTLS, "after"))
	assert.False(t, tr.Tracef(trace.CategoryConf, "disabled"))
}

func TestBeginReleasesLockWhenPrefixPanics(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	sink.OnWrite = func(data string) {
		if data == "bad" {
			panic("sink failure")
		}
	}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "bad"))

	assert.Panics(t, func() { tr.Begin(trace.CategoryTLS) })

	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, ""))
	assert.True(t, tr.Tracef(trace.CategoryTLS, "recovered"))
	assert.Zero(t, tr.Misuses())
}

func TestEndFlushesBeforeSuffix(t *testing.T) {
	tr := trace.New()

	m := &tracetest.MockSink{}
	m.On("WriteString", "[P]").Return(3, nil).Once()
	m.On("WriteString", "\n").Return(1, nil).Twice()
	m.On("Write", []byte("body")).Return(4, nil).Once()
	m.On("Flush").Return(errors.New("flush failed")).Once()
	m.On("WriteString", "[S]").Return(3, nil).Once()
	m.On("Close").Return(nil).Once()

	require.NoError(t, tr.SetSink(trace.CategoryTLS, m))
	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "[P]"))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[S]"))

	// A failing flush is dropped and the suffix still goes out.
	require.True(t, tr.Tracef(trace.CategoryTLS, "body"))
	tr.Shutdown()

	m.AssertExpectations(t)
	m.AssertNotCalled(t, "Control", mock.Anything, mock.Anything)

	var order []string
	for _, c := range m.Calls {
		if c.Method == "WriteString" && c.Arguments.String(0) == "\n" {
			continue
		}
		order = append(order, c.Method)
	}
	assert.Equal(t, []string{"WriteString", "Write", "Flush", "WriteString", "Close"}, order)
}
