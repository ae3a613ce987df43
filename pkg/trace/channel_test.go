package trace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ADT-Software/openssl/internal/tracetest"
	"github.com/ADT-Software/openssl/pkg/trace"
)

func TestConfigRejectsInvalidCategory(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	rec := &tracetest.PhaseRecorder{}
	for _, c := range []trace.Category{trace.CategoryInvalid, trace.NumCategories} {
		sink := &tracetest.RecordingSink{}
		assert.ErrorIs(t, tr.SetSink(c, sink), trace.ErrInvalidCategory)
		assert.ErrorIs(t, tr.SetCallback(c, rec.Callback(), nil), trace.ErrInvalidCategory)
		assert.ErrorIs(t, tr.SetPrefix(c, "p"), trace.ErrInvalidCategory)
		assert.ErrorIs(t, tr.SetSuffix(c, "s"), trace.ErrInvalidCategory)
		assert.False(t, tr.Enabled(c))
		assert.Nil(t, tr.Begin(c))

		// Rejected sinks are not owned by the tracer.
		assert.Zero(t, sink.Closes())
	}
	assert.Empty(t, rec.Calls())
}

func TestSetSinkEnables(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	assert.False(t, tr.Enabled(trace.CategoryTLS))

	require.NoError(t, tr.SetSink(trace.CategoryTLS, &tracetest.RecordingSink{}))
	assert.True(t, tr.Enabled(trace.CategoryTLS))
	assert.False(t, tr.Enabled(trace.CategoryConf))

	info, ok := tr.Channel(trace.CategoryTLS)
	require.True(t, ok)
	assert.True(t, info.HasSink)
	assert.Equal(t, trace.ModeDirect, info.Mode)
}

func TestSetSinkReplacesAndClosesPrevious(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	first := &tracetest.RecordingSink{}
	second := &tracetest.RecordingSink{}

	require.NoError(t, tr.SetSink(trace.CategoryTLS, first))
	require.NoError(t, tr.SetSink(trace.CategoryTLS, second))
	assert.Equal(t, 1, first.Closes())
	assert.Zero(t, second.Closes())

	b := tr.Begin(trace.CategoryTLS)
	require.NotNil(t, b)
	assert.Same(t, second, b.Sink())
	tr.End(trace.CategoryTLS, b)
}

func TestSetSinkNilClears(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	require.NoError(t, tr.SetSink(trace.CategoryTLS, sink))
	require.NoError(t, tr.SetSink(trace.CategoryTLS, nil))
	assert.Equal(t, 1, sink.Closes())
	assert.False(t, tr.Enabled(trace.CategoryTLS))

	// Clearing an already clear channel is fine.
	require.NoError(t, tr.SetSink(trace.CategoryTLS, nil))

	// With ANY configured the cleared category falls back.
	require.NoError(t, tr.SetSink(trace.CategoryAny, &tracetest.RecordingSink{}))
	assert.True(t, tr.Enabled(trace.CategoryTLS))
}

func TestSetCallbackEnables(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	rec := &tracetest.PhaseRecorder{}
	require.NoError(t, tr.SetCallback(trace.CategoryCMP, rec.Callback(), 7))
	assert.True(t, tr.Enabled(trace.CategoryCMP))

	info, ok := tr.Channel(trace.CategoryCMP)
	require.True(t, ok)
	assert.Equal(t, trace.ModeCallback, info.Mode)

	b := tr.Begin(trace.CategoryCMP)
	require.NotNil(t, b)
	assert.IsType(t, &trace.CallbackSink{}, b.Sink())
	tr.End(trace.CategoryCMP, b)
}

func TestSetCallbackReplacesDirectSink(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	sink := &tracetest.RecordingSink{}
	rec := &tracetest.PhaseRecorder{}

	require.NoError(t, tr.SetSink(trace.CategoryCMP, sink))
	require.NoError(t, tr.SetCallback(trace.CategoryCMP, rec.Callback(), nil))
	assert.Equal(t, 1, sink.Closes())

	require.NoError(t, tr.SetCallback(trace.CategoryCMP, nil, nil))
	assert.False(t, tr.Enabled(trace.CategoryCMP))

	info, _ := tr.Channel(trace.CategoryCMP)
	assert.False(t, info.HasSink)
	assert.Equal(t, trace.ModeDirect, info.Mode)
}

func TestSetPrefixSuffix(t *testing.T) {
	tr := trace.New()
	defer tr.Shutdown()

	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "[TRACE]"))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, "[END]"))

	info, _ := tr.Channel(trace.CategoryTLS)
	assert.Equal(t, "[TRACE]", info.Prefix)
	assert.Equal(t, "[END]", info.Suffix)

	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, "[NEW]"))
	info, _ = tr.Channel(trace.CategoryTLS)
	assert.Equal(t, "[NEW]", info.Prefix)

	require.NoError(t, tr.SetPrefix(trace.CategoryTLS, ""))
	require.NoError(t, tr.SetSuffix(trace.CategoryTLS, ""))
	info, _ = tr.Channel(trace.CategoryTLS)
	assert.Empty(t, info.Prefix)
	assert.Empty(t, info.Suffix)
}

func TestChannelInvalid(t *testing.T) {
	tr := trace.New()
	_, ok := tr.Channel(trace.NumCategories)
	assert.False(t, ok)
}

func TestShutdownReleasesEverything(t *testing.T) {
	tr := trace.New()

	sinks := make([]*tracetest.RecordingSink, trace.NumCategories)
	for i := range sinks {
		sinks[i] = &tracetest.RecordingSink{}
		require.NoError(t, tr.SetSink(trace.Category(i), sinks[i]))
		require.NoError(t, tr.SetPrefix(trace.Category(i), "p"))
	}

	tr.Shutdown()
	tr.Shutdown()

	for i, s := range sinks {
		assert.Equal(t, 1, s.Closes(), "category %d", i)
		info, _ := tr.Channel(trace.Category(i))
		assert.False(t, info.HasSink)
		assert.Empty(t, info.Prefix)
	}

	assert.False(t, tr.Enabled(trace.CategoryAny))
	assert.Nil(t, tr.Begin(trace.CategoryAny))
	assert.ErrorIs(t, tr.SetSink(trace.CategoryAny, &tracetest.RecordingSink{}), trace.ErrShutdown)
	assert.ErrorIs(t, tr.SetCallback(trace.CategoryAny, nil, nil), trace.ErrShutdown)
	assert.ErrorIs(t, tr.SetPrefix(trace.CategoryAny, "x"), trace.ErrShutdown)
	assert.ErrorIs(t, tr.SetSuffix(trace.CategoryAny, "x"), trace.ErrShutdown)
}
