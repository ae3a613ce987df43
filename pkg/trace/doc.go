// Package trace provides category-scoped diagnostic tracing for the library.
//
// Every trace category is associated with a sink, also called the trace
// channel. The application either attaches a sink directly (any io.Writer
// wrapped by NewWriterSink, or its own Sink implementation), or registers a
// Callback, in which case an internal CallbackSink forwards every write and
// every begin/end notification to that function.
//
// # Basic Usage
//
// The embedding application owns a Tracer and configures it during setup:
//
//	t := trace.New(trace.WithLogger(slog.Default()))
//	defer t.Shutdown()
//
//	_ = t.SetSink(trace.CategoryAny, trace.NewWriterSinkNoClose(os.Stderr))
//	_ = t.SetPrefix(trace.CategoryTLS, "BEGIN TLS TRACE")
//
// Library code brackets each trace message with Begin and End:
//
//	if b := t.Begin(trace.CategoryTLS); b != nil {
//	    fmt.Fprintf(b, "cipher=%s\n", name)
//	    t.End(trace.CategoryTLS, b)
//	}
//
// A nil block means tracing is disabled for that category; skip the body and
// skip End. Trace and Tracef wrap the bracket and always release it.
//
// # Categories
//
// A category without its own channel falls back to CategoryAny. Categories
// are resolved again in End, so reconfiguring a category while one of its
// blocks is open may change which suffix is emitted.
//
// # Concurrency
//
// One lock serializes all blocks across all categories: a prefix, body and
// suffix are never interleaved with another goroutine's trace output.
// Begin blocks until the lock is free and has no timeout, so every Begin
// that returns a block must be paired with End on every path.
//
// Configuration methods (SetSink, SetCallback, SetPrefix, SetSuffix) are
// meant for setup and teardown. They do not take the trace lock; changing a
// category while one of its blocks is open is unsupported.
package trace
