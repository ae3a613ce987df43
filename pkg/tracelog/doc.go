// Package tracelog captures finished trace blocks as structured records.
//
// A Recorder is installed as the callback of one or more trace categories.
// It assembles the BEGIN, DURING and END phases of every block into a
// Record and hands it to a Logger. The capture is separate from the
// channel output itself: a record keeps the prefix, body and suffix of a
// block together with its category, timing and a unique block ID.
//
// # Basic Usage
//
//	// For development: mirror blocks to slog
//	rec := tracelog.NewRecorder(tracelog.NewSlogAdapter(slog.Default()))
//
//	// For production: append to a capture file
//	fl, _ := tracelog.NewFileLogger("/var/log/app/trace.tlog")
//	rec := tracelog.NewRecorder(fl)
//
//	// Both: use MultiLogger
//	rec := tracelog.NewRecorder(tracelog.NewMultiLogger(
//	    tracelog.NewSlogAdapter(slog.Default()),
//	    fl,
//	))
//
//	_ = rec.Attach(tracer, trace.CategoryTLS, trace.CategoryCMP)
//
// # File Format
//
// Capture files hold a stream of CBOR-encoded records with integer keys and
// use the .tlog extension. The trace-log tool views, filters, exports and
// summarizes them.
package tracelog
