package tracelog

// Logger receives finished trace blocks.
// Pass NoopLogger to disable capture.
type Logger interface {
	// Log records one block. Implementations must be thread-safe and should
	// return quickly. Log runs while the tracer lock is held and must not
	// begin trace blocks itself.
	Log(rec Record)
}

// NoopLogger discards all records.
// NoopLogger is safe for concurrent use and usable as a zero value.
type NoopLogger struct{}

// Log discards the record.
func (NoopLogger) Log(Record) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
