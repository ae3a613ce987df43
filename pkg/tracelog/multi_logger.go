package tracelog

// MultiLogger sends records to multiple loggers, in order.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Log sends the record to all configured loggers.
func (m *MultiLogger) Log(rec Record) {
	for _, l := range m.loggers {
		l.Log(rec)
	}
}

// Len returns the number of loggers.
func (m *MultiLogger) Len() int { return len(m.loggers) }

// Compile-time interface satisfaction check.
var _ Logger = (*MultiLogger)(nil)
