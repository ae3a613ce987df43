package tracelog

import (
	"github.com/sirupsen/logrus"
)

// LogrusAdapter writes records to a logrus logger at Debug level, for hosts
// that already route their output through logrus.
type LogrusAdapter struct {
	logger logrus.FieldLogger
}

// NewLogrusAdapter creates a LogrusAdapter. A nil logger means
// logrus.StandardLogger().
func NewLogrusAdapter(logger logrus.FieldLogger) *LogrusAdapter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusAdapter{logger: logger}
}

// Log writes the record with its metadata as fields.
func (a *LogrusAdapter) Log(rec Record) {
	fields := logrus.Fields{
		"category": rec.CategoryName,
		"block_id": rec.BlockID,
		"writes":   rec.Writes,
		"duration": rec.Duration,
	}
	if rec.Prefix != "" {
		fields["prefix"] = rec.Prefix
	}
	if rec.Suffix != "" {
		fields["suffix"] = rec.Suffix
	}
	if rec.Truncated {
		fields["truncated"] = true
	}
	a.logger.WithFields(fields).Debug(string(rec.Body))
}

// Compile-time interface satisfaction check.
var _ Logger = (*LogrusAdapter)(nil)
