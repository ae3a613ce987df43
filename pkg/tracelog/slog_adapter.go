package tracelog

import (
	"context"
	"log/slog"
)

// SlogAdapter writes records to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the record as one "trace" entry.
func (a *SlogAdapter) Log(rec Record) {
	attrs := []slog.Attr{
		slog.String("category", rec.CategoryName),
		slog.String("block_id", rec.BlockID),
		slog.String("body", string(rec.Body)),
		slog.Int("writes", rec.Writes),
		slog.Duration("duration", rec.Duration),
	}
	if rec.Prefix != "" {
		attrs = append(attrs, slog.String("prefix", rec.Prefix))
	}
	if rec.Suffix != "" {
		attrs = append(attrs, slog.String("suffix", rec.Suffix))
	}
	if rec.Truncated {
		attrs = append(attrs, slog.Bool("truncated", true))
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "trace", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
