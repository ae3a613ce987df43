package tracelog

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileStats summarizes what a FileLogger has written.
type FileStats struct {
	Records   int // blocks encoded
	Writes    int // body writes across those blocks
	Truncated int // blocks whose body hit the recorder limit
	Failed    int // blocks dropped by an encode or sync error
}

// FileOption configures a FileLogger.
type FileOption func(*FileLogger)

// WithSync makes the logger sync the file after every block, so a crash
// loses at most the block being written.
func WithSync() FileOption {
	return func(l *FileLogger) { l.syncEach = true }
}

// FileLogger appends records to a capture file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	mu       sync.Mutex
	file     *os.File
	enc      *cbor.Encoder
	syncEach bool
	closed   bool
	stats    FileStats
	lastErr  error
}

// NewFileLogger opens path for appending, creating it with permissions
// 0644 if needed.
func NewFileLogger(path string, opts ...FileOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{file: f, enc: NewEncoder(f)}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the name of the capture file.
func (l *FileLogger) Path() string { return l.file.Name() }

// Log appends rec to the file. Failures never reach the traced program;
// they are counted in Stats and kept for Err.
func (l *FileLogger) Log(rec Record) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	err := l.enc.Encode(rec)
	if err == nil && l.syncEach {
		err = l.file.Sync()
	}
	if err != nil {
		l.stats.Failed++
		l.lastErr = err
		return
	}

	l.stats.Records++
	l.stats.Writes += rec.Writes
	if rec.Truncated {
		l.stats.Truncated++
	}
}

// Stats returns the accounting for blocks logged so far.
func (l *FileLogger) Stats() FileStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Err returns the most recent write failure, or nil.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Close closes the file. Later Log calls are ignored and later Close calls
// return nil.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
