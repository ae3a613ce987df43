package traceconfig

import (
	"errors"
	"strconv"
	"time"
)

// SinkKind names where a channel's output goes.
type SinkKind string

const (
	SinkStdout  SinkKind = "stdout"
	SinkStderr  SinkKind = "stderr"
	SinkFile    SinkKind = "file"
	SinkRecord  SinkKind = "record"
	SinkDiscard SinkKind = "discard"
)

// Valid reports whether k is a known sink kind.
func (k SinkKind) Valid() bool {
	switch k {
	case SinkStdout, SinkStderr, SinkFile, SinkRecord, SinkDiscard:
		return true
	}
	return false
}

// Config is a trace configuration document.
type Config struct {
	// LogLevel is the operational log level: debug, info, warn or error.
	LogLevel string `yaml:"log_level,omitempty"`

	// Record configures block capture for channels with the record sink.
	Record *RecordConfig `yaml:"record,omitempty"`

	// OTEL forwards captured blocks to an OTLP/HTTP collector.
	OTEL *OTELConfig `yaml:"otel,omitempty"`

	Channels []ChannelConfig `yaml:"channels"`
}

// RecordConfig configures the shared block recorder.
type RecordConfig struct {
	// Path is a capture file (.tlog). Empty means no file.
	Path string `yaml:"path,omitempty"`

	// Slog mirrors every block to the operational logger at Debug level.
	Slog bool `yaml:"slog,omitempty"`

	// MaxBody limits captured body bytes. Zero means no limit.
	MaxBody int `yaml:"max_body,omitempty"`

	// Sync flushes the capture file to disk after every block.
	Sync bool `yaml:"sync,omitempty"`
}

// OTELConfig configures the OTLP logs exporter.
type OTELConfig struct {
	Endpoint    string            `yaml:"endpoint,omitempty"`
	FromEnv     bool              `yaml:"from_env,omitempty"`
	ServiceName string            `yaml:"service_name,omitempty"`
	Headers     map[string]string `yaml:"headers,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
}

// ChannelConfig configures one category.
type ChannelConfig struct {
	Category string   `yaml:"category"`
	Sink     SinkKind `yaml:"sink"`
	Path     string   `yaml:"path,omitempty"`
	Prefix   string   `yaml:"prefix,omitempty"`
	Suffix   string   `yaml:"suffix,omitempty"`
}

var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("duplicate category")
	ErrUnknownSink       = errors.New("unknown sink kind")
	ErrMissingPath       = errors.New("file sink requires a path")
	ErrNoRecorder        = errors.New("record sink requires a record or otel section")
	ErrUnknownLevel      = errors.New("unknown log level")
)

// LoadError describes a configuration that could not be loaded or applied.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Field locates the offending entry, e.g. "channels[2].sink".
	Field string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

func channelField(i int, name string) string {
	return "channels[" + strconv.Itoa(i) + "]." + name
}
