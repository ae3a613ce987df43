// Package traceconfig loads trace channel configuration from YAML and
// applies it to a trace.Tracer.
package traceconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ADT-Software/openssl/pkg/trace"
)

// Parse parses and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error(), Cause: err}
	}
	return cfg, nil
}

// Validate checks category names, sink kinds and required fields.
func (c *Config) Validate() error {
	if c.LogLevel != "" {
		if _, err := ParseLevel(c.LogLevel); err != nil {
			return &LoadError{Field: "log_level", Message: err.Error(), Cause: ErrUnknownLevel}
		}
	}

	seen := make(map[trace.Category]int)
	for i, ch := range c.Channels {
		cat := trace.CategoryByName(ch.Category)
		if cat == trace.CategoryInvalid {
			return &LoadError{
				Field:   channelField(i, "category"),
				Message: fmt.Sprintf("unknown category %q", ch.Category),
				Cause:   ErrUnknownCategory,
			}
		}
		if prev, dup := seen[cat]; dup {
			return &LoadError{
				Field:   channelField(i, "category"),
				Message: fmt.Sprintf("category %s already configured by channels[%d]", cat, prev),
				Cause:   ErrDuplicateCategory,
			}
		}
		seen[cat] = i

		if !ch.Sink.Valid() {
			return &LoadError{
				Field:   channelField(i, "sink"),
				Message: fmt.Sprintf("unknown sink kind %q", ch.Sink),
				Cause:   ErrUnknownSink,
			}
		}
		if ch.Sink == SinkFile && ch.Path == "" {
			return &LoadError{
				Field:   channelField(i, "path"),
				Message: ErrMissingPath.Error(),
				Cause:   ErrMissingPath,
			}
		}
		if ch.Sink == SinkRecord && c.Record == nil && c.OTEL == nil {
			return &LoadError{
				Field:   channelField(i, "sink"),
				Message: ErrNoRecorder.Error(),
				Cause:   ErrNoRecorder,
			}
		}
	}
	return nil
}

// Level returns the configured log level, Info when unset.
func (c *Config) Level() slog.Level {
	lvl, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLevel parses debug, info, warn or error. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("%w %q", ErrUnknownLevel, s)
}
