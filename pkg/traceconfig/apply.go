package traceconfig

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/zoobzio/clockz"

	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/tracelog"
	"github.com/ADT-Software/openssl/pkg/traceotel"
)

// ApplyOptions supplies the environment Apply builds sinks in.
type ApplyOptions struct {
	// Stdout and Stderr back the stdout and stderr sinks. Nil means the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives mirrored blocks when record.slog is set.
	Logger *slog.Logger

	// Clock stamps captured records. Nil means the real clock.
	Clock clockz.Clock
}

// Resources holds what Apply created outside the tracer. Close it after
// the tracer has been shut down.
type Resources struct {
	// Recorder is the shared block recorder, nil if no channel records.
	Recorder *tracelog.Recorder

	file     *tracelog.FileLogger
	shutdown func() error
}

// CaptureStats reports what the capture file received. It returns false
// when no capture file is configured.
func (r *Resources) CaptureStats() (tracelog.FileStats, bool) {
	if r == nil || r.file == nil {
		return tracelog.FileStats{}, false
	}
	return r.file.Stats(), true
}

// Close releases the capture file and stops the OTEL pipeline.
func (r *Resources) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.shutdown != nil {
		errs = append(errs, r.shutdown())
		r.shutdown = nil
	}
	if r.file != nil {
		errs = append(errs, r.file.Close())
		r.file = nil
	}
	return errors.Join(errs...)
}

// Apply configures t from cfg. Channels are applied in order. On error
// every channel named by cfg up to the failing one is cleared, even if it
// was configured before Apply, and the resources built so far are released.
func Apply(t *trace.Tracer, cfg *Config, opts ApplyOptions) (*Resources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	res := &Resources{}
	var (
		err     error
		touched []trace.Category
	)
	for i, ch := range cfg.Channels {
		cat := trace.CategoryByName(ch.Category)
		touched = append(touched, cat)
		if err = applyChannel(t, cfg, opts, res, cat, ch); err != nil {
			err = &LoadError{Field: channelField(i, "sink"), Message: err.Error(), Cause: err}
			break
		}
		if err = t.SetPrefix(cat, ch.Prefix); err != nil {
			break
		}
		if err = t.SetSuffix(cat, ch.Suffix); err != nil {
			break
		}
	}
	if err != nil {
		// Detach first: the sinks may write into the resources closed below.
		clearChannels(t, touched)
		_ = res.Close()
		return nil, err
	}
	return res, nil
}

// clearChannels removes sink and texts from each category. Errors are
// ignored; after Shutdown there is nothing left to clear.
func clearChannels(t *trace.Tracer, cats []trace.Category) {
	for _, c := range cats {
		_ = t.SetSink(c, nil)
		_ = t.SetPrefix(c, "")
		_ = t.SetSuffix(c, "")
	}
}

func applyChannel(t *trace.Tracer, cfg *Config, opts ApplyOptions, res *Resources, cat trace.Category, ch ChannelConfig) error {
	switch ch.Sink {
	case SinkStdout:
		return t.SetSink(cat, trace.NewWriterSinkNoClose(opts.Stdout))
	case SinkStderr:
		return t.SetSink(cat, trace.NewWriterSinkNoClose(opts.Stderr))
	case SinkDiscard:
		return t.SetSink(cat, trace.NewWriterSinkNoClose(io.Discard))
	case SinkFile:
		f, err := os.OpenFile(ch.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		if err := t.SetSink(cat, trace.NewWriterSink(f)); err != nil {
			_ = f.Close()
			return err
		}
		return nil
	case SinkRecord:
		rec, err := res.recorder(cfg, opts)
		if err != nil {
			return err
		}
		return rec.Attach(t, cat)
	}
	return ErrUnknownSink
}

// recorder returns the shared recorder, building it on first use.
func (r *Resources) recorder(cfg *Config, opts ApplyOptions) (*tracelog.Recorder, error) {
	if r.Recorder != nil {
		return r.Recorder, nil
	}

	var loggers []tracelog.Logger
	var recOpts []tracelog.RecorderOption
	if opts.Clock != nil {
		recOpts = append(recOpts, tracelog.WithClock(opts.Clock))
	}

	if rc := cfg.Record; rc != nil {
		if rc.Path != "" {
			var fileOpts []tracelog.FileOption
			if rc.Sync {
				fileOpts = append(fileOpts, tracelog.WithSync())
			}
			fl, err := tracelog.NewFileLogger(rc.Path, fileOpts...)
			if err != nil {
				return nil, err
			}
			r.file = fl
			loggers = append(loggers, fl)
		}
		if rc.Slog {
			loggers = append(loggers, tracelog.NewSlogAdapter(opts.Logger))
		}
		if rc.MaxBody > 0 {
			recOpts = append(recOpts, tracelog.WithMaxBody(rc.MaxBody))
		}
	}

	if oc := cfg.OTEL; oc != nil {
		provider, err := traceotel.NewProvider(context.Background(), traceotel.Options{
			Endpoint:    oc.Endpoint,
			FromEnv:     oc.FromEnv,
			ServiceName: oc.ServiceName,
			Headers:     oc.Headers,
			Timeout:     oc.Timeout,
		})
		if err != nil {
			return nil, err
		}
		r.shutdown = func() error { return traceotel.Shutdown(provider, oc.Timeout) }
		loggers = append(loggers, traceotel.New(provider.Logger(traceotel.ScopeName)))
	}

	r.Recorder = tracelog.NewRecorder(tracelog.NewMultiLogger(loggers...), recOpts...)
	return r.Recorder, nil
}
