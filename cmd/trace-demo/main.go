// Command trace-demo exercises the trace facility with concurrent writers.
//
// Workers emit bracketed blocks in rotating categories until interrupted.
// Channels come from a YAML configuration (see pkg/traceconfig); without
// one, every category falls back to ANY on stdout.
//
// Usage:
//
//	trace-demo [flags]
//
// Flags:
//
//	-c, --config FILE       Channel configuration (YAML)
//	-w, --workers N         Number of concurrent workers (default: 4)
//	    --interval DUR      Pause between blocks per worker (default: 500ms)
//	    --count N           Blocks per worker, 0 for no limit (default: 0)
//	    --log-level LEVEL   Log level: debug, info, warn, error
//	-i, --interactive       Start the interactive console instead of workers
//
// Every flag can also be set through the environment with the TRACE_DEMO_
// prefix, e.g. TRACE_DEMO_WORKERS=8.
//
// Examples:
//
//	# Four workers tracing to stdout
//	trace-demo
//
//	# Route channels per configuration and stop after 10 blocks each
//	trace-demo -c trace.yaml --count 10
//
//	# Configure channels by hand
//	trace-demo -i
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffval"
	"github.com/zoobzio/clockz"

	"github.com/ADT-Software/openssl/cmd/trace-demo/interactive"
	"github.com/ADT-Software/openssl/pkg/trace"
	"github.com/ADT-Software/openssl/pkg/traceconfig"
	"github.com/ADT-Software/openssl/pkg/tracelog"
)

func main() {
	err := exec(context.Background(), os.Stdout, os.Stderr, os.Args[1:])
	switch {
	case err == nil:
	case errors.As(err, &run.SignalError{}), errors.Is(err, context.Canceled):
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// demoConfig holds the parsed flags.
type demoConfig struct {
	configPath  string
	workers     int
	interval    time.Duration
	count       int
	logLevel    string
	interactive bool
}

var errNoWorkers = errors.New("at least one worker required")

func exec(ctx context.Context, stdout, stderr io.Writer, args []string) (err error) {
	var cfg demoConfig
	fs := ff.NewFlagSet("trace-demo")
	fs.AddFlag(ff.FlagConfig{ShortName: 'c', LongName: "config", Value: ffval.NewValue(&cfg.configPath), Usage: "channel configuration (YAML)", Placeholder: "FILE"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'w', LongName: "workers", Value: ffval.NewValueDefault(&cfg.workers, 4), Usage: "number of concurrent workers", Placeholder: "N"})
	fs.AddFlag(ff.FlagConfig{LongName: "interval", Value: ffval.NewValueDefault(&cfg.interval, 500*time.Millisecond), Usage: "pause between blocks per worker", Placeholder: "DUR"})
	fs.AddFlag(ff.FlagConfig{LongName: "count", Value: ffval.NewValue(&cfg.count), Usage: "blocks per worker, 0 for no limit", Placeholder: "N"})
	fs.AddFlag(ff.FlagConfig{LongName: "log-level", Value: ffval.NewValue(&cfg.logLevel), Usage: "log level: debug, info, warn, error", Placeholder: "LEVEL"})
	fs.AddFlag(ff.FlagConfig{ShortName: 'i', LongName: "interactive", Value: ffval.NewValue(&cfg.interactive), Usage: "start the interactive console instead of workers", NoDefault: true})

	cmd := &ff.Command{
		Name:      "trace-demo",
		Usage:     "trace-demo [flags]",
		ShortHelp: "exercise the trace facility with concurrent writers",
		Flags:     fs,
		Exec: func(ctx context.Context, args []string) error {
			return runDemo(ctx, cfg, stdout, stderr)
		},
	}

	defer func() {
		if errors.Is(err, ff.ErrHelp) {
			fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(cmd))
			err = nil
		}
	}()

	if err := cmd.Parse(args, ff.WithEnvVarPrefix("TRACE_DEMO")); err != nil {
		return err
	}
	return cmd.Run(ctx)
}

func runDemo(ctx context.Context, cfg demoConfig, stdout, stderr io.Writer) error {
	var fileCfg *traceconfig.Config
	if cfg.configPath != "" {
		c, err := traceconfig.Load(cfg.configPath)
		if err != nil {
			return err
		}
		fileCfg = c
	}

	level, err := logLevel(cfg.logLevel, fileCfg)
	if err != nil {
		return err
	}
	if !cfg.interactive && cfg.workers < 1 {
		return errNoWorkers
	}

	var console *interactive.Console
	if cfg.interactive {
		// The console owns the terminal; channels write through it so
		// output does not clobber the prompt.
		console, err = interactive.New()
		if err != nil {
			return err
		}
		stdout, stderr = console.Stdout(), console.Stderr()
	}

	logger := setupLogging(stderr, level)
	tr := trace.New(trace.WithLogger(logger))

	res, err := setupChannels(tr, fileCfg, stdout, stderr, logger)
	if err != nil {
		_ = closeConsole(console)
		return err
	}
	defer func() {
		tr.Shutdown()
		if stats, ok := res.CaptureStats(); ok {
			logger.Info("capture written",
				slog.Int("records", stats.Records),
				slog.Int("truncated", stats.Truncated),
				slog.Int("failed", stats.Failed),
			)
		}
		if err := res.Close(); err != nil {
			logger.Warn("release trace resources", slog.Any("error", err))
		}
	}()

	logger.Info("trace-demo starting",
		slog.Int("workers", cfg.workers),
		slog.Duration("interval", cfg.interval),
		slog.Bool("interactive", cfg.interactive),
	)

	var g run.Group
	if console != nil {
		rec := res.Recorder
		if rec == nil {
			rec = tracelog.NewRecorder(tracelog.NewSlogAdapter(logger))
		}
		console.Bind(tr, interactive.Options{Recorder: rec})

		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return console.Run(ctx)
		}, func(error) {
			cancel()
			_ = console.Close()
		})
	} else {
		ctx, cancel := context.WithCancel(ctx)
		g.Add(func() error {
			return runWorkers(ctx, tr, cfg)
		}, func(error) {
			cancel()
		})
	}
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err = g.Run()
	logger.Info("trace-demo stopped", slog.Uint64("misuses", tr.Misuses()))
	return err
}

// runWorkers runs cfg.workers workers and waits for all of them.
func runWorkers(ctx context.Context, tr *trace.Tracer, cfg demoConfig) error {
	var wg sync.WaitGroup
	for i := range cfg.workers {
		w := &worker{
			id:       i,
			tracer:   tr,
			clock:    clockz.RealClock,
			interval: cfg.interval,
			count:    cfg.count,
		}
		wg.Go(func() { _ = w.run(ctx) })
	}
	wg.Wait()
	return nil
}

// setupChannels applies the configuration, or routes ANY to stdout when
// there is none.
func setupChannels(tr *trace.Tracer, cfg *traceconfig.Config, stdout, stderr io.Writer, logger *slog.Logger) (*traceconfig.Resources, error) {
	if cfg == nil {
		if err := tr.SetSink(trace.CategoryAny, trace.NewWriterSinkNoClose(stdout)); err != nil {
			return nil, err
		}
		return &traceconfig.Resources{}, nil
	}
	return traceconfig.Apply(tr, cfg, traceconfig.ApplyOptions{
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	})
}

// logLevel picks the flag value over the configured one.
func logLevel(flag string, cfg *traceconfig.Config) (slog.Level, error) {
	if flag != "" {
		return traceconfig.ParseLevel(flag)
	}
	if cfg != nil {
		return cfg.Level(), nil
	}
	return slog.LevelInfo, nil
}

func setupLogging(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if level <= slog.LevelDebug {
		opts.AddSource = true
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func closeConsole(c *interactive.Console) error {
	if c == nil {
		return nil
	}
	return c.Close()
}
