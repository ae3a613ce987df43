// Package traceotel forwards captured trace blocks to an OpenTelemetry
// logs pipeline.
package traceotel

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otelLog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/ADT-Software/openssl/pkg/tracelog"
)

// ScopeName is the instrumentation scope of emitted records.
const ScopeName = "github.com/ADT-Software/openssl/pkg/trace"

// DefaultTimeout bounds exporter calls and provider shutdown.
const DefaultTimeout = 5 * time.Second

var (
	// ErrNoEndpoint is returned when no collector endpoint is configured.
	ErrNoEndpoint = errors.New("traceotel: no endpoint configured")

	// ErrEndpointScheme is returned for endpoints without http or https.
	ErrEndpointScheme = errors.New("traceotel: endpoint must include scheme (http or https)")
)

// Options configures NewProvider.
type Options struct {
	// Endpoint is the OTLP/HTTP collector URL.
	Endpoint string

	// FromEnv falls back to the OTEL_EXPORTER_OTLP_* variables when
	// Endpoint is empty.
	FromEnv bool

	ServiceName string
	Headers     map[string]string
	Timeout     time.Duration
}

// Logger implements tracelog.Logger by emitting one OTEL log record per
// trace block.
type Logger struct {
	logger otelLog.Logger
	now    func() time.Time
}

// New creates a Logger over an OTEL logger.
func New(logger otelLog.Logger) *Logger {
	return &Logger{logger: logger, now: time.Now}
}

// NewProvider builds a logger provider exporting over OTLP/HTTP with a
// batch processor. The caller owns the provider and must shut it down.
func NewProvider(ctx context.Context, opts Options) (*sdklog.LoggerProvider, error) {
	endpoint := ResolveEndpoint(opts.Endpoint, opts.FromEnv)
	if endpoint == "" {
		return nil, ErrNoEndpoint
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		return nil, ErrEndpointScheme
	}

	expOpts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
	if len(opts.Headers) > 0 {
		expOpts = append(expOpts, otlploghttp.WithHeaders(opts.Headers))
	}
	if opts.Timeout > 0 {
		expOpts = append(expOpts, otlploghttp.WithTimeout(opts.Timeout))
	}

	exp, err := otlploghttp.New(ctx, expOpts...)
	if err != nil {
		return nil, err
	}

	return sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exp)),
		sdklog.WithResource(serviceResource(opts.ServiceName)),
	), nil
}

func serviceResource(name string) *resource.Resource {
	if name == "" {
		name = "trace"
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(name),
	)
}

// ResolveEndpoint returns explicit if set. Otherwise, when fromEnv is true,
// it returns OTEL_EXPORTER_OTLP_LOGS_ENDPOINT, then
// OTEL_EXPORTER_OTLP_ENDPOINT.
func ResolveEndpoint(explicit string, fromEnv bool) string {
	if endpoint := strings.TrimSpace(explicit); endpoint != "" {
		return endpoint
	}
	if !fromEnv {
		return ""
	}
	if endpoint := strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_LOGS_ENDPOINT")); endpoint != "" {
		return endpoint
	}
	return strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"))
}

// Shutdown flushes and stops provider within timeout.
func Shutdown(provider *sdklog.LoggerProvider, timeout time.Duration) error {
	if provider == nil {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return provider.Shutdown(ctx)
}

// Log emits rec.
func (l *Logger) Log(rec tracelog.Record) {
	if l == nil || l.logger == nil {
		return
	}

	var r otelLog.Record
	r.SetTimestamp(rec.Timestamp)
	r.SetObservedTimestamp(l.now())
	r.SetEventName("trace.block")
	r.SetSeverity(otelLog.SeverityDebug)
	r.SetSeverityText("DEBUG")
	r.SetBody(otelLog.StringValue(string(rec.Body)))
	r.AddAttributes(
		otelLog.String("trace.category", rec.CategoryName),
		otelLog.String("trace.block_id", rec.BlockID),
		otelLog.Int("trace.writes", rec.Writes),
		otelLog.Int64("trace.duration_ns", rec.Duration.Nanoseconds()),
	)
	if rec.Prefix != "" {
		r.AddAttributes(otelLog.String("trace.prefix", rec.Prefix))
	}
	if rec.Suffix != "" {
		r.AddAttributes(otelLog.String("trace.suffix", rec.Suffix))
	}
	if rec.Truncated {
		r.AddAttributes(otelLog.Bool("trace.truncated", true))
	}

	l.logger.Emit(context.Background(), r)
}

// Compile-time interface satisfaction check.
var _ tracelog.Logger = (*Logger)(nil)
