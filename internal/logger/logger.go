// Package logger is the process-wide structured logger and tracer.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "lockin"

type Config struct {
	Level   string // DEBUG, INFO, WARN, ERROR
	Format  string // json or text
	Tracing bool

	// Output defaults to stdout; spans go to TraceOutput, default stderr.
	Output      io.Writer
	TraceOutput io.Writer
}

var (
	mu       sync.RWMutex
	log      = slog.New(slog.NewTextHandler(os.Stdout, nil))
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
)

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT and LOG_TRACING_ENABLED.
func ConfigFromEnv() Config {
	return Config{
		Level:   envOr("LOG_LEVEL", "INFO"),
		Format:  envOr("LOG_FORMAT", "json"),
		Tracing: envOr("LOG_TRACING_ENABLED", "false") == "true",
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Init installs the global logger, and the tracer when cfg.Tracing is set.
func Init(cfg Config) error {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(out, opts)
	} else {
		h = slog.NewJSONHandler(out, opts)
	}
	l := slog.New(h).With("service", serviceName)

	var (
		tp  *sdktrace.TracerProvider
		err error
	)
	if cfg.Tracing {
		if tp, err = newProvider(cfg.TraceOutput); err != nil {
			l.Warn("tracing disabled", "error", err)
		}
	}

	mu.Lock()
	log = l
	if tp != nil {
		provider = tp
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(serviceName)
	}
	mu.Unlock()

	slog.SetDefault(l)
	return nil
}

func newProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	if w == nil {
		w = os.Stderr
	}
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	), nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	tp := provider
	provider, tracer = nil, nil
	mu.Unlock()

	if tp == nil {
		return nil
	}
	return tp.Shutdown(ctx)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the current logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func current() (*slog.Logger, trace.Tracer) {
	mu.RLock()
	defer mu.RUnlock()
	return log, tracer
}

// StartSpan starts a span when tracing is on; otherwise ctx's span is
// returned unchanged.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	_, t := current()
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name)
}

func withTrace(ctx context.Context, args []any) []any {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return args
	}
	return append([]any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}, args...)
}

func Debug(ctx context.Context, msg string, args ...any) {
	L().Log(ctx, slog.LevelDebug, msg, withTrace(ctx, args)...)
}

func Info(ctx context.Context, msg string, args ...any) {
	L().Log(ctx, slog.LevelInfo, msg, withTrace(ctx, args)...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	L().Log(ctx, slog.LevelWarn, msg, withTrace(ctx, args)...)
}

func Error(ctx context.Context, msg string, args ...any) {
	L().Log(ctx, slog.LevelError, msg, withTrace(ctx, args)...)
}

// ErrorWithErr logs err and marks the current span failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	Error(ctx, msg, append([]any{"error", err}, args...)...)
}

// Operation times one unit of work under its own span.
type Operation struct {
	ctx    context.Context
	span   trace.Span
	name   string
	start  time.Time
	fields []any
}

// StartOperation opens a span named name. fields are key/value pairs added
// to the span and to the completion log line.
func StartOperation(ctx context.Context, name string, fields ...any) *Operation {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(attributes(fields)...)
	return &Operation{ctx: ctx, span: span, name: name, start: time.Now(), fields: fields}
}

// Context carries the operation's span.
func (op *Operation) Context() context.Context {
	return op.ctx
}

func (op *Operation) End(fields ...any) {
	d := time.Since(op.start)
	op.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	op.span.SetAttributes(attributes(fields)...)
	op.span.SetStatus(codes.Ok, "")
	op.span.End()

	args := append([]any{"op", op.name, "duration_ms", d.Milliseconds()}, op.fields...)
	Debug(op.ctx, "operation completed", append(args, fields...)...)
}

func (op *Operation) EndWithError(err error, fields ...any) {
	d := time.Since(op.start)
	op.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	op.span.RecordError(err)
	op.span.SetStatus(codes.Error, err.Error())
	op.span.End()

	args := append([]any{"op", op.name, "duration_ms", d.Milliseconds(), "error", err}, op.fields...)
	Warn(op.ctx, "operation failed", append(args, fields...)...)
}

func attributes(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}
