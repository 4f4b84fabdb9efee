// Package logging builds the process-wide structured logger.
//
// Call sites use log/slog. Records are rendered by zap through a logr bridge,
// so OpenTelemetry's internal logger and slog share one sink. Records emitted
// inside a span carry trace_id and span_id.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Option configures the logger
type Option func(*options)

type options struct {
	level       slog.Level
	development bool
	output      io.Writer
}

// WithLevel sets the minimum level
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithDevelopment switches from JSON to human-readable console output
func WithDevelopment(development bool) Option {
	return func(o *options) {
		o.development = development
	}
}

// WithOutput sets the destination, stderr by default
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// Logger bundles the slog and logr views of the same zap core
type Logger struct {
	*slog.Logger
	logr logr.Logger
	zap  *zap.Logger
}

// New builds a Logger without installing it
func New(opts ...Option) *Logger {
	o := &options{level: slog.LevelInfo, output: os.Stderr}
	for _, opt := range opts {
		opt(o)
	}

	var encoder zapcore.Encoder
	if o.development {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "time"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	// logr checks warnings as info, so the core never filters above info.
	// The trace handler applies the configured minimum instead.
	coreLevel := min(zapLevel(o.level), zapcore.InfoLevel)
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(o.output)), zap.NewAtomicLevelAt(coreLevel))
	z := zap.New(core)
	lr := zapr.NewLogger(z)

	return &Logger{
		Logger: slog.New(&traceHandler{Handler: logr.ToSlogHandler(lr), level: o.level}),
		logr:   lr,
		zap:    z,
	}
}

// Setup builds a Logger and installs it as the slog default and the OpenTelemetry logger
func Setup(opts ...Option) *Logger {
	l := New(opts...)
	slog.SetDefault(l.Logger)
	otel.SetLogger(l.logr)
	return l
}

// Logr returns the logr view of the logger
func (l *Logger) Logr() logr.Logger {
	return l.logr
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// zapLevel mirrors how zapr maps slog levels onto zap levels
func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level >= slog.LevelError:
		return zapcore.ErrorLevel
	case level >= slog.LevelWarn:
		return zapcore.WarnLevel
	case level >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.Level(level)
	}
}

// ParseLevel converts a level name into a slog.Level.
// The empty string is info; unknown names report false.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelFromEnv reads <prefix>_LOG_LEVEL, falling back to LOG_LEVEL.
// Defaults to info if neither is set or if the value is invalid.
func LevelFromEnv(prefix string) slog.Level {
	v := viper.New()
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	levelStr := v.GetString("LOG_LEVEL")
	if levelStr == "" {
		levelStr = os.Getenv("LOG_LEVEL")
	}

	level, ok := ParseLevel(levelStr)
	if !ok {
		slog.Warn("Invalid LOG_LEVEL, using INFO", "value", levelStr)
	}
	return level
}

// traceHandler wraps an slog.Handler to inject OpenTelemetry
// trace_id and span_id into every log record
type traceHandler struct {
	slog.Handler
	level slog.Level
}

func (h *traceHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level && h.Handler.Enabled(ctx, level)
}

func (h *traceHandler) Handle(ctx context.Context, r slog.Record) error {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		r.AddAttrs(
			slog.String("trace_id", span.SpanContext().TraceID().String()),
			slog.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs), level: h.level}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name), level: h.level}
}
