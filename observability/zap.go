package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewZap builds a zap logger writing to w. Level is any level zapcore
// understands ("debug", "info", "warn", ...); format is "console" or "json".
func NewZap(w io.Writer, level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	var enc zapcore.Encoder
	switch format {
	case "", "console":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(w), lvl)
	return zap.New(core), nil
}

type zapLogger struct {
	l *zap.Logger
}

// NewZapLogger adapts a zap logger to Logger.
func NewZapLogger(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return zapLogger{l: l}
}

func (z zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, zapFields(fields)...) }
func (z zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, zapFields(fields)...) }
func (z zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, zapFields(fields)...) }
func (z zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, zapFields(fields)...) }

func (z zapLogger) With(fields ...Field) Logger {
	return zapLogger{l: z.l.With(zapFields(fields)...)}
}

func zapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value().(type) {
		case string:
			out = append(out, zap.String(f.Key(), v))
		case int:
			out = append(out, zap.Int(f.Key(), v))
		case int64:
			out = append(out, zap.Int64(f.Key(), v))
		case float64:
			out = append(out, zap.Float64(f.Key(), v))
		case bool:
			out = append(out, zap.Bool(f.Key(), v))
		case error:
			out = append(out, zap.NamedError(f.Key(), v))
		default:
			out = append(out, zap.Any(f.Key(), v))
		}
	}
	return out
}

type logTracer struct {
	logger Logger
}

// NewLogTracer returns a Tracer that reports each finished span, with its
// duration and tags, as a debug log entry.
func NewLogTracer(logger Logger) Tracer {
	if logger == nil {
		logger = NopLogger{}
	}
	return logTracer{logger: logger}
}

func (t logTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	return ctx, &logSpan{logger: t.logger, name: name, start: time.Now()}
}

type logSpan struct {
	logger Logger
	name   string
	start  time.Time
	fields []Field
	err    error
}

func (s *logSpan) SetTag(key string, value interface{}) {
	s.fields = append(s.fields, anyField{key: key, val: value})
}

func (s *logSpan) SetError(err error) { s.err = err }

func (s *logSpan) Finish() {
	fields := append([]Field{
		String("span", s.name),
		Int64("duration_ms", time.Since(s.start).Milliseconds()),
	}, s.fields...)
	if s.err != nil {
		fields = append(fields, Error("error", s.err))
	}
	s.logger.Debug("span finished", fields...)
}

type anyField struct {
	key string
	val interface{}
}

func (f anyField) Key() string        { return f.key }
func (f anyField) Value() interface{} { return f.val }
