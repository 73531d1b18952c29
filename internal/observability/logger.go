package observability

import (
	"fmt"
	"os"
	"sort"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DataKey is the field carrying the stringified data argument
	DataKey = "data"

	// FormatLine renders human-readable lines, FormatJSON one JSON object per record
	FormatLine = "line"
	FormatJSON = "json"

	emptyMessage = "(no message)"
)

// Fields is a structured payload attached to a log record
type Fields map[string]interface{}

// Outputs holds one writer per level channel
type Outputs struct {
	Info  zapcore.WriteSyncer
	Warn  zapcore.WriteSyncer
	Error zapcore.WriteSyncer
}

// LoggerConfig configures NewLogger
type LoggerConfig struct {
	Level   string
	Format  string
	Outputs Outputs
}

// Logger writes leveled records. Logging calls never panic.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a logger with one zap core per level channel
func NewLogger(cfg LoggerConfig, opts ...zap.Option) (*Logger, error) {
	level := cfg.Level
	if level == "" {
		level = "info"
	}
	minLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", FormatLine:
		enc = newLineEncoder()
	case FormatJSON:
		enc = newJSONEncoder()
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}

	out := cfg.Outputs
	if out.Info == nil {
		out.Info = zapcore.Lock(os.Stdout)
	}
	if out.Warn == nil {
		out.Warn = zapcore.Lock(os.Stderr)
	}
	if out.Error == nil {
		out.Error = zapcore.Lock(os.Stderr)
	}

	infoLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l < zapcore.WarnLevel
	})
	warnLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l == zapcore.WarnLevel
	})
	errorLevel := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return l >= minLevel && l >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(enc, out.Info, infoLevel),
		zapcore.NewCore(enc.Clone(), out.Warn, warnLevel),
		zapcore.NewCore(enc.Clone(), out.Error, errorLevel),
	)
	return &Logger{z: zap.New(core, opts...)}, nil
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() *Logger {
	return &Logger{z: zap.NewNop()}
}

// FromZap wraps an existing zap logger
func FromZap(z *zap.Logger) *Logger {
	if z == nil {
		return NewNopLogger()
	}
	return &Logger{z: z}
}

// Info logs at INFO
func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(zapcore.InfoLevel, msg, data)
}

// Warn logs at WARN
func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(zapcore.WarnLevel, msg, data)
}

// Error logs at ERROR
func (l *Logger) Error(msg string, data ...interface{}) {
	l.log(zapcore.ErrorLevel, msg, data)
}

// With returns a child logger that merges fields into every record
func (l *Logger) With(fields Fields) *Logger {
	if l == nil {
		return NewNopLogger()
	}
	return &Logger{z: l.z.With(fields.zapFields()...)}
}

// WithSpanContext binds trace and span ids when the span context is valid
func (l *Logger) WithSpanContext(sc trace.SpanContext) *Logger {
	if !sc.IsValid() {
		return l
	}
	return l.With(Fields{
		"trace_id": sc.TraceID().String(),
		"span_id":  sc.SpanID().String(),
	})
}

// Zap exposes the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l.z
}

// Sync flushes buffered output
func (l *Logger) Sync() error {
	if l == nil {
		return nil
	}
	return l.z.Sync()
}

func (l *Logger) log(level zapcore.Level, msg string, data []interface{}) {
	if l == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	if msg == "" {
		msg = emptyMessage
	}
	ce := l.z.Check(level, msg)
	if ce == nil {
		return
	}

	fields := []zap.Field{dataField(renderData(data))}
	if len(data) > 0 {
		if payload, ok := data[0].(Fields); ok {
			fields = append(fields, payload.zapFields()...)
		}
	}
	ce.Write(fields...)
}

func (f Fields) zapFields() []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
