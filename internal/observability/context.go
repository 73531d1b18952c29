package observability

import "context"

type ctxKey int

const (
	loggerKey ctxKey = iota
	metricsKey
)

// ContextWithLogger returns a copy of ctx carrying logger
func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext returns the logger stored in ctx, or a no-op logger
func LoggerFromContext(ctx context.Context) *Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*Logger); ok && l != nil {
			return l
		}
	}
	return NewNopLogger()
}

// ContextWithMetrics returns a copy of ctx carrying m
func ContextWithMetrics(ctx context.Context, m *Metrics) context.Context {
	return context.WithValue(ctx, metricsKey, m)
}

// MetricsFromContext returns the metrics stored in ctx, or nil
func MetricsFromContext(ctx context.Context) *Metrics {
	if ctx == nil {
		return nil
	}
	m, _ := ctx.Value(metricsKey).(*Metrics)
	return m
}
