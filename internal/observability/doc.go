// Package observability provides structured logging, tracing, metrics and
// the request wrapper every HTTP endpoint of the voting service runs through.
//
// This package implements:
//   - Leveled line/JSON logging on top of zap with per-level output channels
//   - Child loggers carrying request context, propagated via context.Context
//   - Operation timing (Measure) with logs, child spans and histograms
//   - OpenTelemetry tracer provider setup (OTLP/HTTP or no-op)
//   - Observer.Wrap: request id, span lifecycle, error translation
//
// A request's span is always ended exactly once, whatever the handler does.
package observability
