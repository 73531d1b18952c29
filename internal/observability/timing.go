package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Measure runs op, logging its duration and outcome under label. The error
// returned by op is passed through unchanged and a panic is re-raised after
// it has been logged.
func Measure[T any](ctx context.Context, label string, fields Fields, op func(context.Context) (T, error)) (T, error) {
	logger := LoggerFromContext(ctx)
	metrics := MetricsFromContext(ctx)

	tracer := trace.SpanFromContext(ctx).TracerProvider().Tracer(TracerName)
	ctx, span := tracer.Start(ctx, label)
	defer span.End()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			elapsed := time.Since(start)
			msg := Stringify(rec)
			logger.Error("Operation failed: "+label, operationFields(label, elapsed, fields, msg))
			span.SetStatus(codes.Error, msg)
			metrics.RecordOperation(label, true, elapsed)
			panic(rec)
		}
	}()

	result, err := op(ctx)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("Operation failed: "+label, operationFields(label, elapsed, fields, Stringify(err)))
		span.RecordError(err)
		span.SetStatus(codes.Error, Stringify(err))
		metrics.RecordOperation(label, true, elapsed)
		return result, err
	}

	logger.Info("Operation completed: "+label, operationFields(label, elapsed, fields, ""))
	span.SetStatus(codes.Ok, "")
	metrics.RecordOperation(label, false, elapsed)
	return result, nil
}

// MeasureErr is Measure for operations that produce no value
func MeasureErr(ctx context.Context, label string, fields Fields, op func(context.Context) error) error {
	_, err := Measure(ctx, label, fields, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func operationFields(label string, elapsed time.Duration, extra Fields, errMsg string) Fields {
	out := make(Fields, len(extra)+3)
	for k, v := range extra {
		out[k] = v
	}
	out["operation"] = label
	out["duration"] = elapsed.Milliseconds()
	if errMsg != "" {
		out["error"] = errMsg
	}
	return out
}
