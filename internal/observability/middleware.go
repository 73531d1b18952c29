package observability

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/anhkhoa289/vote-anti-trick/internal/apperrors"
	"github.com/anhkhoa289/vote-anti-trick/internal/shared"
	"github.com/anhkhoa289/vote-anti-trick/utils"
)

// RequestIDHeader carries the request id on every response
const RequestIDHeader = "X-Request-ID"

// InvalidStatusMessage is reported when a handler returns a status outside 200-599
const InvalidStatusMessage = "Invalid response status"

// Request is what a wrapped handler receives
type Request struct {
	*http.Request
	Info   RequestContext
	Span   trace.Span
	Logger *Logger
}

// Response is what a wrapped handler returns on success
type Response struct {
	Status int
	Body   interface{}
	Header http.Header
}

// JSON builds a response with a JSON body
func JSON(status int, body interface{}) *Response {
	return &Response{Status: status, Body: body}
}

// HandlerFunc is an endpoint run under Observer.Wrap. Returned errors are
// classified and written as the error envelope.
type HandlerFunc func(req *Request) (*Response, error)

// Observer wraps handlers with request logging, tracing, metrics and error translation
type Observer struct {
	logger     *Logger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	metrics    *Metrics
}

// ObserverOption configures an Observer
type ObserverOption func(*Observer)

// WithPropagator sets the propagator used to extract inbound trace context
func WithPropagator(p propagation.TextMapPropagator) ObserverOption {
	return func(o *Observer) {
		if p != nil {
			o.propagator = p
		}
	}
}

// WithMetrics enables request metrics
func WithMetrics(m *Metrics) ObserverOption {
	return func(o *Observer) {
		o.metrics = m
	}
}

// NewObserver creates an Observer
func NewObserver(logger *Logger, tp trace.TracerProvider, opts ...ObserverOption) *Observer {
	if logger == nil {
		logger = NewNopLogger()
	}
	o := &Observer{
		logger:     logger,
		tracer:     tp.Tracer(TracerName),
		propagator: propagation.TraceContext{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Wrap adapts handler to net/http. Every request gets a request id, a child
// logger and a server span that is ended exactly once on every exit path.
func (o *Observer) Wrap(handler HandlerFunc, operationName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := NewRequestID()
		info := NewRequestContext(r, requestID, start)

		reqLogger := o.logger.With(info.Fields())
		reqLogger.Info("Incoming request")

		ctx := o.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := o.tracer.Start(ctx, operationName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", info.Method),
				attribute.String("http.url", info.URL),
				attribute.String("http.request_id", requestID),
				attribute.String("http.client_ip", info.ClientIP),
			),
		)
		defer span.End()

		reqLogger = reqLogger.WithSpanContext(span.SpanContext())
		ctx = ContextWithLogger(ctx, reqLogger)
		ctx = ContextWithMetrics(ctx, o.metrics)
		ctx = shared.WithRequestID(ctx, requestID)
		ctx = shared.WithClientIP(ctx, info.ClientIP)

		w.Header().Set(RequestIDHeader, requestID)

		req := &Request{
			Request: r.WithContext(ctx),
			Info:    info,
			Span:    span,
			Logger:  reqLogger,
		}

		resp, err := invoke(handler, req)
		if err != nil {
			o.fail(w, req, operationName, err)
			return
		}
		o.complete(w, req, operationName, resp)
	}
}

func (o *Observer) complete(w http.ResponseWriter, req *Request, operationName string, resp *Response) {
	status := http.StatusNoContent
	var body interface{}
	if resp != nil {
		status = resp.Status
		if status == 0 {
			status = http.StatusOK
		}
		if status < 200 || status > 599 {
			o.fail(w, req, operationName, apperrors.Internal(InvalidStatusMessage, apperrors.Context{"status": status}))
			return
		}
		body = resp.Body
		for k, values := range resp.Header {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}

	duration := time.Since(req.Info.StartTime)
	req.Logger.Info("Request completed", Fields{
		"statusCode": status,
		"duration":   duration.Milliseconds(),
	})

	req.Span.SetStatus(codes.Ok, "")
	req.Span.SetAttributes(attribute.Int("http.status_code", status))
	o.metrics.RecordRequest(operationName, status, duration)

	if err := utils.WriteJSON(w, status, body); err != nil {
		req.Logger.Error("Failed to write response", err)
	}
}

func (o *Observer) fail(w http.ResponseWriter, req *Request, operationName string, err error) {
	var details apperrors.Details
	var recovered *panicError
	if errors.As(err, &recovered) {
		details = apperrors.ClassifyValue(recovered.value)
	} else {
		details = apperrors.Classify(err)
	}

	req.Span.SetStatus(codes.Error, details.Message)
	recordError(req.Span, err, recovered)
	req.Span.SetAttributes(attribute.Int("http.status_code", details.StatusCode))

	duration := time.Since(req.Info.StartTime)
	fields := Fields{
		"statusCode": details.StatusCode,
		"duration":   duration.Milliseconds(),
		"error":      details.Message,
	}
	if len(details.Context) > 0 {
		fields["errorContext"] = map[string]interface{}(details.Context)
	}
	if cause := errorCause(err, details.Message); cause != "" {
		fields["cause"] = cause
	}

	if details.IsOperational {
		req.Logger.Warn("Request failed", fields)
	} else {
		req.Logger.Error("Request failed", fields)
	}
	o.metrics.RecordRequest(operationName, details.StatusCode, duration)

	if werr := utils.WriteError(w, details.StatusCode, details.Message, req.Info.RequestID); werr != nil {
		req.Logger.Error("Failed to write error response", werr)
	}
}

// errorCause returns what the classified message leaves out: the wrapped
// cause of a taxonomy error, or the text of any other error
func errorCause(err error, message string) string {
	if appErr, ok := err.(*apperrors.AppError); ok {
		if appErr.Err == nil {
			return ""
		}
		return Stringify(appErr.Err)
	}
	if cause := Stringify(err); cause != message {
		return cause
	}
	return ""
}

// panicError carries a value recovered from a panicking handler
type panicError struct {
	value interface{}
	stack []byte
}

func (p *panicError) Error() string {
	return "panic: " + Stringify(p.value)
}

func invoke(handler HandlerFunc, req *Request) (resp *Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			resp, err = nil, &panicError{value: rec, stack: debug.Stack()}
		}
	}()
	return handler(req)
}

func recordError(span trace.Span, err error, recovered *panicError) {
	defer func() {
		_ = recover()
	}()
	if recovered != nil {
		span.RecordError(err, trace.WithAttributes(
			attribute.String("exception.stacktrace", string(recovered.stack)),
		))
		return
	}
	span.RecordError(err)
}
